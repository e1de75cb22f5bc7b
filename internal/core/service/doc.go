// Package service provides the command resolution core of curvectl.
//
// It turns a parsed Invocation into a validated CommandRequest and hands
// it to exactly one ledger operation:
//
//   - Resolve: merges shared inputs into a ClusterContext with defaults
//   - Validate: ordered, short-circuiting per-command parameter checks
//   - Dispatcher: establishes the cluster session and calls one operation
//   - Pipeline: drives Parsed -> Resolved -> Validated -> Dispatched ->
//     Completed/Failed and reports each stage
//
// Ledger operations are reached through the Connector and Operations
// interfaces so the core holds no network or signing code.
package service
