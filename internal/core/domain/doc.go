// Package domain defines the core domain models for curvectl.
//
// Domain models are pure values without IO dependencies. This package
// contains:
//
//   - ClusterName, ClusterContext: the resolved connection context
//   - CommandName, Invocation, CommandRequest: command input before and
//     after validation, with per-command OperationParams
//   - PublicKey, SwapStyle: typed operation parameters
//   - Stage: the per-invocation state machine
//   - Errors: coded domain errors and exit-code classification
package domain
