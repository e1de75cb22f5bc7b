// Package ledger implements the curve program operations against a Solana
// cluster.
//
// Connect opens a request-scoped Session: it resolves the RPC endpoint,
// loads the signer keypair and checks node health. Session methods encode
// Anchor instructions and hand them to a Submitter; signing and sending
// happen outside this process.
package ledger
