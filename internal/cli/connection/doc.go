// Package connection talks to a Solana cluster over JSON-RPC.
//
//   - http.go: rate-limited JSON-RPC 2.0 client over HTTP/HTTPS
//   - manager.go: endpoint resolution and per-endpoint client reuse
package connection
