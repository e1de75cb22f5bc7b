// Package tlsroots builds the root certificate pool used to verify a
// private RPC endpoint, such as a self-hosted validator behind a
// corporate CA.
package tlsroots
