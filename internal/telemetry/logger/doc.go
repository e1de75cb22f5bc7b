// Package logger provides structured logging for curvectl.
//
//   - logger.go: slog handler setup and the package-level default logger
//   - context.go: context-aware logging with request IDs
//   - redact.go: key material and secret redaction
package logger
