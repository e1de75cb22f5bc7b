// Package repl provides the interactive shell of curvectl.
//
// Each input line is split into arguments and handed to an Executor,
// which runs it as one ordinary curvectl invocation. A failing line is
// reported and the loop continues.
//
//   - repl.go: read loop and built-ins (exit, quit, history)
//   - completer.go: command-name suggestions for mistyped input
//   - history.go: history persisted under the profile directory
package repl
