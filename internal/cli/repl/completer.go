package repl

import (
	"slices"
	"strings"
)

// builtins are handled by the loop itself.
var builtins = []string{"exit", "quit", "history"}

// Completer knows the command names the shell accepts.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for commands plus the built-ins.
func NewCompleter(commands ...string) *Completer {
	all := append(slices.Clone(commands), builtins...)
	slices.Sort(all)
	return &Completer{commands: slices.Compact(all)}
}

// Known reports whether name is an accepted command. Anything starting
// with "-" is passed through, so global flags may precede the command.
func (c *Completer) Known(name string) bool {
	if strings.HasPrefix(name, "-") {
		return true
	}
	_, found := slices.BinarySearch(c.commands, name)
	return found
}

// Complete returns the commands starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
