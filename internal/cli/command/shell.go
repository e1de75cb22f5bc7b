package command

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/cli/config"
	"github.com/yndnr/curvectl/internal/cli/repl"
)

const shellName = "shell"

// forwardedFlags are the global flags a shell passes on to every line.
var forwardedFlags = []string{"config", "output", "wide", "verbose", "log-format", "set", "pushgateway"}

// ShellCommand returns the interactive shell command. Every line runs as a
// separate curvectl invocation with its own request ID and outcome.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  shellName,
		Usage: "Run curvectl commands interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Usage: "History file (default ~/.curvectl/history)"},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	names := make([]string, 0, len(c.App.Commands))
	for _, cmd := range c.App.Commands {
		if cmd.Name == shellName {
			continue
		}
		names = append(names, cmd.Name)
	}

	historyPath := c.String("history")
	if historyPath == "" {
		historyPath = filepath.Join(filepath.Dir(config.DefaultConfigPath()), "history")
	}

	prefix := globalArgs(c)
	exec := func(ctx context.Context, args []string) error {
		line := App()
		line.Reader = c.App.Reader
		line.Writer = c.App.Writer
		line.ErrWriter = c.App.ErrWriter
		line.Metadata = c.App.Metadata
		argv := append([]string{c.App.Name}, prefix...)
		return line.RunContext(ctx, append(argv, args...))
	}

	r := repl.New(c.App.Reader, c.App.ErrWriter, exec, repl.NewCompleter(names...),
		repl.WithHistory(repl.NewHistory(historyPath, repl.DefaultHistorySize)))
	return r.Run(c.Context)
}

// globalArgs rebuilds the explicitly set global flags as arguments.
func globalArgs(c *cli.Context) []string {
	var args []string
	for _, name := range forwardedFlags {
		if !c.IsSet(name) {
			continue
		}
		switch name {
		case "wide", "verbose":
			if c.Bool(name) {
				args = append(args, "--"+name)
			}
		case "set":
			for _, v := range c.StringSlice(name) {
				args = append(args, "--set", v)
			}
		default:
			args = append(args, "--"+name, c.String(name))
		}
	}
	return args
}
