// Package main provides the entry point for curvectl.
//
// curvectl resolves, validates and dispatches bonding-curve program
// commands. Exit status is 0 on success, 1 for invalid arguments, 2 for
// operation failures and 3 for configuration problems.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/curvectl/internal/cli/command"
	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/infra/shutdown"
)

func main() {
	app := command.App()

	h := shutdown.NewHandler(shutdown.DefaultTimeout)
	h.OnShutdown(func(context.Context) error {
		fmt.Fprintln(os.Stderr, "interrupt received, cancelling pending requests")
		return nil
	})
	ctx, stop := h.Context(context.Background())

	err := app.RunContext(ctx, os.Args)
	stop()
	if hookErr := h.Wait(); hookErr != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", hookErr)
	}
	if err != nil {
		if sig, ok := shutdown.Interrupted(ctx); ok {
			err = fmt.Errorf("%w (%s)", err, sig)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(domain.ExitCode(err))
	}
}
