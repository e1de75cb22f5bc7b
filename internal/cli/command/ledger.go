package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/core/service"
)

func tokenFlag() cli.Flag {
	return &cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "Token mint address"}
}

func creatorFlag() cli.Flag {
	return &cli.StringFlag{Name: "creator", Aliases: []string{"c"}, Usage: "Creator address"}
}

func newAdminFlag() cli.Flag {
	return &cli.StringFlag{Name: "new-admin", Aliases: []string{"n"}, Usage: "Address nominated as the next admin"}
}

func swapFlags() []cli.Flag {
	return []cli.Flag{
		tokenFlag(),
		&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "Swap amount in base units"},
		&cli.StringFlag{Name: "style", Aliases: []string{"s"}, Usage: "0 to buy, 1 to sell"},
	}
}

// ledgerCommand builds a command that runs name through the pipeline.
// Command flags are read as given; validation happens in the pipeline so
// every command follows the same checklist order.
func ledgerCommand(name domain.CommandName, usage string, flags []cli.Flag) *cli.Command {
	return &cli.Command{
		Name:   string(name),
		Usage:  usage,
		Flags:  append(sharedFlags(), flags...),
		Action: runLedger(name),
	}
}

func runLedger(name domain.CommandName) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := setup(c)
		if err != nil {
			return err
		}
		ctx := rt.Context(c.Context)

		env, keypair, rpc := rt.Config.Shared(func(flag string) (string, bool) {
			if c.IsSet(flag) {
				return c.String(flag), true
			}
			return "", false
		})
		inv := domain.Invocation{
			Command:     name,
			Env:         env,
			KeypairPath: keypair,
			RPCURL:      rpc,
			Params:      rawParams(c),
		}

		connector, err := backendFrom(c)(rt)
		if err != nil {
			return err
		}
		pipeline := service.NewPipeline(service.NewDispatcher(connector), service.WithRecorder(rt.Metrics))
		_, err = pipeline.Run(ctx, inv)

		rt.pushMetrics(ctx)
		return err
	}
}

// rawParams collects the command options that were given. Options a
// command does not define stay nil.
func rawParams(c *cli.Context) domain.RawParams {
	opt := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	return domain.RawParams{
		Token:    opt("token"),
		Amount:   opt("amount"),
		Style:    opt("style"),
		Creator:  opt("creator"),
		NewAdmin: opt("new-admin"),
	}
}
