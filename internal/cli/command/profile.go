package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/cli/config"
	"github.com/yndnr/curvectl/internal/core/domain"
)

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Inspect or create the curvectl profile",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective profile",
				Action: profileShow,
			},
			{
				Name:  "init",
				Usage: "Write a default profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: profileInit,
			},
		},
	}
}

func profileShow(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	return rt.Print(rt.Config)
}

func profilePath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func profileInit(c *cli.Context) error {
	path := profilePath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("%s already exists, use --force to overwrite", path))
	}
	if err := config.Save(config.Default(), path); err != nil {
		return domain.ErrConfigInvalid.Wrap(err)
	}
	fmt.Fprintf(c.App.Writer, "Profile written to %s\n", path)
	return nil
}
