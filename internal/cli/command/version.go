package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/cli/output"
	"github.com/yndnr/curvectl/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			return output.NewFormatter(format, false).Format(c.App.Writer, buildinfo.Get())
		},
	}
}
