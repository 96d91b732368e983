// Package deps implements `hdlbuild deps`, which prints the Resolved Dependency Sequence of a module.
package deps

import (
	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "deps"
	usage       = "<module>"
)

func NewCommand(l log.Logger, opts *options.BuildOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the modules a source module is built from, in build order.",
		ArgsUsage: usage,
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return errors.New(common.WrongNumberOfArgumentsError{
					Command:  CommandName,
					Usage:    usage,
					Expected: 1,
					Actual:   ctx.NArg(),
				})
			}

			return Run(ctx.Context, l, opts, ctx.Args().First())
		},
	}
}
