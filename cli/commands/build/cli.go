// Package build implements `hdlbuild build`, the default command.
package build

import (
	"context"

	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const CommandName = "build"

func NewCommand(l log.Logger, opts *options.BuildOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Build the programs, lint and translate the modules, then compile the simulators.",
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, l, opts)
		},
	}
}

// Run runs every stage of the project build.
func Run(ctx context.Context, l log.Logger, opts *options.BuildOptions) error {
	pipeline, err := common.NewPipeline(l, opts)
	if err != nil {
		return err
	}

	return pipeline.Build(ctx, l)
}
