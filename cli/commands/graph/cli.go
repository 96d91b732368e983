// Package graph implements `hdlbuild graph`, which writes the graph files without running them.
package graph

import (
	"context"

	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const CommandName = "graph"

func NewCommand(l log.Logger, opts *options.BuildOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Write the graph file of every stage without executing it.",
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, l, opts)
		},
	}
}

func Run(ctx context.Context, l log.Logger, opts *options.BuildOptions) error {
	pipeline, err := common.NewPipeline(l, opts)
	if err != nil {
		return err
	}

	return pipeline.Graph(ctx, l)
}
