// Package validate implements `hdlbuild validate`.
package validate

import (
	"context"

	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const CommandName = "validate"

func NewCommand(l log.Logger, opts *options.BuildOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Check that every include and import resolves and that no import cycle exists.",
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

	project, err := pipeline.Discover(ctx, l)
	if err != nil {
		return err
	}

	for _, module := range project.Registry.Sources() {
		if module.NoLint {
			l.Warnf("Module %s is exempt from lint", module.Path)
		}
	}

	l.Infof("%d header and %d source modules are valid", len(project.Registry.Headers()), len(project.Registry.Sources()))

	return nil
}
