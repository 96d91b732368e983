// Package merge implements `hdlbuild merge`, run by the merge steps of the module graph.
package merge

import (
	"context"

	"github.com/geckorv/hdlbuild/internal/merge"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "merge"

	SourceFlagName = "source"
	DestFlagName   = "dest"
	StampFlagName  = "stamp"
)

// Options are the flags of the merge command.
type Options struct {
	Source string
	Dest   string
	Stamp  string
}

func NewFlags(opts *Options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        SourceFlagName,
			Destination: &opts.Source,
			Required:    true,
			Usage:       "The directory the translator wrote the generated code to.",
		},
		&cli.StringFlag{
			Name:        DestFlagName,
			Destination: &opts.Dest,
			Required:    true,
			Usage:       "The artifact store the generated code is merged into.",
		},
		&cli.StringFlag{
			Name:        StampFlagName,
			Destination: &opts.Stamp,
			Usage:       "A file touched after a successful merge.",
		},
	}
}

func NewCommand(l log.Logger) *cli.Command {
	cmdOpts := &Options{}

	return &cli.Command{
		Name:  CommandName,
		Usage: "Copy the generated files whose content changed into the artifact store.",
		Flags: NewFlags(cmdOpts),
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, l, cmdOpts)
		},
	}
}

func Run(ctx context.Context, l log.Logger, opts *Options) error {
	_, err := merge.Merge(ctx, l, opts.Source, opts.Dest, opts.Stamp)

	return err
}
