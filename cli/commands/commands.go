// Package commands lists the commands of hdlbuild.
package commands

import (
	"github.com/geckorv/hdlbuild/cli/commands/build"
	"github.com/geckorv/hdlbuild/cli/commands/deps"
	"github.com/geckorv/hdlbuild/cli/commands/graph"
	"github.com/geckorv/hdlbuild/cli/commands/hex"
	"github.com/geckorv/hdlbuild/cli/commands/merge"
	"github.com/geckorv/hdlbuild/cli/commands/validate"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

// NewCommands returns the commands in the order they are listed in the help output.
func NewCommands(l log.Logger, opts *options.BuildOptions) []*cli.Command {
	return []*cli.Command{
		build.NewCommand(l, opts),
		graph.NewCommand(l, opts),
		validate.NewCommand(l, opts),
		deps.NewCommand(l, opts),
		merge.NewCommand(l),
		hex.NewCommand(l),
	}
}
