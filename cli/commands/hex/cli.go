// Package hex implements `hdlbuild hex`, which converts a raw program binary into a memory image.
package hex

import (
	"os"

	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/program"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "hex"
	usage       = "<binary> <memory image>"

	SymbolsFlagName = "symbols"
)

func NewCommand(l log.Logger) *cli.Command {
	var symbols string

	return &cli.Command{
		Name:      CommandName,
		Usage:     "Convert a raw binary into a hex memory image, one 32-bit word per line.",
		ArgsUsage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        SymbolsFlagName,
				Destination: &symbols,
				Usage:       "A symbol table to report the memory size and address width from.",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 2 {
				return errors.New(common.WrongNumberOfArgumentsError{
					Command:  CommandName,
					Usage:    usage,
					Expected: 2,
					Actual:   ctx.NArg(),
				})
			}

			return Run(l, ctx.Args().Get(0), ctx.Args().Get(1), symbols)
		},
	}
}

// Run converts binary into image. When symbols is set, the stack symbol is looked up in it as well.
func Run(l log.Logger, binary, image, symbols string) error {
	size, err := program.ConvertHexFile(binary, image)
	if err != nil {
		return err
	}

	if symbols == "" {
		l.Infof("%s: %d bytes (binary)", image, size)
		return nil
	}

	file, err := os.Open(symbols)
	if err != nil {
		return errors.New(err)
	}
	defer file.Close() //nolint:errcheck

	memorySize, found, err := program.ParseStackAddress(file)
	if err != nil {
		return err
	}

	if !found || memorySize == 0 {
		return errors.New(program.MissingSymbolError{Program: binary, Symbol: program.StackSymbol, Path: symbols})
	}

	stats := &program.Stats{BinarySize: size, MemorySize: memorySize, AddressWidth: program.AddressWidth(memorySize), MemoryImage: image}
	l.Infof("%s: %s", image, stats)

	return nil
}
