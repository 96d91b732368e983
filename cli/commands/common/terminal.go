package common

import (
	"io"
	"os"

	"github.com/geckorv/hdlbuild/options"
	"github.com/mattn/go-isatty"
)

// ColorsEnabled reports whether output written to writer may contain color codes.
func ColorsEnabled(opts *options.BuildOptions, writer io.Writer) bool {
	if opts.LogNoColor {
		return false
	}

	file, ok := writer.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
