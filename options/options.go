// Package options holds the run options of a single hdlbuild invocation.
package options

import (
	"io"
	"os"
	"runtime"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/telemetry"
)

const (
	ExecutorNinja = "ninja"
	ExecutorPool  = "pool"

	DefaultNinjaCommand = "ninja"
	DefaultLogFormat    = "pretty"
)

// DefaultParallelism is half of the available CPUs, at least one.
var DefaultParallelism = max(1, runtime.NumCPU()/2)

// BuildOptions are the settings of one run, populated from flags and environment variables.
type BuildOptions struct {
	Writer    io.Writer
	ErrWriter io.Writer

	// WorkingDir is where the project file is searched from.
	WorkingDir string
	// ConfigPath is the project file name or path. Resolved to an absolute path before the build starts.
	ConfigPath string

	LogLevel    string
	LogFormat   string
	LogNoColor  bool
	Parallelism int

	// Executor selects how graphs are executed, ExecutorNinja or ExecutorPool.
	Executor     string
	NinjaCommand string
	KeepGoing    bool
	// Force disables the up-to-date check of the in-process pool.
	Force bool

	// SelfCommand is the path of the hdlbuild executable the generated graphs call back into.
	SelfCommand string

	Telemetry *telemetry.Options

	Config *config.Config
}

// NewBuildOptions returns the options with their defaults.
func NewBuildOptions() *BuildOptions {
	return NewBuildOptionsWithWriters(os.Stdout, os.Stderr)
}

func NewBuildOptionsWithWriters(stdout, stderr io.Writer) *BuildOptions {
	return &BuildOptions{
		Writer:       stdout,
		ErrWriter:    stderr,
		ConfigPath:   config.DefaultConfigFile,
		LogLevel:     "info",
		LogFormat:    DefaultLogFormat,
		Parallelism:  0,
		Executor:     ExecutorNinja,
		NinjaCommand: DefaultNinjaCommand,
		Telemetry:    &telemetry.Options{},
	}
}

// EffectiveParallelism returns the flag value, then the project setting, then DefaultParallelism.
func (opts *BuildOptions) EffectiveParallelism() int {
	if opts.Parallelism > 0 {
		return opts.Parallelism
	}

	if opts.Config != nil && opts.Config.Parallelism > 0 {
		return opts.Config.Parallelism
	}

	return DefaultParallelism
}
