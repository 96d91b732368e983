// Package common holds the steps shared by the commands that operate on a project.
package common

import (
	"fmt"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/pipeline"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
)

// LoadConfig finds and parses the project file and stores it in opts.Config.
func LoadConfig(l log.Logger, opts *options.BuildOptions) (*config.Config, error) {
	if opts.Config != nil {
		return opts.Config, nil
	}

	configPath, err := config.FindConfig(opts.WorkingDir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.ParseConfigFile(l, configPath)
	if err != nil {
		return nil, err
	}

	opts.ConfigPath = configPath
	opts.Config = cfg

	return cfg, nil
}

// NewPipeline loads the project file and returns the pipeline of the project.
func NewPipeline(l log.Logger, opts *options.BuildOptions) (*pipeline.Pipeline, error) {
	if _, err := LoadConfig(l, opts); err != nil {
		return nil, err
	}

	return pipeline.New(opts)
}

// WrongNumberOfArgumentsError is returned when a command is called with an unexpected number of arguments.
type WrongNumberOfArgumentsError struct {
	Command  string
	Usage    string
	Expected int
	Actual   int
}

func (err WrongNumberOfArgumentsError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d. Usage: hdlbuild %s %s", err.Command, err.Expected, err.Actual, err.Command, err.Usage)
}
