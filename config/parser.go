package config

import (
	"os"
	"path/filepath"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/util"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FindConfig looks for the project file in workingDir and its parents and returns its absolute path.
func FindConfig(workingDir, filename string) (string, error) {
	if filename == "" {
		filename = DefaultConfigFile
	}

	if filepath.IsAbs(filename) {
		if !util.IsFile(filename) {
			return "", errors.New(ConfigNotFoundError{WorkingDir: filepath.Dir(filename), Filename: filepath.Base(filename)})
		}

		return filename, nil
	}

	dir, err := filepath.Abs(workingDir)
	if err != nil {
		return "", errors.New(err)
	}

	for {
		path := filepath.Join(dir, filename)
		if util.IsFile(path) {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(ConfigNotFoundError{WorkingDir: workingDir, Filename: filename})
		}

		dir = parent
	}
}

// ParseConfigFile reads, decodes and validates the project file at configPath.
func ParseConfigFile(l log.Logger, configPath string) (*Config, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.New(err)
	}

	return ParseConfigString(l, configPath, string(content))
}

// ParseConfigString decodes the given content as if it was read from configPath.
func ParseConfigString(l log.Logger, configPath, content string) (cfg *Config, err error) {
	// The HCL decoder and cty conversions panic on some malformed input.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New(PanicWhileParsingConfigError{RecoveredValue: recovered, ConfigFile: configPath})
		}
	}()

	configPath, err = filepath.Abs(configPath)
	if err != nil {
		return nil, errors.New(err)
	}

	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(content), configPath)
	if diags.HasErrors() {
		return nil, errors.New(diags)
	}

	evalCtx := &hcl.EvalContext{
		Functions: createFunctions(filepath.Dir(configPath)),
	}

	cfg = &Config{}
	if diags := gohcl.DecodeBody(file.Body, evalCtx, cfg); diags.HasErrors() {
		return nil, errors.New(diags)
	}

	cfg.ConfigPath = configPath
	cfg.setDefaults()

	if err := cfg.resolveToolchainRoots(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	l.Debugf("Read project file %s: %d source roots, %d programs, %d top-level modules", configPath, len(cfg.SourceRoots), len(cfg.Programs), len(cfg.TopLevels))

	return cfg, nil
}

// resolveToolchainRoots makes the toolchain roots absolute, expanding a leading ~ and resolving
// relative roots against the project directory.
func (cfg *Config) resolveToolchainRoots() error {
	for _, root := range []*string{&cfg.RISCV.ClangRoot, &cfg.RISCV.GNURoot} {
		if *root == "" {
			continue
		}

		resolved, err := util.CanonicalPath(*root, cfg.ProjectDir())
		if err != nil {
			return err
		}

		*root = resolved
	}

	return nil
}

func (cfg *Config) validate() error {
	if len(cfg.SourceRoots) == 0 {
		return errors.New(NoSourceRootsError(cfg.ConfigPath))
	}

	programs := make(map[string]bool, len(cfg.Programs))

	for _, prog := range cfg.Programs {
		if programs[prog.Name] {
			return errors.New(DuplicateProgramError(prog.Name))
		}

		programs[prog.Name] = true
	}

	topLevels := make(map[string]bool, len(cfg.TopLevels))

	for _, topLevel := range cfg.TopLevels {
		if topLevels[topLevel.Path] {
			return errors.New(DuplicateTopLevelError(topLevel.Path))
		}

		topLevels[topLevel.Path] = true

		if topLevel.Program != "" && !programs[topLevel.Program] {
			return errors.New(UnknownProgramError{TopLevel: topLevel.Path, Program: topLevel.Program})
		}
	}

	return nil
}
