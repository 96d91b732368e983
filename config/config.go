// Package config reads the project file `hdlbuild.hcl`.
package config

import (
	"os"
	"path/filepath"

	"github.com/geckorv/hdlbuild/internal/directive"
	"github.com/geckorv/hdlbuild/internal/program"
)

const (
	DefaultConfigFile = "hdlbuild.hcl"
	DefaultBuildDir   = "bin"

	DefaultRISCVTarget = "riscv32"
	DefaultRISCVMarch  = "rv32i"
	DefaultCXX         = "g++"

	DefaultAddressWidthParam = "MEMORY_ADDR_WIDTH"
	DefaultStartupParam      = "STARTUP_PROGRAM"

	LLVMRootEnv      = "LLVM_ROOT"
	RISCVGNURootEnv  = "RISCV_GNU_ROOT"
	VerilatorRootEnv = "VERILATOR_ROOT"
)

var (
	DefaultVerilatorFlags      = []string{"+define+__SYNTH_ONLY__=1"}
	DefaultVerilatorTraceFlags = []string{"--trace", "--trace-structs", "--output-split", "10000"}
)

// Config is the decoded project file.
type Config struct {
	SourceRoots []string          `hcl:"source_roots"`
	RTLDir      string            `hcl:"rtl_dir,optional"`
	WrapperDir  string            `hcl:"wrapper_dir,optional"`
	BuildDir    string            `hcl:"build_dir,optional"`
	Parallelism int               `hcl:"parallelism,optional"`
	Programs    []*ProgramConfig  `hcl:"program,block"`
	TopLevels   []*TopLevelConfig `hcl:"top_level,block"`
	RISCV       *RISCVConfig      `hcl:"riscv,block"`
	Verilator   *VerilatorConfig  `hcl:"verilator,block"`

	// ConfigPath is the absolute path of the parsed file.
	ConfigPath string
}

// ProgramConfig declares an embedded program. Declaration order is significant.
type ProgramConfig struct {
	Name         string   `hcl:"name,label"`
	Sources      []string `hcl:"sources"`
	LinkerScript string   `hcl:"linker_script,optional"`
	IncludeDirs  []string `hcl:"include_dirs,optional"`
	Opt          string   `hcl:"opt,optional"`
}

// TopLevelConfig designates a source module for full translation.
type TopLevelConfig struct {
	Path string `hcl:"path,label"`
	// Program names the program whose memory image parameterizes the module. Defaults to the first declared program.
	Program    string            `hcl:"program,optional"`
	Driver     string            `hcl:"driver,optional"`
	Parameters map[string]string `hcl:"parameters,optional"`
}

// RISCVConfig locates the cross toolchain.
type RISCVConfig struct {
	ClangRoot string `hcl:"clang_root,optional"`
	GNURoot   string `hcl:"gnu_root,optional"`
	Target    string `hcl:"target,optional"`
	March     string `hcl:"march,optional"`
}

// VerilatorConfig locates the translator and the native compiler.
type VerilatorConfig struct {
	Root              string   `hcl:"root,optional"`
	CXX               string   `hcl:"cxx,optional"`
	Flags             []string `hcl:"flags,optional"`
	TraceFlags        []string `hcl:"trace_flags,optional"`
	AddressWidthParam string   `hcl:"address_width_param,optional"`
	StartupParam      string   `hcl:"startup_param,optional"`
}

// ProjectDir is the directory all relative paths of the project are resolved against.
func (cfg *Config) ProjectDir() string {
	return filepath.Dir(cfg.ConfigPath)
}

// ProgramList returns the declared programs in declaration order.
func (cfg *Config) ProgramList() program.Programs {
	programs := make(program.Programs, 0, len(cfg.Programs))

	for _, prog := range cfg.Programs {
		programs = append(programs, &program.Program{
			Name:         prog.Name,
			Sources:      prog.Sources,
			LinkerScript: prog.LinkerScript,
			IncludeDirs:  prog.IncludeDirs,
			Opt:          prog.Opt,
		})
	}

	return programs
}

// TopLevel returns the top-level declaration of a module path.
func (cfg *Config) TopLevel(path string) *TopLevelConfig {
	for _, topLevel := range cfg.TopLevels {
		if topLevel.Path == path {
			return topLevel
		}
	}

	return nil
}

// DirectiveParser returns a parser resolving directives against the configured directories.
func (cfg *Config) DirectiveParser() *directive.Parser {
	return directive.NewParser(directive.WithRTLDir(cfg.RTLDir), directive.WithWrapperDir(cfg.WrapperDir))
}

func (cfg *Config) setDefaults() {
	if cfg.RTLDir == "" {
		cfg.RTLDir = directive.DefaultRTLDir
	}

	if cfg.WrapperDir == "" {
		cfg.WrapperDir = directive.DefaultWrapperDir
	}

	if cfg.BuildDir == "" {
		cfg.BuildDir = DefaultBuildDir
	}

	if cfg.RISCV == nil {
		cfg.RISCV = &RISCVConfig{}
	}

	if cfg.RISCV.ClangRoot == "" {
		cfg.RISCV.ClangRoot = os.Getenv(LLVMRootEnv)
	}

	if cfg.RISCV.GNURoot == "" {
		cfg.RISCV.GNURoot = os.Getenv(RISCVGNURootEnv)
	}

	if cfg.RISCV.Target == "" {
		cfg.RISCV.Target = DefaultRISCVTarget
	}

	if cfg.RISCV.March == "" {
		cfg.RISCV.March = DefaultRISCVMarch
	}

	if cfg.Verilator == nil {
		cfg.Verilator = &VerilatorConfig{}
	}

	if cfg.Verilator.Root == "" {
		cfg.Verilator.Root = os.Getenv(VerilatorRootEnv)
	}

	if cfg.Verilator.Root == "" {
		cfg.Verilator.Root = "verilator"
	}

	if cfg.Verilator.CXX == "" {
		cfg.Verilator.CXX = DefaultCXX
	}

	if cfg.Verilator.Flags == nil {
		cfg.Verilator.Flags = DefaultVerilatorFlags
	}

	if cfg.Verilator.TraceFlags == nil {
		cfg.Verilator.TraceFlags = DefaultVerilatorTraceFlags
	}

	if cfg.Verilator.AddressWidthParam == "" {
		cfg.Verilator.AddressWidthParam = DefaultAddressWidthParam
	}

	if cfg.Verilator.StartupParam == "" {
		cfg.Verilator.StartupParam = DefaultStartupParam
	}
}
