package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectConfig = `
source_roots = ["rtl/std", "rtl/gecko", path_join("rtl", "gecko", "cores")]
build_dir    = "out"
parallelism  = 4

program "basic" {
  sources       = ["tests/lib/crt0.s", "tests/basic/main.c"]
  linker_script = "tests/gecko_compiled.ld"
  opt           = "-O2"
}

program "dhrystone" {
  sources       = ["tests/lib/crt0.s", "tests/dhrystone/main.c"]
  linker_script = "tests/gecko_compiled.ld"
  include_dirs  = ["tests/"]
}

top_level "rtl/gecko/cores/gecko_nano.sv" {
  program    = "dhrystone"
  parameters = { ENABLE_PERF = "1" }
}

riscv {
  clang_root = get_env("HDLBUILD_TEST_UNSET_VARIABLE", "/opt/llvm")
  gnu_root   = "/opt/riscv"
}

verilator {
  cxx = upper("g++-11")
}
`

func TestParseConfigString(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseConfigString(logger.CreateLogger(), "/project/hdlbuild.hcl", projectConfig)
	require.NoError(t, err)

	assert.Equal(t, []string{"rtl/std", "rtl/gecko", "rtl/gecko/cores"}, cfg.SourceRoots)
	assert.Equal(t, "out", cfg.BuildDir)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "/project", filepath.ToSlash(cfg.ProjectDir()))

	programs := cfg.ProgramList()
	require.Len(t, programs, 2)
	assert.Equal(t, "basic", programs[0].Name)
	assert.Equal(t, "-O2", programs[0].Opt)
	assert.Equal(t, []string{"tests/"}, programs.Find("dhrystone").IncludeDirs)

	topLevel := cfg.TopLevel("rtl/gecko/cores/gecko_nano.sv")
	require.NotNil(t, topLevel)
	assert.Equal(t, "dhrystone", topLevel.Program)
	assert.Equal(t, map[string]string{"ENABLE_PERF": "1"}, topLevel.Parameters)

	assert.Equal(t, "/opt/llvm", cfg.RISCV.ClangRoot)
	assert.Equal(t, config.DefaultRISCVMarch, cfg.RISCV.March)
	assert.Equal(t, "G++-11", cfg.Verilator.CXX)
	assert.Equal(t, config.DefaultVerilatorTraceFlags, cfg.Verilator.TraceFlags)
	assert.Equal(t, config.DefaultStartupParam, cfg.Verilator.StartupParam)
	assert.Equal(t, "rtl", cfg.RTLDir)
	assert.Equal(t, "wrappers", cfg.WrapperDir)
}

func TestToolchainRootsAreResolved(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseConfigString(logger.CreateLogger(), "/project/hdlbuild.hcl", `
source_roots = ["rtl"]

riscv {
  clang_root = "tools/llvm"
  gnu_root   = "/opt/riscv/../riscv-gnu"
}
`)
	require.NoError(t, err)

	assert.Equal(t, "/project/tools/llvm", filepath.ToSlash(cfg.RISCV.ClangRoot))
	assert.Equal(t, "/opt/riscv-gnu", filepath.ToSlash(cfg.RISCV.GNURoot))
}

func TestParseConfigStringErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected any
	}{
		{
			name:     "no-source-roots",
			content:  `source_roots = []`,
			expected: new(config.NoSourceRootsError),
		},
		{
			name:     "duplicate-program",
			content:  "source_roots = [\"rtl\"]\nprogram \"a\" {\n sources = []\n}\nprogram \"a\" {\n sources = []\n}\n",
			expected: new(config.DuplicateProgramError),
		},
		{
			name:     "unknown-program",
			content:  "source_roots = [\"rtl\"]\ntop_level \"rtl/top.sv\" {\n program = \"missing\"\n}\n",
			expected: &config.UnknownProgramError{},
		},
		{
			name:     "duplicate-top-level",
			content:  "source_roots = [\"rtl\"]\ntop_level \"rtl/top.sv\" {}\ntop_level \"rtl/top.sv\" {}\n",
			expected: new(config.DuplicateTopLevelError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.ParseConfigString(logger.CreateLogger(), "hdlbuild.hcl", tc.content)
			require.Error(t, err)
			assert.True(t, errors.As(err, tc.expected), "unexpected error %v", err)
		})
	}

	_, err := config.ParseConfigString(logger.CreateLogger(), "hdlbuild.hcl", `source_roots = [`)
	require.Error(t, err)

	_, err = config.ParseConfigString(logger.CreateLogger(), "hdlbuild.hcl", "source_roots = [\"rtl\"]\nunknown = 1\n")
	require.Error(t, err)
}

func TestFindConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "rtl", "core")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultConfigFile), []byte(`source_roots = ["rtl"]`), 0o644))

	path, err := config.FindConfig(nested, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, config.DefaultConfigFile), path)

	_, err = config.FindConfig(nested, "other.hcl")

	var notFoundErr config.ConfigNotFoundError
	require.True(t, errors.As(err, &notFoundErr))

	cfg, err := config.ParseConfigFile(logger.CreateLogger(), path)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectDir())
}
