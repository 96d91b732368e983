package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/emitter"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/internal/pipeline"
	"github.com/geckorv/hdlbuild/internal/resolver"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectConfig = `
source_roots = ["rtl/std", "rtl/gecko"]

program "basic" {
  sources = ["tests/crt0.s", "tests/main.c"]
}

top_level "rtl/gecko/gecko_nano.sv" {}

verilator {
  root = "/opt/verilator"
}
`

var projectFiles = map[string]string{
	"rtl/std/std_pkg.svh":            "`define XLEN 32\n",
	"rtl/std/std_util.sv":            "//!include std/std_pkg.svh\nmodule std_util;\nendmodule\n",
	"rtl/std/std_sim.sv":             "//!no_lint\nmodule std_sim;\nendmodule\n",
	"rtl/gecko/gecko_core.sv":        "//!import std/std_util.sv\nmodule gecko_core;\nendmodule\n",
	"rtl/gecko/gecko_nano.sv":        "//!import gecko/gecko_core.sv\n\n//!import std/std_util.sv\nmodule gecko_nano;\nendmodule\n",
	"tb_cpp/gecko/gecko_nano_tb.cpp": "int main() { return 0; }\n",
}

// fakeExecutor records the stages it is given and creates the files the real tools would produce.
type fakeExecutor struct {
	dir    string
	stages []string
	steps  map[string]int
}

func (executor *fakeExecutor) Execute(_ context.Context, _ log.Logger, g *graph.Graph, graphFile string) error {
	if !strings.HasPrefix(graphFile, executor.dir) {
		return os.ErrInvalid
	}

	executor.stages = append(executor.stages, g.Name)
	executor.steps[g.Name] = g.Len()

	for _, step := range g.Steps() {
		switch {
		case step.Kind == graph.Symbols:
			executor.write(step.ID(), "00000000 l    d  .text  00000000 .text\n00004000 g       .stack 00000000 __stack\n")
		case step.Kind == graph.Objcopy:
			executor.write(step.ID(), "\x13\x00\x00\x00\x6f\x00\x00\x00")
		case step.Kind == graph.Translate:
			name := step.Params[emitter.ParamName]
			executor.write(filepath.Join("bin", "obj_dir", "V"+name+"_classes.mk"),
				"VM_CLASSES_FAST += V"+name+"\nVM_CLASSES_SLOW += V"+name+"__Slow\nVM_GLOBAL_FAST += verilated\n")
		}
	}

	return nil
}

func (executor *fakeExecutor) write(rel, content string) {
	path := filepath.Join(executor.dir, filepath.FromSlash(rel))
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte(content), 0o644)
}

func setupProject(t *testing.T, files map[string]string) (*config.Config, *fakeExecutor) {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := config.ParseConfigString(logger.CreateLogger(), filepath.Join(dir, config.DefaultConfigFile), projectConfig)
	require.NoError(t, err)

	return cfg, &fakeExecutor{dir: dir, steps: make(map[string]int)}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	cfg, executor := setupProject(t, projectFiles)

	var out bytes.Buffer

	err := pipeline.NewWithExecutor(cfg, "hdlbuild", executor).Build(t.Context(), logger.CreateLoggerWithOutput(&out))
	require.NoError(t, err)

	assert.Equal(t, []string{emitter.ProgramsStage, emitter.ModulesStage, emitter.SimulatorsStage}, executor.stages)
	assert.Equal(t, 6, executor.steps[emitter.ProgramsStage])
	assert.Equal(t, 4, executor.steps[emitter.ModulesStage])
	assert.Equal(t, 4, executor.steps[emitter.SimulatorsStage])

	assert.Contains(t, out.String(), "basic: 8 bytes (binary), 16384 bytes (memory), 14 bits (address)")
	assert.Contains(t, out.String(), "Skipping lint-exempt module rtl/std/std_sim.sv")

	memory, err := os.ReadFile(filepath.Join(executor.dir, "bin", "basic.mem"))
	require.NoError(t, err)
	assert.Equal(t, "00000013\n0000006f\n", string(memory))

	modules, err := os.ReadFile(filepath.Join(executor.dir, "bin", "modules.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(modules), `-GMEMORY_ADDR_WIDTH=14`)
	assert.Contains(t, string(modules), "build bin/lint/rtl/gecko/gecko_nano.log: verilator_verilate rtl/std/std_util.sv rtl/gecko/gecko_core.sv rtl/gecko/gecko_nano.sv")

	for _, stage := range []string{emitter.ProgramsStage, emitter.ModulesStage, emitter.SimulatorsStage} {
		assert.FileExists(t, filepath.Join(executor.dir, "bin", stage+".ninja"))
	}
}

func TestGraphDoesNotExecute(t *testing.T) {
	t.Parallel()

	cfg, executor := setupProject(t, projectFiles)

	err := pipeline.NewWithExecutor(cfg, "hdlbuild", executor).Graph(t.Context(), logger.CreateLogger())
	require.NoError(t, err)

	assert.Empty(t, executor.stages)
	assert.FileExists(t, filepath.Join(executor.dir, "bin", "programs.ninja"))
	assert.FileExists(t, filepath.Join(executor.dir, "bin", "modules.ninja"))

	simulators, err := os.ReadFile(filepath.Join(executor.dir, "bin", "simulators.ninja"))
	require.NoError(t, err)
	assert.NotContains(t, string(simulators), "build ")
}

func TestBuildStopsOnInvalidReference(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"rtl/gecko/gecko_nano.sv": "//!include std/missing.svh\nmodule gecko_nano;\nendmodule\n",
	}

	cfg, executor := setupProject(t, files)
	require.NoError(t, os.MkdirAll(filepath.Join(executor.dir, "rtl", "std"), 0o755))

	err := pipeline.NewWithExecutor(cfg, "hdlbuild", executor).Build(t.Context(), logger.CreateLogger())
	require.Error(t, err)

	var referenceErr resolver.ReferenceError
	require.ErrorAs(t, err, &referenceErr)
	assert.Equal(t, "rtl/gecko/gecko_nano.sv", referenceErr.Module)
	assert.Equal(t, "rtl/std/missing.svh", referenceErr.Reference)

	assert.Empty(t, executor.stages)
	assert.NoFileExists(t, filepath.Join(executor.dir, "bin", "programs.ninja"))
}

func TestBuildStopsOnCycle(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"rtl/std/a.sv":   "//!import std/b.sv\nmodule a;\nendmodule\n",
		"rtl/std/b.sv":   "//!import std/a.sv\nmodule b;\nendmodule\n",
		"rtl/gecko/c.sv": "module c;\nendmodule\n",
	}

	cfg, executor := setupProject(t, files)

	_, err := pipeline.NewWithExecutor(cfg, "hdlbuild", executor).Discover(t.Context(), logger.CreateLogger())
	require.Error(t, err)

	var cycleErr resolver.DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Subset(t, []string{"rtl/std/a.sv", "rtl/std/b.sv"}, []string(cycleErr))
}

func TestNewRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(options.NewBuildOptions())

	var notLoaded pipeline.ConfigNotLoadedError
	require.ErrorAs(t, err, &notLoaded)
}

func TestWriteGraphKeepsUnchangedFile(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "out", "test.ninja")

	g := graph.New("test", graph.Rules{graph.Compile: {Name: "cc", Command: "cc -c $in -o $out"}})
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Compile, Outputs: []string{"a.o"}, Inputs: []string{"a.c"}}))

	require.NoError(t, pipeline.WriteGraph(g, filename))

	info, err := os.Stat(filename)
	require.NoError(t, err)

	require.NoError(t, pipeline.WriteGraph(g, filename))

	again, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())

	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
