// Package pipeline runs the stages of a project build: discovery and resolution, the program stage,
// the module stage and the native stage. Every stage writes its own graph file before executing it.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/emitter"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/internal/program"
	"github.com/geckorv/hdlbuild/internal/registry"
	"github.com/geckorv/hdlbuild/internal/resolver"
	"github.com/geckorv/hdlbuild/internal/runner"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/telemetry"
	"github.com/geckorv/hdlbuild/util"
)

// Pipeline builds a single project.
type Pipeline struct {
	cfg        *config.Config
	projectDir string
	emitter    *emitter.Emitter
	executor   runner.Executor
}

// Project is a discovered and validated set of modules.
type Project struct {
	Registry *registry.Registry
	Resolver *resolver.Resolver
	// Sequences maps every source module onto its Resolved Dependency Sequence.
	Sequences map[string][]string
}

// New returns the pipeline of the project loaded into opts.Config.
func New(opts *options.BuildOptions) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New(ConfigNotLoadedError{})
	}

	projectDir := opts.Config.ProjectDir()

	executor, err := runner.NewExecutor(opts, projectDir)
	if err != nil {
		return nil, err
	}

	return NewWithExecutor(opts.Config, opts.SelfCommand, executor), nil
}

// NewWithExecutor returns a pipeline using the given executor.
func NewWithExecutor(cfg *config.Config, selfCommand string, executor runner.Executor) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		projectDir: cfg.ProjectDir(),
		emitter:    emitter.New(cfg, selfCommand),
		executor:   executor,
	}
}

// Discover finds the modules of every source root, validates their references and resolves every
// source module. Nothing is emitted when any of these fail.
func (pipeline *Pipeline) Discover(ctx context.Context, l log.Logger) (*Project, error) {
	var project *Project

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "discover", map[string]any{
		"source_roots": len(pipeline.cfg.SourceRoots),
	}, func(ctx context.Context) error {
		reg, err := registry.Discover(ctx, l, pipeline.projectDir, pipeline.cfg.SourceRoots, pipeline.cfg.DirectiveParser())
		if err != nil {
			return err
		}

		l.Debugf("Discovered %d header and %d source modules", len(reg.Headers()), len(reg.Sources()))

		res := resolver.New(reg)
		if err := res.Validate(); err != nil {
			return err
		}

		sequences, err := res.ResolveAll()
		if err != nil {
			return err
		}

		project = &Project{Registry: reg, Resolver: res, Sequences: sequences}

		return nil
	})

	return project, err
}

// Build runs all stages in order and stops at the first failing stage.
func (pipeline *Pipeline) Build(ctx context.Context, l log.Logger) error {
	project, err := pipeline.Discover(ctx, l)
	if err != nil {
		return err
	}

	stats, err := pipeline.runPrograms(ctx, l, true)
	if err != nil {
		return err
	}

	topLevels, err := pipeline.runModules(ctx, l, project, stats, true)
	if err != nil {
		return err
	}

	return pipeline.runSimulators(ctx, l, topLevels, true)
}

// Graph writes the graph files without executing them. Program metadata is taken from programs that
// were built before, and the native graph only covers top-level modules whose manifest already exists.
func (pipeline *Pipeline) Graph(ctx context.Context, l log.Logger) error {
	project, err := pipeline.Discover(ctx, l)
	if err != nil {
		return err
	}

	stats, err := pipeline.runPrograms(ctx, l, false)
	if err != nil {
		return err
	}

	topLevels, err := pipeline.runModules(ctx, l, project, stats, false)
	if err != nil {
		return err
	}

	var translated []*emitter.TopLevel

	for _, topLevel := range topLevels {
		if util.FileExists(pipeline.path(pipeline.emitter.Layout().Manifest(topLevel.Name()))) {
			translated = append(translated, topLevel)
			continue
		}

		l.Debugf("%s has not been translated yet, leaving it out of the %s graph", topLevel.Module.Path, emitter.SimulatorsStage)
	}

	return pipeline.runSimulators(ctx, l, translated, false)
}

func (pipeline *Pipeline) runPrograms(ctx context.Context, l log.Logger, execute bool) (map[string]*program.Stats, error) {
	programs := pipeline.cfg.ProgramList()
	stats := make(map[string]*program.Stats, len(programs))

	if len(programs) == 0 {
		l.Debugf("No programs declared")
		return stats, nil
	}

	err := pipeline.stage(ctx, l, emitter.ProgramsStage, execute, func() (*graph.Graph, error) {
		return pipeline.emitter.ProgramGraph(programs)
	})
	if err != nil {
		return nil, err
	}

	relLayout := pipeline.emitter.ProgramLayout()
	absLayout := program.Layout{BuildDir: pipeline.path(relLayout.BuildDir)}

	for _, prog := range programs {
		if !execute && !util.FileExists(absLayout.Symbols(prog)) {
			l.Debugf("Program %s has not been built yet", prog.Name)
			continue
		}

		programStats, err := program.DeriveStats(absLayout, prog)
		if err != nil {
			return nil, err
		}

		programStats.MemoryImage = relLayout.Memory(prog)
		stats[prog.Name] = programStats

		l.WithField(log.FieldKeyPrefix, prog.Name).Infof("%s: %s", prog.Name, programStats)
	}

	return stats, nil
}

func (pipeline *Pipeline) runModules(ctx context.Context, l log.Logger, project *Project, stats map[string]*program.Stats, execute bool) ([]*emitter.TopLevel, error) {
	var topLevels []*emitter.TopLevel

	err := pipeline.stage(ctx, l, emitter.ModulesStage, execute, func() (*graph.Graph, error) {
		g, emitted, err := pipeline.emitter.ModuleGraph(l, project.Registry, project.Resolver, stats)
		topLevels = emitted

		return g, err
	})

	return topLevels, err
}

func (pipeline *Pipeline) runSimulators(ctx context.Context, l log.Logger, topLevels []*emitter.TopLevel, execute bool) error {
	return pipeline.stage(ctx, l, emitter.SimulatorsStage, execute, func() (*graph.Graph, error) {
		return pipeline.emitter.NativeGraph(l, pipeline.projectDir, topLevels)
	})
}

// stage emits a graph, writes it to its graph file and executes it when requested.
func (pipeline *Pipeline) stage(ctx context.Context, l log.Logger, name string, execute bool, emit func() (*graph.Graph, error)) error {
	return telemetry.TelemeterFromContext(ctx).Collect(ctx, "stage_"+name, map[string]any{
		"execute": execute,
	}, func(ctx context.Context) error {
		g, err := emit()
		if err != nil {
			return err
		}

		graphFile := pipeline.path(pipeline.emitter.Layout().GraphFile(name))
		if err := WriteGraph(g, graphFile); err != nil {
			return err
		}

		l.Debugf("Wrote %d steps to %s", g.Len(), graphFile)

		if !execute {
			l.Infof("Graph %s written to %s", name, graphFile)
			return nil
		}

		l.Infof("Running %s stage", name)

		return pipeline.executor.Execute(ctx, l, g, graphFile)
	})
}

func (pipeline *Pipeline) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(pipeline.projectDir, filepath.FromSlash(rel))
}

// WriteGraph writes a graph to a ninja file, creating its directory. An unchanged file is left untouched.
func WriteGraph(g *graph.Graph, filename string) error {
	if err := util.EnsureDirectory(filepath.Dir(filename)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+"-*")
	if err != nil {
		return errors.New(err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := g.WriteNinja(tmp); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}

	if err := tmp.Close(); err != nil {
		return errors.New(err)
	}

	if util.FileExists(filename) {
		if equal, err := util.FilesEqual(tmp.Name(), filename); err == nil && equal {
			return nil
		}
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.New(err)
	}

	return nil
}

// ConfigNotLoadedError is returned when a pipeline is created before the project file was parsed.
type ConfigNotLoadedError struct{}

func (err ConfigNotLoadedError) Error() string {
	return "the project file has not been loaded"
}
