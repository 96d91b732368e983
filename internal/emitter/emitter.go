// Package emitter turns programs, resolved modules and translator manifests into build graphs.
//
// Emission is pure: nothing is executed here and the only files read are the translator manifests
// of the native stage.
package emitter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/internal/manifest"
	"github.com/geckorv/hdlbuild/internal/program"
	"github.com/geckorv/hdlbuild/internal/registry"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/util"
)

// Resolver returns the Resolved Dependency Sequence of a source module.
type Resolver interface {
	Resolve(path string) ([]string, error)
}

// Emitter builds the graphs of the three stages of a project.
type Emitter struct {
	cfg         *config.Config
	layout      Layout
	selfCommand string
}

// New returns an emitter for the project. selfCommand is the hdlbuild executable used by merge steps.
func New(cfg *config.Config, selfCommand string) *Emitter {
	return &Emitter{
		cfg:         cfg,
		layout:      Layout{BuildDir: cfg.BuildDir, RTLDir: cfg.RTLDir},
		selfCommand: selfCommand,
	}
}

// Layout returns the artifact layout used by the emitter.
func (emitter *Emitter) Layout() Layout {
	return emitter.layout
}

// ProgramLayout returns the artifact layout of the programs.
func (emitter *Emitter) ProgramLayout() program.Layout {
	return program.Layout{BuildDir: emitter.cfg.BuildDir}
}

// ProgramGraph emits one compile or assemble step per program source, then the link, objcopy,
// disassemble and symbols steps of every program.
func (emitter *Emitter) ProgramGraph(programs program.Programs) (*graph.Graph, error) {
	g := graph.New(ProgramsStage, ProgramRules(emitter.cfg))
	layout := emitter.ProgramLayout()

	for _, prog := range programs {
		params := map[string]string{
			ParamOpt:      prog.Opt,
			ParamIncludes: includeFlags(prog.IncludeDirs),
		}

		objects := make([]string, 0, len(prog.Sources))

		for _, source := range prog.Sources {
			kind := graph.Compile
			if program.IsAssembly(source) {
				kind = graph.Assemble
			}

			object := layout.Object(prog, source)
			if err := g.Add(&graph.Step{
				Kind:    kind,
				Outputs: []string{object},
				Inputs:  []string{source},
				Params:  params,
				Prefix:  prog.Name,
			}); err != nil {
				return nil, err
			}

			objects = append(objects, object)
		}

		link := &graph.Step{
			Kind:    graph.Link,
			Outputs: []string{layout.Linked(prog)},
			Inputs:  objects,
			Params:  maps.Clone(params),
			Prefix:  prog.Name,
		}

		if prog.LinkerScript != "" {
			link.Implicit = []string{prog.LinkerScript}
			link.Params[ParamLinkFlags] = "-T " + prog.LinkerScript
		}

		if err := g.Add(link); err != nil {
			return nil, err
		}

		linked := layout.Linked(prog)

		for _, extract := range []struct {
			kind   graph.Kind
			output string
		}{
			{graph.Objcopy, layout.Binary(prog)},
			{graph.Disassemble, layout.Disassembly(prog)},
			{graph.Symbols, layout.Symbols(prog)},
		} {
			if err := g.Add(&graph.Step{
				Kind:    extract.kind,
				Outputs: []string{extract.output},
				Inputs:  []string{linked},
				Prefix:  prog.Name,
			}); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// TopLevel is a source module designated for full translation.
type TopLevel struct {
	Module *registry.Module
	Config *config.TopLevelConfig
}

// Name is the translator prefix of the module.
func (topLevel *TopLevel) Name() string {
	return topLevel.Module.Name()
}

// ModuleGraph emits a lint step for every source module, or a translate and a merge step for top-level
// modules. Lint-exempt modules get no step at all. Top-level modules are parameterized with the stats
// of their program; stats has one entry per built program.
func (emitter *Emitter) ModuleGraph(l log.Logger, reg *registry.Registry, resolver Resolver, stats map[string]*program.Stats) (*graph.Graph, []*TopLevel, error) {
	g := graph.New(ModulesStage, ModuleRules(emitter.cfg, emitter.selfCommand))

	var topLevels []*TopLevel

	for _, module := range reg.Sources() {
		moduleLogger := l.WithField(log.FieldKeyPrefix, module.Name())

		if module.NoLint {
			moduleLogger.Warnf("Skipping lint-exempt module %s", module.Path)
			continue
		}

		sequence, err := resolver.Resolve(module.Path)
		if err != nil {
			return nil, nil, err
		}

		topLevelConfig := emitter.cfg.TopLevel(module.Path)
		if topLevelConfig == nil {
			if err := g.Add(&graph.Step{
				Kind:    graph.Lint,
				Outputs: []string{emitter.layout.LintLog(module.Path)},
				Inputs:  sequence,
				Params:  map[string]string{ParamName: module.Name()},
				Prefix:  module.Name(),
			}); err != nil {
				return nil, nil, err
			}

			continue
		}

		topLevel := &TopLevel{Module: module, Config: topLevelConfig}
		if err := emitter.addTranslation(moduleLogger, g, topLevel, sequence, stats); err != nil {
			return nil, nil, err
		}

		topLevels = append(topLevels, topLevel)
	}

	for _, topLevelConfig := range emitter.cfg.TopLevels {
		if _, ok := reg.Source(topLevelConfig.Path); !ok {
			l.Warnf("Top-level module %s is not a discovered source module", topLevelConfig.Path)
		}
	}

	return g, topLevels, nil
}

func (emitter *Emitter) addTranslation(l log.Logger, g *graph.Graph, topLevel *TopLevel, sequence []string, stats map[string]*program.Stats) error {
	name := topLevel.Name()
	genDir := emitter.layout.GenDir(name)
	logPath := emitter.layout.LintLog(topLevel.Module.Path)

	var args []string

	if programName := emitter.programOf(topLevel.Config); programName == "" {
		l.Warnf("No program declared, %s is translated without memory parameters", topLevel.Module.Path)
	} else if programStats, ok := stats[programName]; !ok {
		l.Warnf("Program %s has not been built, %s is translated without memory parameters", programName, topLevel.Module.Path)
	} else {
		args = append(args,
			fmt.Sprintf("-G%s=%d", emitter.cfg.Verilator.AddressWidthParam, programStats.AddressWidth),
			fmt.Sprintf(`-G%s='"%s"'`, emitter.cfg.Verilator.StartupParam, programStats.MemoryImage),
		)
	}

	for _, key := range slices.Sorted(maps.Keys(topLevel.Config.Parameters)) {
		args = append(args, fmt.Sprintf("-G%s=%s", key, topLevel.Config.Parameters[key]))
	}

	if err := g.Add(&graph.Step{
		Kind:    graph.Translate,
		Outputs: []string{logPath},
		Inputs:  sequence,
		Params: map[string]string{
			ParamName: name,
			ParamMdir: genDir,
			ParamArgs: strings.Join(args, " "),
		},
		Prefix: name,
	}); err != nil {
		return err
	}

	return g.Add(&graph.Step{
		Kind:    graph.Merge,
		Outputs: []string{emitter.layout.MergeStamp(name)},
		Inputs:  []string{logPath},
		Params: map[string]string{
			ParamSource: genDir,
			ParamDest:   emitter.layout.Store(),
		},
		Prefix: name,
	})
}

// programOf returns the program bound to a top-level module, the first declared program by default.
func (emitter *Emitter) programOf(topLevel *config.TopLevelConfig) string {
	if topLevel.Program != "" {
		return topLevel.Program
	}

	if len(emitter.cfg.Programs) > 0 {
		return emitter.cfg.Programs[0].Name
	}

	return ""
}

// NativeGraph reads the merged manifest of every top-level module from projectDir and emits one
// compile step per listed file and one link step per simulator. Shared global objects are emitted once.
func (emitter *Emitter) NativeGraph(l log.Logger, projectDir string, topLevels []*TopLevel) (*graph.Graph, error) {
	g := graph.New(SimulatorsStage, NativeRules(emitter.cfg, emitter.layout))

	for _, topLevel := range topLevels {
		name := topLevel.Name()
		moduleLogger := l.WithField(log.FieldKeyPrefix, name)

		driver := topLevel.Config.Driver
		if driver == "" {
			driver = emitter.layout.Driver(topLevel.Module.Path)
		}

		if !util.FileExists(util.JoinPath(projectDir, driver)) {
			moduleLogger.Warnf("No driver %s found, skipping the simulator of %s", driver, topLevel.Module.Path)
			continue
		}

		classes, err := manifest.ParseFile(util.JoinPath(projectDir, emitter.layout.Manifest(name)))
		if err != nil {
			return nil, err
		}

		sources := classes.Sources(emitter.layout.Store(), emitter.cfg.Verilator.Root)
		objects := make([]string, 0, len(sources)+1)

		for _, source := range sources {
			object := emitter.layout.Object(source)
			objects = append(objects, object)

			if source.Category.IsGlobal() && g.Has(object) {
				continue
			}

			args := ""
			if source.Category.IsFast() {
				args = "-O2"
			}

			if err := g.Add(&graph.Step{
				Kind:    graph.Compile,
				Outputs: []string{object},
				Inputs:  []string{source.Path},
				Params:  map[string]string{ParamArgs: args},
				Prefix:  name,
			}); err != nil {
				return nil, err
			}
		}

		if err := g.Add(&graph.Step{
			Kind:    graph.Link,
			Outputs: []string{emitter.layout.Simulator(name)},
			Inputs:  append(objects, driver),
			Params:  map[string]string{ParamArgs: "-O2"},
			Prefix:  name,
		}); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func includeFlags(dirs []string) string {
	flags := make([]string, len(dirs))

	for i, dir := range dirs {
		flags[i] = "-I" + dir
	}

	return strings.Join(flags, " ")
}
