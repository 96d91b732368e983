// Package runner executes build graphs, either through ninja or through the in-process runner pool.
package runner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/internal/ninja"
	ninjarunner "github.com/geckorv/hdlbuild/internal/runner/ninja"
	"github.com/geckorv/hdlbuild/internal/runner/runnerpool"
	"github.com/geckorv/hdlbuild/internal/shell"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/telemetry"
	"github.com/geckorv/hdlbuild/util"
)

// Executor runs a build graph. graphFile is the ninja file the graph was written to.
type Executor interface {
	Execute(ctx context.Context, l log.Logger, g *graph.Graph, graphFile string) error
}

// NewExecutor returns the executor selected by the options. Relative paths of the graph are resolved against workingDir.
func NewExecutor(opts *options.BuildOptions, workingDir string) (Executor, error) {
	switch opts.Executor {
	case options.ExecutorNinja:
		runner, err := ninjarunner.New(opts.NinjaCommand, workingDir, opts.EffectiveParallelism(), opts.KeepGoing)
		if err != nil {
			return nil, err
		}

		runner.Writer = opts.Writer
		runner.ErrWriter = opts.ErrWriter

		return &NinjaExecutor{Runner: runner}, nil
	case options.ExecutorPool:
		return &PoolExecutor{
			WorkingDir:  workingDir,
			Parallelism: opts.EffectiveParallelism(),
			KeepGoing:   opts.KeepGoing,
			Force:       opts.Force,
		}, nil
	default:
		return nil, errors.New(UnknownExecutorError{Name: opts.Executor})
	}
}

// NinjaExecutor delegates to the external executor, which also provides incrementality.
type NinjaExecutor struct {
	Runner *ninjarunner.Runner
}

func (executor *NinjaExecutor) Execute(ctx context.Context, l log.Logger, g *graph.Graph, graphFile string) error {
	if g.Len() == 0 {
		l.Debugf("Graph %s is empty, nothing to run", g.Name)
		return nil
	}

	return executor.Runner.Run(ctx, l, graphFile)
}

// PoolExecutor runs the steps of a graph in-process on a bounded pool.
type PoolExecutor struct {
	WorkingDir  string
	Parallelism int
	KeepGoing   bool
	Force       bool
}

func (executor *PoolExecutor) Execute(ctx context.Context, l log.Logger, g *graph.Graph, _ string) error {
	pool := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(g),
		runnerpool.WithRunner(executor.stepRunner(l, g)),
		runnerpool.WithMaxConcurrency(executor.Parallelism),
		runnerpool.WithFailFast(!executor.KeepGoing),
	)

	results := pool.Run(ctx, l)

	var ran, skipped int

	for _, res := range results {
		if res.Status != runnerpool.StatusSucceeded {
			continue
		}

		if res.Skipped {
			skipped++
		} else {
			ran++
		}
	}

	l.Debugf("Graph %s: %d steps run, %d up to date, %d total", g.Name, ran, skipped, len(results))

	err := runnerpool.Errors(results)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if err != nil {
			l.Debugf("Graph %s stopped: %v", g.Name, err)
		}

		return errors.New(ctxErr)
	}

	return err
}

func (executor *PoolExecutor) stepRunner(l log.Logger, g *graph.Graph) runnerpool.TaskRunner {
	return func(ctx context.Context, task *runnerpool.Task) runnerpool.Result {
		step := task.Step
		stepLogger := l.WithField(log.FieldKeyPrefix, step.Prefix).WithField(log.FieldKeyStep, step.Kind.String())

		inputs := executor.paths(append(append([]string{}, step.Inputs...), step.Implicit...))
		outputs := executor.paths(step.Outputs)

		if !executor.Force && !util.IsOutdated(inputs, outputs) {
			stepLogger.Debugf("%s is up to date", step.ID())
			return runnerpool.Result{Skipped: true}
		}

		for _, output := range outputs {
			if err := util.EnsureDirectory(filepath.Dir(output)); err != nil {
				return runnerpool.Result{ExitCode: 1, Err: err}
			}
		}

		command := g.Command(step)
		stepLogger.Info(executor.describe(g, step))

		runOpts := &shell.RunOptions{
			WorkingDir: executor.WorkingDir,
			ErrWriter:  &log.Writer{Logger: stepLogger, Level: log.DebugLevel},
		}

		err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "step_"+step.Kind.String(), map[string]any{
			"graph":  g.Name,
			"prefix": step.Prefix,
			"output": step.ID(),
		}, func(ctx context.Context) error {
			_, err := shell.RunShellCommand(ctx, stepLogger, runOpts, command)
			return err
		})
		if err != nil {
			exitCode, exitErr := util.GetExitCode(err)
			if exitErr != nil || exitCode == 0 {
				exitCode = 1
			}

			return runnerpool.Result{ExitCode: exitCode, Err: err}
		}

		return runnerpool.Result{}
	}
}

// describe expands the rule description, falling back to the outputs.
func (executor *PoolExecutor) describe(g *graph.Graph, step *graph.Step) string {
	rule, _ := g.Rule(step.Kind)
	if rule.Description == "" {
		return strings.Join(step.Outputs, " ")
	}

	vars := map[string]string{
		"in":  strings.Join(step.Inputs, " "),
		"out": strings.Join(step.Outputs, " "),
	}

	for key, value := range step.Params {
		vars[key] = value
	}

	return ninja.Expand(rule.Description, vars)
}

func (executor *PoolExecutor) paths(paths []string) []string {
	resolved := make([]string, 0, len(paths))

	for _, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(executor.WorkingDir, path)
		}

		resolved = append(resolved, path)
	}

	return resolved
}

// UnknownExecutorError is returned for an executor name other than ninja or pool.
type UnknownExecutorError struct {
	Name string
}

func (err UnknownExecutorError) Error() string {
	return "unknown executor " + err.Name + ", expected " + options.ExecutorNinja + " or " + options.ExecutorPool
}
