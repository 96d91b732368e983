package runnerpool_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/internal/runner/runnerpool"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = graph.Rules{
	graph.Compile: {Name: "cc", Command: "cc -c $in -o $out"},
	graph.Link:    {Name: "ld", Command: "ld $in -o $out"},
}

// threeSteps builds S1 (no deps), S2 (depends on S1) and S3 (no deps).
func threeSteps(t *testing.T) *graph.Graph {
	t.Helper()

	g := graph.New("test", testRules)
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Compile, Outputs: []string{"s1.o"}, Inputs: []string{"s1.c"}}))
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Link, Outputs: []string{"s2"}, Inputs: []string{"s1.o"}}))
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Compile, Outputs: []string{"s3.o"}, Inputs: []string{"s3.c"}}))

	return g
}

type recorder struct {
	failures map[string]bool
	started  []string
	mu       sync.Mutex
}

func (r *recorder) run(_ context.Context, task *runnerpool.Task) runnerpool.Result {
	r.mu.Lock()
	r.started = append(r.started, task.ID())
	r.mu.Unlock()

	if r.failures[task.ID()] {
		return runnerpool.Result{ExitCode: 1, Err: fmt.Errorf("%s failed", task.ID())}
	}

	return runnerpool.Result{}
}

func statuses(results []runnerpool.Result) map[string]runnerpool.Status {
	out := make(map[string]runnerpool.Status, len(results))
	for _, res := range results {
		out[res.TaskID] = res.Status
	}

	return out
}

func TestRunnerPoolRespectsDependencies(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	pool := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(threeSteps(t)),
		runnerpool.WithRunner(rec.run),
		runnerpool.WithMaxConcurrency(1),
	)

	results := pool.Run(context.Background(), logger.CreateLogger())
	require.Len(t, results, 3)
	require.NoError(t, runnerpool.Errors(results))

	assert.Equal(t, []string{"s1.o", "s2", "s3.o"}, []string{results[0].TaskID, results[1].TaskID, results[2].TaskID})
	assert.Len(t, rec.started, 3)
	assert.Less(t, indexOf(rec.started, "s1.o"), indexOf(rec.started, "s2"))

	for _, res := range results {
		assert.Equal(t, runnerpool.StatusSucceeded, res.Status, res.TaskID)
	}
}

func TestRunnerPoolFailFast(t *testing.T) {
	t.Parallel()

	rec := &recorder{failures: map[string]bool{"s1.o": true}}
	pool := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(threeSteps(t)),
		runnerpool.WithRunner(rec.run),
		runnerpool.WithMaxConcurrency(1),
	)

	results := pool.Run(context.Background(), logger.CreateLogger())

	assert.Equal(t, []string{"s1.o"}, rec.started)
	assert.Equal(t, map[string]runnerpool.Status{
		"s1.o": runnerpool.StatusFailed,
		"s2":   runnerpool.StatusFailFast,
		"s3.o": runnerpool.StatusFailFast,
	}, statuses(results))

	var earlyExit runnerpool.StepEarlyExitError
	require.ErrorAs(t, results[1].Err, &earlyExit)
	assert.Equal(t, "s1.o", earlyExit.FailedDependency)

	err := runnerpool.Errors(results)
	require.Error(t, err)

	var failed runnerpool.StepFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "s1.o", failed.StepID)
	assert.Len(t, errors.UnwrapMultiErrors(err), 3)
}

func TestRunnerPoolKeepGoing(t *testing.T) {
	t.Parallel()

	rec := &recorder{failures: map[string]bool{"s1.o": true}}
	pool := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(threeSteps(t)),
		runnerpool.WithRunner(rec.run),
		runnerpool.WithMaxConcurrency(1),
		runnerpool.WithFailFast(false),
	)

	results := pool.Run(context.Background(), logger.CreateLogger())

	assert.ElementsMatch(t, []string{"s1.o", "s3.o"}, rec.started)
	assert.Equal(t, map[string]runnerpool.Status{
		"s1.o": runnerpool.StatusFailed,
		"s2":   runnerpool.StatusAncestorFailed,
		"s3.o": runnerpool.StatusSucceeded,
	}, statuses(results))
}

func TestRunnerPoolTransitiveAncestorFailure(t *testing.T) {
	t.Parallel()

	g := graph.New("chain", testRules)
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Compile, Outputs: []string{"a.o"}, Inputs: []string{"a.c"}}))
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Link, Outputs: []string{"b"}, Inputs: []string{"a.o"}}))
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Link, Outputs: []string{"c"}, Inputs: []string{"b"}}))

	rec := &recorder{failures: map[string]bool{"a.o": true}}
	results := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(g),
		runnerpool.WithRunner(rec.run),
		runnerpool.WithFailFast(false),
	).Run(context.Background(), logger.CreateLogger())

	assert.Equal(t, runnerpool.StatusAncestorFailed, results[2].Status)

	var earlyExit runnerpool.StepEarlyExitError
	require.ErrorAs(t, results[2].Err, &earlyExit)
	assert.Equal(t, "a.o", earlyExit.FailedDependency)
}

func TestRunnerPoolConcurrencyBound(t *testing.T) {
	t.Parallel()

	g := graph.New("wide", testRules)
	for i := range 8 {
		require.NoError(t, g.Add(&graph.Step{
			Kind:    graph.Compile,
			Outputs: []string{fmt.Sprintf("%d.o", i)},
			Inputs:  []string{fmt.Sprintf("%d.c", i)},
		}))
	}

	var inFlight, peak atomic.Int32

	runner := func(context.Context, *runnerpool.Task) runnerpool.Result {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)

		return runnerpool.Result{}
	}

	results := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(g),
		runnerpool.WithRunner(runner),
		runnerpool.WithMaxConcurrency(2),
	).Run(context.Background(), logger.CreateLogger())

	require.NoError(t, runnerpool.Errors(results))
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Positive(t, peak.Load())
}

func TestRunnerPoolRecoversPanics(t *testing.T) {
	t.Parallel()

	runner := func(_ context.Context, task *runnerpool.Task) runnerpool.Result {
		if task.ID() == "s3.o" {
			panic("boom")
		}

		return runnerpool.Result{}
	}

	results := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(threeSteps(t)),
		runnerpool.WithRunner(runner),
		runnerpool.WithFailFast(false),
	).Run(context.Background(), logger.CreateLogger())

	assert.Equal(t, runnerpool.StatusFailed, statuses(results)["s3.o"])
	assert.Equal(t, runnerpool.StatusSucceeded, statuses(results)["s2"])
	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "boom")
}

func TestRunnerPoolCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	results := runnerpool.NewRunnerPool(
		runnerpool.WithGraph(threeSteps(t)),
		runnerpool.WithRunner(rec.run),
	).Run(ctx, logger.CreateLogger())

	assert.Empty(t, rec.started)

	for _, res := range results {
		assert.Equal(t, runnerpool.StatusFailFast, res.Status)
	}
}

func TestRunnerPoolEmptyGraph(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	results := runnerpool.NewRunnerPool(runnerpool.WithRunner(rec.run)).Run(context.Background(), logger.CreateLogger())

	assert.Empty(t, results)
	assert.NoError(t, runnerpool.Errors(results))
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}

	return -1
}
