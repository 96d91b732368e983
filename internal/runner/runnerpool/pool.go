// Package runnerpool executes a build graph on a bounded pool of goroutines.
package runnerpool

import (
	"context"
	"sync"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/telemetry"
)

// RunnerPool orchestrates concurrent execution over a DAG.
type RunnerPool struct {
	q           *queue
	graph       *graph.Graph
	runner      TaskRunner
	readyCh     chan struct{}
	concurrency int
	failFast    bool
}

// RunnerPoolOption is a function that modifies a RunnerPool.
type RunnerPoolOption func(*RunnerPool)

// WithGraph sets the build graph to execute.
func WithGraph(g *graph.Graph) RunnerPoolOption {
	return func(rp *RunnerPool) {
		rp.graph = g
	}
}

// WithRunner sets the TaskRunner for the RunnerPool.
func WithRunner(runner TaskRunner) RunnerPoolOption {
	return func(rp *RunnerPool) {
		rp.runner = runner
	}
}

// WithMaxConcurrency sets the concurrency for the RunnerPool.
func WithMaxConcurrency(maxConc int) RunnerPoolOption {
	return func(rp *RunnerPool) {
		if maxConc <= 0 {
			maxConc = 1
		}

		rp.concurrency = maxConc
	}
}

// WithFailFast sets the failFast flag for the RunnerPool.
func WithFailFast(failFast bool) RunnerPoolOption {
	return func(rp *RunnerPool) {
		rp.failFast = failFast
	}
}

// NewRunnerPool creates a new RunnerPool with the given options.
func NewRunnerPool(opts ...RunnerPoolOption) *RunnerPool {
	rp := &RunnerPool{
		concurrency: 1,
		failFast:    true,
		readyCh:     make(chan struct{}, 1), // buffered to avoid blocking
	}

	for _, opt := range opts {
		opt(rp)
	}

	rp.q = buildQueue(rp.graph, rp.failFast)

	return rp
}

// Run blocks until the DAG finishes and returns one Result per step, in graph order.
// Steps that already started are always allowed to finish.
func (p *RunnerPool) Run(ctx context.Context, l log.Logger) []Result {
	if p.runner == nil {
		return []Result{{Status: StatusFailed, Err: errors.Errorf("runner pool: runner is not set, cannot run")}}
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.concurrency)
	)

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "runner_pool", map[string]any{
		"total_tasks": len(p.q.entries),
		"concurrency": p.concurrency,
		"fail_fast":   p.failFast,
	}, func(ctx context.Context) error {
		l.Debugf("RunnerPool: starting with %d tasks, concurrency %d, failFast=%t", len(p.q.entries), p.concurrency, p.failFast)

		signalReady := func() {
			select {
			case p.readyCh <- struct{}{}:
			default:
			}
		}

		for {
			if ctx.Err() != nil {
				p.q.cancel()
				wg.Wait()

				return ctx.Err()
			}

			ready := p.q.getReady()
			if len(ready) == 0 {
				if p.q.empty() {
					l.Debugf("RunnerPool: queue is empty, breaking loop")
					break
				}

				l.Tracef("RunnerPool: no ready tasks, waiting (queue not empty)")

				select {
				case <-p.readyCh:
				case <-ctx.Done():
					l.Debugf("RunnerPool: context cancelled, waiting for running tasks")
					p.q.cancel()
					wg.Wait()

					return ctx.Err()
				}

				continue
			}

			l.Debugf("RunnerPool: found %d ready tasks", len(ready))

			for _, e := range ready {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					p.q.cancel()
					wg.Wait()

					return ctx.Err()
				}

				// The slot may have been freed by a failure that stopped this entry.
				if !p.q.tryStart(e) {
					<-sem
					continue
				}

				l.Debugf("RunnerPool: running task %s", e.task.ID())

				wg.Add(1)

				go func(ent *entry) {
					defer func() {
						<-sem
						wg.Done()
						signalReady()
					}()

					defer errors.Recover(func(cause error) {
						l.Errorf("Panic in task %s: %v", ent.task.ID(), cause)
						p.q.done(ent, Result{ExitCode: 1, Err: cause})
					})

					p.q.done(ent, p.runner(ctx, ent.task))
				}(e)
			}
		}

		wg.Wait()

		return nil
	})
	if err != nil {
		l.Debugf("RunnerPool: %v", err)
	}

	return p.q.results()
}
