package runnerpool

import (
	"sync"

	"github.com/geckorv/hdlbuild/internal/graph"
)

// queue keeps DAG state; NO goroutines here.
type queue struct {
	byID     map[string]*entry
	entries  []*entry
	mu       sync.Mutex
	failFast bool
}

func buildQueue(g *graph.Graph, failFast bool) *queue {
	q := &queue{byID: map[string]*entry{}, failFast: failFast}

	if g == nil {
		return q
	}

	// 1. Wrap each step as Task → entry
	for _, step := range g.Steps() {
		t := &Task{Step: step}
		for _, parent := range g.Parents(step) {
			t.parents = append(t.parents, parent.ID())
		}

		e := &entry{task: t, status: StatusPending}
		q.entries = append(q.entries, e)
		q.byID[t.ID()] = e
	}

	// 2. Wire dependencies
	for _, e := range q.entries {
		for _, parentID := range e.task.Parents() {
			if p, ok := q.byID[parentID]; ok {
				e.blockedBy = append(e.blockedBy, p)
			}
		}

		if len(e.blockedBy) > 0 {
			e.status = StatusBlocked
		}
	}

	// 3. Roots become ready
	for _, e := range q.entries {
		if e.status == StatusPending {
			e.status = StatusReady
		}
	}

	return q
}

// getReady returns the ready entries in graph order (non-blocking).
func (q *queue) getReady() []*entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*entry

	for _, e := range q.entries {
		if e.status == StatusReady {
			out = append(out, e)
		}
	}

	return out
}

// tryStart marks a ready entry as running. It reports false when the entry
// was cancelled while the caller waited for a free slot.
func (q *queue) tryStart(e *entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.status != StatusReady {
		return false
	}

	e.status = StatusRunning

	return true
}

func (q *queue) done(e *entry, res Result) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.result = res
	if res.ExitCode == 0 && res.Err == nil {
		e.status = StatusSucceeded
	} else {
		e.status = StatusFailed
	}

	// Global fail-fast stops every entry that has not started yet
	if q.failFast && e.status == StatusFailed {
		q.stopPendingLocked()
		return
	}

	q.unblockLocked()
}

// cancel stops every entry that has not started yet.
func (q *queue) cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopPendingLocked()
}

func (q *queue) stopPendingLocked() {
	for _, other := range q.entries {
		switch other.status { //nolint:exhaustive
		case StatusPending, StatusReady, StatusBlocked:
			other.status = StatusFailFast
		}
	}
}

// unblockLocked promotes blocked children whose parents all succeeded and
// marks children of failed parents. Entries are in dependency order, so a
// single pass propagates ancestor failures transitively.
func (q *queue) unblockLocked() {
	for _, child := range q.entries {
		if child.status != StatusBlocked {
			continue
		}

		ready := true

		for _, p := range child.blockedBy {
			if p.status == StatusSucceeded {
				continue
			}

			ready = false

			if p.status == StatusFailed || p.status == StatusAncestorFailed || p.status == StatusFailFast {
				child.status = StatusAncestorFailed
			}

			break
		}

		if ready {
			child.status = StatusReady
		}
	}
}

func (q *queue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		switch e.status { //nolint:exhaustive
		case StatusPending, StatusBlocked, StatusReady, StatusRunning:
			return false
		}
	}

	return true
}

// results returns one Result per entry in graph order.
func (q *queue) results() []Result {
	q.mu.Lock()
	defer q.mu.Unlock()

	results := make([]Result, 0, len(q.entries))

	for _, e := range q.entries {
		res := e.result
		res.Step = e.task.Step
		res.TaskID = e.task.ID()
		res.Status = e.status

		if e.status == StatusAncestorFailed || e.status == StatusFailFast {
			res.Err = NewStepEarlyExitError(e.task.ID(), q.failedParentLocked(e))
		}

		results = append(results, res)
	}

	return results
}

// failedParentLocked finds the first failed ancestor of an entry.
func (q *queue) failedParentLocked(e *entry) string {
	for _, p := range e.blockedBy {
		switch p.status { //nolint:exhaustive
		case StatusFailed:
			return p.task.ID()
		case StatusAncestorFailed, StatusFailFast:
			if id := q.failedParentLocked(p); id != "" {
				return id
			}
		}
	}

	return ""
}
