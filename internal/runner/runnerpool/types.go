package runnerpool

import (
	"context"

	"github.com/geckorv/hdlbuild/internal/graph"
)

// Task is a lightweight wrapper around a graph.Step that the runner pool
// schedules. The first output of the step is treated as the stable ID.
type Task struct {
	Step    *graph.Step
	parents []string
}

func (t *Task) ID() string { return t.Step.ID() }

// Parents returns the IDs of the tasks producing the inputs of this task.
func (t *Task) Parents() []string { return t.parents }

// TaskRunner executes a single task.
type TaskRunner func(ctx context.Context, t *Task) Result

// Result captures the outcome of running a Task.
type Result struct {
	Err      error
	Step     *graph.Step
	TaskID   string
	Status   Status
	ExitCode int
	// Skipped is set by runners that found the outputs up to date.
	Skipped bool
}

type Status int

const (
	StatusPending Status = iota
	StatusBlocked
	StatusReady
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusAncestorFailed
	StatusFailFast
)

var statusNames = map[Status]string{
	StatusPending:        "pending",
	StatusBlocked:        "blocked",
	StatusReady:          "ready",
	StatusRunning:        "running",
	StatusSucceeded:      "succeeded",
	StatusFailed:         "failed",
	StatusAncestorFailed: "ancestor failed",
	StatusFailFast:       "fail fast",
}

func (status Status) String() string {
	return statusNames[status]
}

// entry ties one immutable Task to its mutable runtime state.
type entry struct {
	task      *Task
	blockedBy []*entry
	result    Result
	status    Status
}
