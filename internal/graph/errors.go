package graph

import (
	"fmt"
	"strings"
)

// DuplicateOutputError is returned when a step claims an output that another step already produces.
type DuplicateOutputError struct {
	Output string
	Kind   Kind
}

func (err DuplicateOutputError) Error() string {
	return fmt.Sprintf("Output %s of %s step is already produced by another step", err.Output, err.Kind)
}

// OutputAfterUseError is returned when a step produces a path that an earlier step already consumed.
type OutputAfterUseError struct {
	Output string
}

func (err OutputAfterUseError) Error() string {
	return fmt.Sprintf("Output %s is produced after a step that uses it", err.Output)
}

// MissingParameterError is returned when a step lacks a parameter its rule requires.
type MissingParameterError struct {
	Rule       string
	Parameters []string
	Output     string
}

func (err MissingParameterError) Error() string {
	return fmt.Sprintf("Step %s of rule %s is missing required parameters: %s", err.Output, err.Rule, strings.Join(err.Parameters, ", "))
}

// UnknownKindError is returned when a graph has no rule for a step kind.
type UnknownKindError struct {
	Graph string
	Kind  Kind
}

func (err UnknownKindError) Error() string {
	return fmt.Sprintf("Graph %s has no rule for %s steps", err.Graph, err.Kind)
}

// NoOutputsError is returned when a step declares no outputs.
type NoOutputsError struct {
	Kind Kind
}

func (err NoOutputsError) Error() string {
	return fmt.Sprintf("A %s step must declare at least one output", err.Kind)
}
