// Package graph models a build graph: a DAG of steps whose kinds map onto named command templates.
package graph

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/ninja"
)

// Rule is the command template a step kind is executed with.
type Rule struct {
	Name        string
	Command     string
	Description string
	Depfile     string
	Restat      bool
	// Params are the step parameters the command requires.
	Params []string
}

// Rules maps step kinds onto rules. Every graph carries its own mapping.
type Rules map[Kind]Rule

// Step is a single build step.
type Step struct {
	Kind    Kind
	Outputs []string
	Inputs  []string
	// Implicit inputs trigger a rebuild but are not passed as `$in`.
	Implicit []string
	// OrderOnly inputs must exist before the step runs.
	OrderOnly []string
	Params    map[string]string
	// Prefix is the module or program the step belongs to, used in logs.
	Prefix string
}

// ID returns the first output, which identifies the step.
func (step *Step) ID() string {
	return step.Outputs[0]
}

// Dependencies returns all paths the step depends on.
func (step *Step) Dependencies() []string {
	deps := make([]string, 0, len(step.Inputs)+len(step.Implicit)+len(step.OrderOnly))
	deps = append(deps, step.Inputs...)
	deps = append(deps, step.Implicit...)
	deps = append(deps, step.OrderOnly...)

	return deps
}

// Graph is an append-only build graph. Steps must be added in dependency order.
type Graph struct {
	Name string

	rules     Rules
	steps     []*Step
	producers map[string]*Step
	consumed  map[string]struct{}
}

// New returns an empty graph using the given rules.
func New(name string, rules Rules) *Graph {
	return &Graph{
		Name:      name,
		rules:     rules,
		producers: make(map[string]*Step),
		consumed:  make(map[string]struct{}),
	}
}

// Add appends a step after checking that its kind has a rule, that all required parameters are set and
// that none of its outputs is produced by another step or consumed by an earlier one.
func (graph *Graph) Add(step *Step) error {
	rule, ok := graph.rules[step.Kind]
	if !ok {
		return errors.New(UnknownKindError{Graph: graph.Name, Kind: step.Kind})
	}

	if len(step.Outputs) == 0 {
		return errors.New(NoOutputsError{Kind: step.Kind})
	}

	var missing []string

	for _, param := range rule.Params {
		if _, ok := step.Params[param]; !ok {
			missing = append(missing, param)
		}
	}

	if len(missing) > 0 {
		return errors.New(MissingParameterError{Rule: rule.Name, Parameters: missing, Output: step.ID()})
	}

	for i, output := range step.Outputs {
		if _, ok := graph.producers[output]; ok || slices.Contains(step.Outputs[:i], output) {
			return errors.New(DuplicateOutputError{Output: output, Kind: step.Kind})
		}

		if _, ok := graph.consumed[output]; ok {
			return errors.New(OutputAfterUseError{Output: output})
		}
	}

	for _, output := range step.Outputs {
		graph.producers[output] = step
	}

	for _, dep := range step.Dependencies() {
		graph.consumed[dep] = struct{}{}
	}

	graph.steps = append(graph.steps, step)

	return nil
}

// Has reports whether a step already produces the output.
func (graph *Graph) Has(output string) bool {
	_, ok := graph.producers[output]
	return ok
}

// Steps returns the steps in emission order.
func (graph *Graph) Steps() []*Step {
	return graph.steps
}

// Len returns the number of steps.
func (graph *Graph) Len() int {
	return len(graph.steps)
}

// Rule returns the rule of a step kind.
func (graph *Graph) Rule(kind Kind) (Rule, bool) {
	rule, ok := graph.rules[kind]
	return rule, ok
}

// Parents returns the steps producing the dependencies of the given step, without duplicates.
func (graph *Graph) Parents(step *Step) []*Step {
	var parents []*Step

	for _, dep := range step.Dependencies() {
		if producer, ok := graph.producers[dep]; ok && !slices.Contains(parents, producer) {
			parents = append(parents, producer)
		}
	}

	return parents
}

// Command expands the rule command of a step with its parameters, `$in` and `$out`.
func (graph *Graph) Command(step *Step) string {
	rule := graph.rules[step.Kind]

	vars := maps.Clone(step.Params)
	if vars == nil {
		vars = make(map[string]string, 2)
	}

	vars["in"] = strings.Join(step.Inputs, " ")
	vars["out"] = strings.Join(step.Outputs, " ")

	return ninja.Expand(rule.Command, vars)
}

// WriteNinja writes the graph as a ninja build file. Only rules used by at least one step are written.
func (graph *Graph) WriteNinja(out io.Writer) error {
	writer := ninja.NewWriter(out)
	writer.Comment("Build graph " + graph.Name + ", generated by hdlbuild. Do not edit.")
	writer.Newline()

	for _, kind := range AllKinds {
		rule, ok := graph.rules[kind]
		if !ok || !graph.uses(kind) {
			continue
		}

		writer.Rule(ninja.Rule{
			Name:        rule.Name,
			Command:     rule.Command,
			Description: rule.Description,
			Depfile:     rule.Depfile,
			Restat:      rule.Restat,
		})
		writer.Newline()
	}

	var prefix string

	for _, step := range graph.steps {
		if step.Prefix != prefix {
			if prefix != "" {
				writer.Newline()
			}

			prefix = step.Prefix
			writer.Comment("Build steps for " + prefix)
		}

		writer.Build(ninja.Build{
			Outputs:   step.Outputs,
			Rule:      graph.rules[step.Kind].Name,
			Inputs:    step.Inputs,
			Implicit:  step.Implicit,
			OrderOnly: step.OrderOnly,
			Variables: escapeValues(step.Params),
		})
	}

	return writer.Err()
}

func (graph *Graph) uses(kind Kind) bool {
	for _, step := range graph.steps {
		if step.Kind == kind {
			return true
		}
	}

	return false
}

// escapeValues escapes parameter values, which are literal text rather than templates.
func escapeValues(params map[string]string) map[string]string {
	escaped := make(map[string]string, len(params))

	for key, value := range params {
		escaped[key] = ninja.Escape(value)
	}

	return escaped
}
