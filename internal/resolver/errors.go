package resolver

import (
	"fmt"
	"strings"
)

// ReferenceError is returned when a module references a module that is not in the registry.
type ReferenceError struct {
	Module     string
	Reference  string
	Kind       string
	Candidates []string
}

func (err ReferenceError) Error() string {
	verb := "imports"
	if err.Kind == IncludeReference {
		verb = "includes"
	}

	return fmt.Sprintf("Module %s %s %s which does not exist. Known %s modules: %s", err.Module, verb, err.Reference, err.candidateKind(), strings.Join(err.Candidates, ", "))
}

func (err ReferenceError) candidateKind() string {
	if err.Kind == IncludeReference {
		return "header"
	}

	return "source"
}

// DependencyCycleError lists the chain of imports that leads back to a module being resolved.
type DependencyCycleError []string

func (err DependencyCycleError) Error() string {
	return "Found a dependency cycle between modules: " + strings.Join(err, " -> ")
}

// UnknownModuleError is returned when resolving a path that is not a source module.
type UnknownModuleError struct {
	Path string
}

func (err UnknownModuleError) Error() string {
	return fmt.Sprintf("%s is not a known source module", err.Path)
}
