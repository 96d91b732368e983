package registry

import (
	"path"
	"strings"
)

const (
	HeaderSuffix = ".svh"
	SourceSuffix = ".sv"
)

// Kind distinguishes header modules from source modules.
type Kind byte

const (
	HeaderKind Kind = iota
	SourceKind
)

func (kind Kind) String() string {
	if kind == HeaderKind {
		return "header"
	}

	return "source"
}

// Module is a single header or source file taking part in the dependency graph.
// Modules are never mutated after the registry is built.
type Module struct {
	// Path is the normalized, root-relative identifier of the module.
	Path     string
	Kind     Kind
	Includes []string
	// Imports, Wrapper and NoLint are only populated for source modules.
	Imports []string
	Wrapper string
	NoLint  bool
}

// Name returns the file name without directory and suffix, e.g. `alu` for `rtl/core/alu.sv`.
func (module *Module) Name() string {
	return strings.TrimSuffix(path.Base(module.Path), path.Ext(module.Path))
}

// Modules is a list of modules.
type Modules []*Module

// Paths returns the module identifiers in list order.
func (modules Modules) Paths() []string {
	paths := make([]string, len(modules))

	for i, module := range modules {
		paths[i] = module.Path
	}

	return paths
}
