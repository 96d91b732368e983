// Package resolver validates module references and linearizes the import closure of source modules.
package resolver

import (
	"slices"
	"sync"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/registry"
)

const (
	IncludeReference = "include"
	ImportReference  = "import"
)

// Resolver computes Resolved Dependency Sequences over an immutable registry.
// Results are cached for the lifetime of the resolver.
type Resolver struct {
	registry *registry.Registry

	mu sync.Mutex
	// closures hold the import closure of a module ending with the module itself.
	closures map[string][]string
}

func New(reg *registry.Registry) *Resolver {
	return &Resolver{
		registry: reg,
		closures: make(map[string][]string),
	}
}

// Validate checks that every include of every module names a header module and that every import
// of every source module names a source module. The first violation is returned as a ReferenceError.
func (resolver *Resolver) Validate() error {
	for _, modules := range []registry.Modules{resolver.registry.Headers(), resolver.registry.Sources()} {
		for _, module := range modules {
			for _, include := range module.Includes {
				if _, ok := resolver.registry.Header(include); !ok {
					return errors.New(ReferenceError{
						Module:     module.Path,
						Reference:  include,
						Kind:       IncludeReference,
						Candidates: resolver.registry.HeaderPaths(),
					})
				}
			}

			for _, imp := range module.Imports {
				if _, ok := resolver.registry.Source(imp); !ok {
					return errors.New(ReferenceError{
						Module:     module.Path,
						Reference:  imp,
						Kind:       ImportReference,
						Candidates: resolver.registry.SourcePaths(),
					})
				}
			}
		}
	}

	return nil
}

// Resolve returns the flattened import closure of the source module, in an order where every module
// follows all of its imports, then the module itself, then its wrapper if it declares one.
func (resolver *Resolver) Resolve(path string) ([]string, error) {
	module, ok := resolver.registry.Source(path)
	if !ok {
		return nil, errors.New(UnknownModuleError{Path: path})
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()

	closure, err := resolver.closure(module)
	if err != nil {
		return nil, err
	}

	sequence := slices.Clone(closure)

	if module.Wrapper != "" {
		sequence = append(sequence, module.Wrapper)
	}

	return sequence, nil
}

// ResolveAll resolves every source module in discovery order and returns the first failure.
func (resolver *Resolver) ResolveAll() (map[string][]string, error) {
	sequences := make(map[string][]string, len(resolver.registry.Sources()))

	for _, module := range resolver.registry.Sources() {
		sequence, err := resolver.Resolve(module.Path)
		if err != nil {
			return nil, err
		}

		sequences[module.Path] = sequence
	}

	return sequences, nil
}

func (resolver *Resolver) closure(module *registry.Module) ([]string, error) {
	if closure, ok := resolver.closures[module.Path]; ok {
		return closure, nil
	}

	walk := newTraversal(resolver.registry, resolver.closures)

	if err := walk.place(module); err != nil {
		return nil, err
	}

	resolver.closures[module.Path] = walk.sequence

	return walk.sequence, nil
}

// traversal is the working state of one top-level resolution. It is owned by a single Resolve call.
type traversal struct {
	registry *registry.Registry
	closures map[string][]string

	remaining map[string]struct{}
	placed    map[string]struct{}
	// visiting is the chain of modules currently being resolved.
	visiting []string

	sequence []string
}

func newTraversal(reg *registry.Registry, closures map[string][]string) *traversal {
	sources := reg.Sources()

	walk := &traversal{
		registry:  reg,
		closures:  closures,
		remaining: make(map[string]struct{}, len(sources)),
		placed:    make(map[string]struct{}, len(sources)),
	}

	for _, source := range sources {
		walk.remaining[source.Path] = struct{}{}
	}

	return walk
}

func (walk *traversal) place(module *registry.Module) error {
	if index := slices.Index(walk.visiting, module.Path); index >= 0 {
		cycle := append(slices.Clone(walk.visiting[index:]), module.Path)
		return errors.New(DependencyCycleError(cycle))
	}

	walk.visiting = append(walk.visiting, module.Path)

	for _, imp := range module.Imports {
		if _, ok := walk.placed[imp]; ok {
			continue
		}

		if _, ok := walk.remaining[imp]; !ok {
			return errors.New(ReferenceError{
				Module:     module.Path,
				Reference:  imp,
				Kind:       ImportReference,
				Candidates: walk.registry.SourcePaths(),
			})
		}

		// The placed set is always closed under imports, so a cached closure filtered down to the
		// remaining modules is exactly what a fresh descent would append.
		if closure, ok := walk.closures[imp]; ok {
			for _, path := range closure {
				if _, ok := walk.remaining[path]; ok {
					walk.move(path)
				}
			}

			continue
		}

		dependency, _ := walk.registry.Source(imp)

		if err := walk.place(dependency); err != nil {
			return err
		}
	}

	if _, ok := walk.remaining[module.Path]; !ok {
		return errors.New(DependencyCycleError(append(slices.Clone(walk.visiting), module.Path)))
	}

	walk.move(module.Path)
	walk.visiting = walk.visiting[:len(walk.visiting)-1]

	return nil
}

func (walk *traversal) move(path string) {
	delete(walk.remaining, path)
	walk.placed[path] = struct{}{}
	walk.sequence = append(walk.sequence, path)
}
