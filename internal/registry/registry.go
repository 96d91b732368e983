// Package registry discovers the header and source modules of a project.
package registry

import (
	"context"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"sort"

	"github.com/geckorv/hdlbuild/internal/directive"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/util"
	"github.com/mattn/go-zglob"
	"golang.org/x/sync/errgroup"
)

// Registry is an immutable, path-keyed index of header and source modules.
type Registry struct {
	headers map[string]*Module
	sources map[string]*Module

	// Discovery order, roots first, then file name.
	headerOrder []string
	sourceOrder []string
}

// New builds a registry from already parsed modules, returning DuplicateModuleError for a repeated path.
func New(modules ...*Module) (*Registry, error) {
	registry := &Registry{
		headers: make(map[string]*Module),
		sources: make(map[string]*Module),
	}

	for _, module := range modules {
		if err := registry.add(module, ""); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Discover globs `*.svh` and `*.sv` directly within every root (roots are not searched recursively),
// parses the directive block of each file and builds the registry. Roots are relative to baseDir,
// and module identifiers are baseDir-relative slash paths.
func Discover(ctx context.Context, l log.Logger, baseDir string, roots []string, parser *directive.Parser) (*Registry, error) {
	type found struct {
		module *Module
		root   string
	}

	var files []*found

	for _, root := range roots {
		rootDir := filepath.Join(baseDir, root)
		if !util.IsDir(rootDir) {
			return nil, errors.New(SourceRootNotFoundError{Root: root})
		}

		for _, kind := range []Kind{HeaderKind, SourceKind} {
			suffix := SourceSuffix
			if kind == HeaderKind {
				suffix = HeaderSuffix
			}

			matches, err := zglob.Glob(filepath.Join(rootDir, "*"+suffix))
			if err != nil {
				return nil, errors.New(err)
			}

			sort.Strings(matches)

			for _, match := range matches {
				relPath, err := util.GetPathRelativeTo(match, baseDir)
				if err != nil {
					return nil, err
				}

				files = append(files, &found{
					module: &Module{Path: path.Clean(relPath), Kind: kind},
					root:   root,
				})
			}
		}
	}

	l.Debugf("Discovered %d module files in %d source roots", len(files), len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			directives, err := parser.ParseFile(filepath.Join(baseDir, file.module.Path))
			if err != nil {
				return err
			}

			file.module.Includes = directives.Includes

			if file.module.Kind == SourceKind {
				file.module.Imports = directives.Imports
				file.module.Wrapper = directives.Wrapper
				file.module.NoLint = directives.NoLint
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	registry := &Registry{
		headers: make(map[string]*Module),
		sources: make(map[string]*Module),
	}

	rootOf := make(map[string]string, len(files))

	for _, file := range files {
		if err := registry.add(file.module, rootOf[file.module.Path]); err != nil {
			var duplicateErr DuplicateModuleError
			if errors.As(err, &duplicateErr) {
				duplicateErr.Roots = append(duplicateErr.Roots, file.root)
				return nil, errors.New(duplicateErr)
			}

			return nil, err
		}

		rootOf[file.module.Path] = file.root
	}

	return registry, nil
}

func (registry *Registry) add(module *Module, root string) error {
	_, isHeader := registry.headers[module.Path]
	_, isSource := registry.sources[module.Path]

	if isHeader || isSource {
		err := DuplicateModuleError{Path: module.Path}
		if root != "" {
			err.Roots = []string{root}
		}

		return errors.New(err)
	}

	if module.Kind == HeaderKind {
		registry.headers[module.Path] = module
		registry.headerOrder = append(registry.headerOrder, module.Path)

		return nil
	}

	registry.sources[module.Path] = module
	registry.sourceOrder = append(registry.sourceOrder, module.Path)

	return nil
}

// Header looks up a header module by path.
func (registry *Registry) Header(path string) (*Module, bool) {
	module, ok := registry.headers[path]
	return module, ok
}

// Source looks up a source module by path.
func (registry *Registry) Source(path string) (*Module, bool) {
	module, ok := registry.sources[path]
	return module, ok
}

// Headers returns all header modules in discovery order.
func (registry *Registry) Headers() Modules {
	return registry.modules(registry.headers, registry.headerOrder)
}

// Sources returns all source modules in discovery order.
func (registry *Registry) Sources() Modules {
	return registry.modules(registry.sources, registry.sourceOrder)
}

// HeaderPaths returns the sorted identifiers of all header modules.
func (registry *Registry) HeaderPaths() []string {
	return sorted(registry.headerOrder)
}

// SourcePaths returns the sorted identifiers of all source modules.
func (registry *Registry) SourcePaths() []string {
	return sorted(registry.sourceOrder)
}

// Len returns the total number of modules.
func (registry *Registry) Len() int {
	return len(registry.headers) + len(registry.sources)
}

func (registry *Registry) modules(index map[string]*Module, order []string) Modules {
	modules := make(Modules, len(order))

	for i, path := range order {
		modules[i] = index[path]
	}

	return modules
}

func sorted(paths []string) []string {
	paths = slices.Clone(paths)
	sort.Strings(paths)

	return paths
}
