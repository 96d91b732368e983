package deps

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/geckorv/hdlbuild/cli/commands/common"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/registry"
	"github.com/geckorv/hdlbuild/options"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/mgutz/ansi"
)

// Run resolves the module and writes one path per line. The module is given by its project-relative
// path, by the path used in import directives or by a path relative to the working directory.
func Run(ctx context.Context, l log.Logger, opts *options.BuildOptions, module string) error {
	pipeline, err := common.NewPipeline(l, opts)
	if err != nil {
		return err
	}

	project, err := pipeline.Discover(ctx, l)
	if err != nil {
		return err
	}

	modulePath := lookup(opts, project.Registry, module)

	sequence, err := project.Resolver.Resolve(modulePath)
	if err != nil {
		return err
	}

	colorizer := NewColorizer(common.ColorsEnabled(opts, opts.Writer))

	source, _ := project.Registry.Source(modulePath)

	for _, dep := range sequence {
		if _, err := fmt.Fprintln(opts.Writer, colorizer.Colorize(source, dep)); err != nil {
			return errors.New(err)
		}
	}

	return nil
}

func lookup(opts *options.BuildOptions, reg *registry.Registry, module string) string {
	cfg := opts.Config
	module = filepath.ToSlash(module)

	candidates := []string{module, path.Join(cfg.RTLDir, module)}

	if abs, err := filepath.Abs(filepath.Join(opts.WorkingDir, module)); err == nil {
		if rel, err := filepath.Rel(cfg.ProjectDir(), abs); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}

	for _, candidate := range candidates {
		if _, ok := reg.Source(candidate); ok {
			return candidate
		}
	}

	return module
}

// Colorizer highlights the module itself and its wrapper in a dependency listing.
type Colorizer struct {
	moduleColorizer  func(string) string
	wrapperColorizer func(string) string
	importColorizer  func(string) string
}

func NewColorizer(shouldColor bool) *Colorizer {
	if !shouldColor {
		return &Colorizer{
			moduleColorizer:  func(s string) string { return s },
			wrapperColorizer: func(s string) string { return s },
			importColorizer:  func(s string) string { return s },
		}
	}

	return &Colorizer{
		moduleColorizer:  ansi.ColorFunc("green+bh"),
		wrapperColorizer: ansi.ColorFunc("white+d"),
		importColorizer:  ansi.ColorFunc("blue+bh"),
	}
}

func (c *Colorizer) Colorize(module *registry.Module, dep string) string {
	switch {
	case module != nil && dep == module.Path:
		return c.moduleColorizer(dep)
	case module != nil && dep == module.Wrapper:
		return c.wrapperColorizer(dep)
	default:
		return c.importColorizer(dep)
	}
}
