package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geckorv/hdlbuild/internal/directive"
	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/registry"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, baseDir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(baseDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	writeFiles(t, baseDir, map[string]string{
		"rtl/std/std.svh":      "`define WIDTH 32\n",
		"rtl/std/fifo.sv":      "//!include std/std.svh\nmodule fifo;\n",
		"rtl/core/core.sv":     "//!import std/fifo.sv\n//!wrapper core.sv\nmodule core;\n",
		"rtl/core/nested/x.sv": "module x;\n",
		"rtl/core/notes.txt":   "ignored",
	})

	reg, err := registry.Discover(t.Context(), logger.CreateLogger(), baseDir, []string{"rtl/std", "rtl/core"}, directive.NewParser())
	require.NoError(t, err)

	assert.Equal(t, []string{"rtl/std/std.svh"}, reg.Headers().Paths())
	assert.Equal(t, []string{"rtl/std/fifo.sv", "rtl/core/core.sv"}, reg.Sources().Paths())
	assert.Equal(t, []string{"rtl/core/core.sv", "rtl/std/fifo.sv"}, reg.SourcePaths())
	assert.Equal(t, 3, reg.Len())

	core, ok := reg.Source("rtl/core/core.sv")
	require.True(t, ok)
	assert.Equal(t, "core", core.Name())
	assert.Equal(t, []string{"rtl/std/fifo.sv"}, core.Imports)
	assert.Equal(t, "wrappers/core.sv", core.Wrapper)

	header, ok := reg.Header("rtl/std/std.svh")
	require.True(t, ok)
	assert.Equal(t, registry.HeaderKind, header.Kind)

	_, ok = reg.Source("rtl/core/nested/x.sv")
	assert.False(t, ok)
}

func TestDiscoverDuplicateRoot(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	writeFiles(t, baseDir, map[string]string{
		"rtl/std/fifo.sv": "module fifo;\n",
	})

	_, err := registry.Discover(t.Context(), logger.CreateLogger(), baseDir, []string{"rtl/std", "rtl/../rtl/std"}, directive.NewParser())
	require.Error(t, err)

	var duplicateErr registry.DuplicateModuleError
	require.ErrorAs(t, err, &duplicateErr)
	assert.Equal(t, "rtl/std/fifo.sv", duplicateErr.Path)
	assert.Equal(t, []string{"rtl/std", "rtl/../rtl/std"}, duplicateErr.Roots)
}

func TestDiscoverMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := registry.Discover(t.Context(), logger.CreateLogger(), t.TempDir(), []string{"rtl/missing"}, directive.NewParser())

	var rootErr registry.SourceRootNotFoundError
	require.True(t, errors.As(err, &rootErr))
	assert.Equal(t, "rtl/missing", rootErr.Root)
}

func TestNewRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := registry.New(
		&registry.Module{Path: "rtl/a.sv", Kind: registry.SourceKind},
		&registry.Module{Path: "rtl/a.sv", Kind: registry.SourceKind},
	)
	require.Error(t, err)
}
