package util_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geckorv/hdlbuild/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesEqual(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		return path
	}

	a := writeFile("a.h", "module a;")
	b := writeFile("b.h", "module a;")
	c := writeFile("c.h", "module c;")
	d := writeFile("d.h", "module a; ")

	testCases := []struct {
		name     string
		path     string
		other    string
		expected bool
	}{
		{"identical", a, b, true},
		{"same-size-different-content", a, c, false},
		{"different-size", a, d, false},
		{"missing", a, filepath.Join(dir, "missing.h"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			equal, err := util.FilesEqual(tc.path, tc.other)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, equal)
		})
	}
}

func TestCopyFileCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.cpp")
	dst := filepath.Join(dir, "nested", "out", "dst.cpp")

	require.NoError(t, os.WriteFile(src, []byte("int x;"), 0o644))
	require.NoError(t, util.CopyFile(src, dst))

	contents, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "int x;", string(contents))
}

func TestIsOutdated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "in.sv")
	output := filepath.Join(dir, "out.lint")

	require.NoError(t, os.WriteFile(input, nil, 0o644))
	assert.True(t, util.IsOutdated([]string{input}, []string{output}))

	require.NoError(t, os.WriteFile(output, nil, 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(input, past, past))
	assert.False(t, util.IsOutdated([]string{input}, []string{output}))

	require.NoError(t, os.Chtimes(output, past.Add(-time.Hour), past.Add(-time.Hour)))
	assert.True(t, util.IsOutdated([]string{input}, []string{output}))
}

func TestTrimExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rtl/core/alu", util.TrimExt("rtl/core/alu.sv"))
	assert.Equal(t, "Makefile", util.TrimExt("Makefile"))
}
