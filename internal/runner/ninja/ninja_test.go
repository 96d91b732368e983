package ninja_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/geckorv/hdlbuild/internal/runner/ninja"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		command     string
		parallelism int
		keepGoing   bool
		expected    []string
	}{
		{"plain", "ninja", 4, false, []string{"-f", "bin/modules.ninja", "-j", "4"}},
		{"keep going", "ninja", 2, true, []string{"-f", "bin/modules.ninja", "-j", "2", "-k", "0"}},
		{"extra flags", `ninja -v -d "keeprsp"`, 0, false, []string{"-v", "-d", "keeprsp", "-f", "bin/modules.ninja"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner, err := ninja.New(tc.command, ".", tc.parallelism, tc.keepGoing)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, runner.Args("bin/modules.ninja"))
		})
	}
}

func TestNewRejectsEmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := ninja.New("  ", ".", 1, false)

	var emptyErr ninja.EmptyCommandError
	require.ErrorAs(t, err, &emptyErr)
}

func TestRunPassesGraphFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-ninja")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > args.txt\n"), 0o755))

	runner, err := ninja.New(script, dir, 3, true)
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), logger.CreateLogger(), "graph.ninja"))

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "-f graph.ninja -j 3 -k 0\n", string(args))
}
