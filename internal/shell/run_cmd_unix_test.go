//go:build linux || darwin

package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/geckorv/hdlbuild/internal/shell"
	"github.com/geckorv/hdlbuild/test/helpers/logger"
	"github.com/geckorv/hdlbuild/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShellCommandCapturesOutput(t *testing.T) {
	t.Parallel()

	var live bytes.Buffer

	runOpts := &shell.RunOptions{
		Writer:     &live,
		WorkingDir: t.TempDir(),
		Env:        map[string]string{"HDLBUILD_TEST_VALUE": "alu"},
	}

	out, err := shell.RunShellCommand(context.Background(), logger.CreateLogger(), runOpts, `echo "lint $HDLBUILD_TEST_VALUE"`)
	require.NoError(t, err)
	assert.Equal(t, "lint alu\n", out.Stdout.String())
	assert.Equal(t, "lint alu\n", live.String())
}

func TestRunShellCommandFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runOpts := &shell.RunOptions{WorkingDir: dir}

	out, err := shell.RunShellCommand(context.Background(), logger.CreateLogger(), runOpts, "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "broken\n", out.Stderr.String())

	var processErr util.ProcessExecutionError
	require.ErrorAs(t, err, &processErr)
	assert.Equal(t, "sh", processErr.Command)
	assert.Equal(t, dir, processErr.WorkingDir)
	assert.Contains(t, err.Error(), "broken")

	exitCode, exitErr := util.GetExitCode(err)
	require.NoError(t, exitErr)
	assert.Equal(t, 3, exitCode)
}

func TestRunCommandMissingBinary(t *testing.T) {
	t.Parallel()

	err := shell.RunCommand(context.Background(), logger.CreateLogger(), &shell.RunOptions{}, "hdlbuild-no-such-binary")
	require.Error(t, err)

	var processErr util.ProcessExecutionError
	assert.ErrorAs(t, err, &processErr)
}
