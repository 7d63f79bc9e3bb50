package command

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
	"github.com/nigeltao/tiler/internal/logging"
)

type recordingExecutor struct {
	calls [][]string
}

func (e *recordingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	e.calls = append(e.calls, append([]string{name}, args...))
	return exec.CommandContext(ctx, "true")
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	script := writeScript(t, dir, "2screens.sh", `echo "$1" > `+out)

	r := NewRunner(nil, time.Second, logging.NewLogger("command-test"))
	require.NoError(t, r.Run(context.Background(), script, "2"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "2\n", string(data))
}

func TestRunMissingScript(t *testing.T) {
	r := NewRunner(nil, time.Second, logging.NewLogger("command-test"))
	err := r.Run(context.Background(), filepath.Join(t.TempDir(), "3screens.sh"), "3")
	require.Error(t, err)
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeCommandNotFound))
}

func TestRunFailure(t *testing.T) {
	script := writeScript(t, t.TempDir(), "fail.sh", "exit 4")
	r := NewRunner(nil, time.Second, logging.NewLogger("command-test"))

	err := r.Run(context.Background(), script)
	require.Error(t, err)
	require.True(t, tilerrors.Is(err, tilerrors.ErrCodeCommandFailed))
	assert.Equal(t, 4, err.(*tilerrors.Error).Details["exitCode"])
}

func TestRunTimeout(t *testing.T) {
	script := writeScript(t, t.TempDir(), "slow.sh", "exec sleep 5")
	r := NewRunner(nil, 50*time.Millisecond, logging.NewLogger("command-test"))

	err := r.Run(context.Background(), script)
	require.Error(t, err)
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeCommandTimeout))
}

func TestRunEmpty(t *testing.T) {
	r := NewRunner(nil, 0, logging.NewLogger("command-test"))
	assert.Equal(t, DefaultTimeout, r.timeout)
	assert.True(t, tilerrors.Is(r.Run(context.Background()), tilerrors.ErrCodeCommandNotFound))
	assert.True(t, tilerrors.Is(r.Start(), tilerrors.ErrCodeCommandNotFound))
}

func TestStartUsesExecutor(t *testing.T) {
	e := &recordingExecutor{}
	r := NewRunner(e, time.Second, logging.NewLogger("command-test"))

	require.NoError(t, r.Start("rofi", "-show", "drun"))
	assert.Equal(t, [][]string{{"rofi", "-show", "drun"}}, e.calls)
}

func TestStartMissingBinary(t *testing.T) {
	r := NewRunner(nil, time.Second, logging.NewLogger("command-test"))
	err := r.Start("definitely-not-a-real-binary-tiler")
	require.Error(t, err)
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeCommandNotFound))
}

func TestStartWatchedReportsExit(t *testing.T) {
	r := NewRunner(nil, time.Second, logging.NewLogger("command-test"))

	exited := make(chan error, 1)
	require.NoError(t, r.StartWatched(func(err error) { exited <- err }, "sh", "-c", "exit 3"))
	select {
	case err := <-exited:
		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode())
	case <-time.After(5 * time.Second):
		t.Fatal("exit was not reported")
	}

	err := r.StartWatched(func(error) { t.Error("no process was started") }, "definitely-not-a-real-binary-tiler")
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeCommandNotFound))
}
