package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
)

// DefaultTimeout bounds synchronous commands such as layout fixup scripts,
// which run on the main loop.
const DefaultTimeout = 10 * time.Second

// Executor creates exec.Cmd instances. Tests substitute an implementation that
// records invocations or points at scripts in a temporary directory.
type Executor interface {
	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor is the production implementation of the Executor interface,
// which uses the standard os/exec package to create commands.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// Runner runs external commands through an Executor.
type Runner struct {
	executor Executor
	timeout  time.Duration
	log      *logrus.Entry
}

// NewRunner returns a Runner. A nil executor means RealExecutor and a
// non-positive timeout means DefaultTimeout.
func NewRunner(executor Executor, timeout time.Duration, log *logrus.Entry) *Runner {
	if executor == nil {
		executor = &RealExecutor{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{executor: executor, timeout: timeout, log: log}
}

// Run runs argv to completion. Errors are COMMAND_NOT_FOUND, COMMAND_TIMEOUT
// or COMMAND_FAILED.
func (r *Runner) Run(ctx context.Context, argv ...string) error {
	if len(argv) == 0 {
		return tilerrors.CommandNotFound("", errors.New("empty command"))
	}
	name := strings.Join(argv, " ")
	if isPath(argv[0]) {
		if _, err := os.Stat(argv[0]); err != nil {
			return tilerrors.CommandNotFound(argv[0], err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c := r.executor.CommandContext(ctx, argv[0], argv[1:]...)
	// Scripts may leave background children holding the output pipe open.
	c.WaitDelay = 200 * time.Millisecond
	out, err := c.CombinedOutput()
	if len(out) > 0 {
		r.log.WithField("command", name).Debugf("output: %s", strings.TrimSpace(string(out)))
	}
	switch {
	case err == nil:
		return nil
	case ctx.Err() == context.DeadlineExceeded:
		return tilerrors.CommandTimeout(name, r.timeout.String())
	case errors.Is(err, exec.ErrNotFound):
		return tilerrors.CommandNotFound(argv[0], err)
	}
	return tilerrors.CommandFailed(name, err)
}

// Start launches argv and returns without waiting for it. The process is
// reaped on its own goroutine; its exit status is ignored.
func (r *Runner) Start(argv ...string) error {
	return r.StartWatched(nil, argv...)
}

// StartWatched is Start, but calls onExit, on the reaping goroutine, with the
// result of Wait once the process has exited.
func (r *Runner) StartWatched(onExit func(error), argv ...string) error {
	if len(argv) == 0 {
		return tilerrors.CommandNotFound("", errors.New("empty command"))
	}
	c := r.executor.CommandContext(context.Background(), argv[0], argv[1:]...)
	if err := c.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return tilerrors.CommandNotFound(argv[0], err)
		}
		return tilerrors.CommandFailed(strings.Join(argv, " "), err)
	}
	go func() {
		err := c.Wait()
		if onExit != nil {
			onExit(err)
		}
	}()
	return nil
}

func isPath(name string) bool {
	return strings.ContainsRune(name, os.PathSeparator)
}
