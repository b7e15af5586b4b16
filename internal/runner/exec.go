package runner

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the direct child has been killed.
const waitDelay = 500 * time.Millisecond

// ExecRunner runs commands with os/exec, one child process per call.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a Runner backed by os/exec. Pass nil for no logging.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

// Run starts the command, waits for it up to cmd.Timeout and captures its
// output. A zero timeout means the parent context alone bounds the call.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.WaitDelay = waitDelay
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}

	switch {
	case err == nil:
		res.ExitCode = 0
	case isNotFound(err):
		res.NotFound = true
		res.Err = err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.Err = err
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Err = err
		}
	}

	r.logger.Debug("Command finished",
		zap.String("cmd", cmd.String()),
		zap.Int("exit_code", res.ExitCode),
		zap.Bool("timed_out", res.TimedOut),
		zap.Bool("not_found", res.NotFound),
		zap.Duration("elapsed", time.Since(start)))

	return res
}

// isNotFound matches both PATH lookup failures and absolute paths that do
// not exist.
func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}

var _ Runner = (*ExecRunner)(nil)
