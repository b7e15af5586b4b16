package runner

import (
	"context"
	"sync"
)

// Fake is a scripted Runner for tests. It records every command and answers
// with Handler, or with a zero-exit empty Result when Handler is nil.
type Fake struct {
	Handler func(cmd Command) Result

	mu    sync.Mutex
	calls []Command
}

// NewFake creates a Fake answering with fn.
func NewFake(fn func(cmd Command) Result) *Fake {
	return &Fake{Handler: fn}
}

// Run records cmd and returns the scripted result.
func (f *Fake) Run(ctx context.Context, cmd Command) Result {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.Handler == nil {
		return Result{}
	}
	return f.Handler(cmd)
}

// Calls returns a copy of the recorded commands in invocation order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of recorded commands.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Stdout is a convenience Result for a successful command.
func Stdout(out string) Result {
	return Result{Stdout: out}
}

// Exit is a convenience Result for a command that exited with code and stderr.
func Exit(code int, stderr string) Result {
	return Result{ExitCode: code, Stderr: stderr}
}

var _ Runner = (*Fake)(nil)
