// Package runner is the only place that spawns external processes.
// Every failure mode of a child process (missing binary, timeout, non-zero
// exit) is encoded in the returned Result; Run never returns an error.
package runner

import (
	"context"
	"strings"
	"time"
)

// Command describes one child process invocation.
type Command struct {
	Name    string
	Args    []string
	Env     []string // extra KEY=VALUE pairs appended to the inherited environment
	Timeout time.Duration
}

// String renders the command line for logging.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Result captures everything observable about a finished (or failed to
// start) child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never ran to completion
	TimedOut bool
	NotFound bool  // the executable could not be resolved
	Err      error // any other start/wait failure, informational only
}

// Ok reports whether the process ran and exited with status 0.
func (r Result) Ok() bool {
	return !r.NotFound && !r.TimedOut && r.Err == nil && r.ExitCode == 0
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}
