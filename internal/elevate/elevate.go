// Package elevate builds privilege-escalated command lines. Reads of the
// secondary sensor go through sudo in non-interactive mode so they fail
// immediately instead of prompting; writes go through pkexec so the
// desktop's polkit agent can ask for authorization.
package elevate

import (
	"github.com/Guliveer/gpuwatch/internal/runner"
)

// Wrapper rewrites commands to run with elevated rights. When the process
// already runs as root, commands are returned unchanged.
type Wrapper struct {
	Sudo   string
	Pkexec string
	Env    string

	euid func() int
}

// New creates a Wrapper using the given executables.
func New(sudo, pkexec, env string) Wrapper {
	return Wrapper{
		Sudo:   sudo,
		Pkexec: pkexec,
		Env:    env,
		euid:   effectiveUID,
	}
}

func (w Wrapper) isRoot() bool {
	return w.euid != nil && w.euid() == 0
}

// NonInteractive wraps cmd with "sudo -n".
func (w Wrapper) NonInteractive(cmd runner.Command) runner.Command {
	if w.isRoot() {
		return cmd
	}
	out := cmd
	out.Name = w.Sudo
	out.Args = append([]string{"-n", cmd.Name}, cmd.Args...)
	return out
}

// Interactive wraps cmd with pkexec.
func (w Wrapper) Interactive(cmd runner.Command) runner.Command {
	if w.isRoot() {
		return cmd
	}
	out := cmd
	out.Name = w.Pkexec
	out.Args = append([]string{cmd.Name}, cmd.Args...)
	return out
}

// InteractiveInSession wraps cmd with pkexec and carries the display
// session across, since pkexec scrubs the environment.
func (w Wrapper) InteractiveInSession(cmd runner.Command, s Session) runner.Command {
	vars := s.Vars()
	if w.isRoot() {
		out := cmd
		out.Env = append(append([]string{}, cmd.Env...), vars...)
		return out
	}
	out := cmd
	out.Name = w.Pkexec
	args := make([]string, 0, len(vars)+len(cmd.Args)+2)
	args = append(args, w.Env)
	args = append(args, vars...)
	args = append(args, cmd.Name)
	args = append(args, cmd.Args...)
	out.Args = args
	return out
}

// IsRoot reports whether the process runs with effective uid 0.
func IsRoot() bool {
	return effectiveUID() == 0
}
