package elevate

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrNoDisplay    = errors.New("DISPLAY is not set; nvidia-settings needs the running X session")
	ErrNoXAuthority = errors.New("XAUTHORITY is not set and ~/.Xauthority does not exist")
)

// Session identifies the graphical session nvidia-settings must reach.
type Session struct {
	Display    string
	XAuthority string
}

// Vars returns the session as KEY=VALUE pairs.
func (s Session) Vars() []string {
	return []string{
		"DISPLAY=" + s.Display,
		"XAUTHORITY=" + s.XAuthority,
	}
}

// Env is the slice of the process environment session resolution needs.
type Env struct {
	Getenv func(string) string
	Home   string
	Exists func(path string) bool
}

// SystemEnv reads the real process environment.
func SystemEnv() Env {
	home, _ := os.UserHomeDir()
	return Env{
		Getenv: os.Getenv,
		Home:   home,
		Exists: func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		},
	}
}

// ResolveSession finds DISPLAY and XAUTHORITY. XAUTHORITY falls back to
// ~/.Xauthority when that file exists; DISPLAY has no fallback.
func ResolveSession(env Env) (Session, error) {
	display := env.Getenv("DISPLAY")
	if display == "" {
		return Session{}, ErrNoDisplay
	}

	xauth := env.Getenv("XAUTHORITY")
	if xauth == "" && env.Home != "" {
		candidate := filepath.Join(env.Home, ".Xauthority")
		if env.Exists(candidate) {
			xauth = candidate
		}
	}
	if xauth == "" {
		return Session{}, ErrNoXAuthority
	}

	return Session{Display: display, XAuthority: xauth}, nil
}
