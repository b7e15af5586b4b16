package sensor

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Locate resolves helper to an executable path: an absolute path is used
// as is, otherwise the file beside the application wins over PATH.
// Returns "" when nothing executable is found.
func Locate(helper, appDir string, lookPath func(string) (string, error)) string {
	if helper == "" {
		return ""
	}
	if filepath.IsAbs(helper) {
		if isExecutable(helper) {
			return helper
		}
		return ""
	}
	if appDir != "" {
		candidate := filepath.Join(appDir, helper)
		if isExecutable(candidate) {
			return candidate
		}
	}
	if p, err := lookPath(helper); err == nil {
		return p
	}
	return ""
}

// DefaultLocator searches beside the running executable, then PATH.
func DefaultLocator() func(string) string {
	return func(helper string) string {
		var dir string
		if exe, err := os.Executable(); err == nil {
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}
			dir = filepath.Dir(exe)
		}
		return Locate(helper, dir, exec.LookPath)
	}
}
