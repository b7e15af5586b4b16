//go:build linux || darwin

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "gpuwatch", "config.yaml"))
	}
	return append(paths, "/etc/gpuwatch/config.yaml")
}
