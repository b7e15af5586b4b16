// Package platform describes the host the tool runs on. GPU control only
// works on Linux with the NVIDIA driver; other systems get a Platform whose
// Check explains why.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// ErrUnsupported is returned by Check on systems without the NVIDIA Linux
// tools.
var ErrUnsupported = errors.New("unsupported platform")

// Platform provides OS-specific checks and host details.
type Platform interface {
	// Name returns the platform identifier (linux, stub).
	Name() string

	// Check reports whether the GPU tools can work here.
	Check() error

	// Describe returns details about the host for the info view.
	Describe(ctx context.Context) (Host, error)
}

// Host is the subset of host information shown next to the GPU details.
type Host struct {
	Hostname        string        `json:"hostname"`
	OS              string        `json:"os"`
	Platform        string        `json:"platform"`
	PlatformVersion string        `json:"platform_version"`
	KernelVersion   string        `json:"kernel_version"`
	Arch            string        `json:"arch"`
	Uptime          time.Duration `json:"uptime"`
}

// String renders e.g. "ubuntu 24.04 (linux 6.8.0-45-generic, x86_64)".
func (h Host) String() string {
	name := h.Platform
	if name == "" {
		name = h.OS
	}
	if h.PlatformVersion != "" {
		name += " " + h.PlatformVersion
	}
	return fmt.Sprintf("%s (%s %s, %s)", name, h.OS, h.KernelVersion, h.Arch)
}

func describe(ctx context.Context) (Host, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Host{OS: runtime.GOOS, Arch: runtime.GOARCH}, fmt.Errorf("failed to read host info: %w", err)
	}
	arch := info.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}
	return Host{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Arch:            arch,
		Uptime:          time.Duration(info.Uptime) * time.Second,
	}, nil
}
