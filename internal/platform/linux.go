//go:build linux

package platform

import "context"

// LinuxPlatform implements Platform for Linux systems.
type LinuxPlatform struct{}

// New creates the platform for the running OS.
func New() Platform {
	return &LinuxPlatform{}
}

func (p *LinuxPlatform) Name() string { return "linux" }

func (p *LinuxPlatform) Check() error { return nil }

func (p *LinuxPlatform) Describe(ctx context.Context) (Host, error) {
	return describe(ctx)
}
