//go:build !linux

package platform

import (
	"context"
	"fmt"
	"runtime"
)

// StubPlatform is used on systems the NVIDIA Linux tools do not exist on.
// Host details still work so the info view can say what it found.
type StubPlatform struct{}

// New creates the platform for the running OS.
func New() Platform {
	return &StubPlatform{}
}

func (p *StubPlatform) Name() string { return "stub" }

func (p *StubPlatform) Check() error {
	return fmt.Errorf("%w: %s (nvidia-settings and pkexec require Linux)", ErrUnsupported, runtime.GOOS)
}

func (p *StubPlatform) Describe(ctx context.Context) (Host, error) {
	return describe(ctx)
}
