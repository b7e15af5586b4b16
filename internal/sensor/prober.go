// Package sensor probes the optional VRAM temperature helper. The helper is
// an external executable that needs root; it is run through sudo in
// non-interactive mode on every tick once it has proven to work.
//
// Availability is cached for the session: a permanent incompatibility
// (helper missing, hardware not supported, unexplained failure) stops all
// further invocations, while permission problems and transient errors are
// retried on the next tick because the operator may fix them mid-session.
package sensor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// NoRootHint is shown next to a NoRoot reading.
const NoRootHint = "requires passwordless sudo for the VRAM helper, or running as root"

// Escalator wraps a command so it runs with elevated rights without
// prompting.
type Escalator interface {
	NonInteractive(cmd runner.Command) runner.Command
}

type probeState int

const (
	stateUnknown probeState = iota
	stateAvailable
	stateUnavailable
)

// Options configures a Prober.
type Options struct {
	Helper  string        // executable name or absolute path
	Timeout time.Duration // per invocation
	// Locate resolves Helper to a path, "" when not found. Nil uses
	// DefaultLocator.
	Locate func(helper string) string
}

// Prober owns the session-scoped availability state of the helper.
type Prober struct {
	run    runner.Runner
	esc    Escalator
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	resolved bool
	path     string
	state    probeState
	last     models.VRAMReading
}

// NewProber creates a Prober. The helper is not located until the first Read.
func NewProber(run runner.Runner, esc Escalator, opts Options, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Locate == nil {
		opts.Locate = DefaultLocator()
	}
	return &Prober{
		run:    run,
		esc:    esc,
		opts:   opts,
		logger: logger,
	}
}

// Read returns this tick's reading. Once the helper is known to be
// unusable the cached reason is returned without spawning anything.
func (p *Prober) Read(ctx context.Context) models.VRAMReading {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateUnavailable {
		return p.last
	}

	if !p.resolved {
		p.path = p.opts.Locate(p.opts.Helper)
		p.resolved = true
		if p.path == "" {
			p.logger.Info("VRAM helper not found, hiding VRAM temperature",
				zap.String("helper", p.opts.Helper))
			p.state = stateUnavailable
			p.last = models.VRAMUnavailable(models.SensorNoHelper)
			return p.last
		}
		p.logger.Debug("VRAM helper located", zap.String("path", p.path))
	}

	cmd := p.esc.NonInteractive(runner.Command{
		Name:    p.path,
		Timeout: p.opts.Timeout,
	})
	reading := status.ClassifySensor(p.run.Run(ctx, cmd))
	p.last = reading

	switch p.state {
	case stateUnknown:
		switch {
		case reading.OK():
			p.state = stateAvailable
			p.logger.Info("VRAM helper available", zap.Int("temp_c", reading.Celsius))
		case reading.Status.Sticky():
			p.state = stateUnavailable
			p.logger.Warn("VRAM helper unusable for this session",
				zap.Stringer("status", reading.Status),
				zap.Stringer("category", status.SensorCategory(reading.Status)))
		default:
			p.logger.Debug("VRAM helper not ready, will retry",
				zap.Stringer("status", reading.Status),
				zap.Stringer("category", status.SensorCategory(reading.Status)))
		}
	case stateAvailable:
		// A helper that worked once stays enabled; failures only affect
		// the current tick.
		if !reading.OK() {
			p.logger.Debug("VRAM helper read failed",
				zap.Stringer("status", reading.Status))
		}
	}

	return reading
}

// Hidden reports whether the VRAM temperature should be hidden for the
// rest of the session.
func (p *Prober) Hidden() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateUnavailable
}

// Hint returns operator guidance for a reading, or "".
func Hint(r models.VRAMReading) string {
	if r.Status == models.SensorNoRoot {
		return NoRootHint
	}
	return ""
}
