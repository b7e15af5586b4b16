// Package scheduler implements the periodic poll loop. Each tick runs the
// collectors in order and hands one assembled snapshot to a callback. The
// scheduler does not render anything itself.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/collector"
	"github.com/Guliveer/gpuwatch/internal/models"
)

// Scheduler drives the collectors at a fixed interval. The next tick is
// armed only after the previous one finished, so a slow tool call delays
// the schedule instead of stacking ticks.
type Scheduler struct {
	registry *collector.Registry
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	onSnapshot func(models.Snapshot)
}

// New creates a new Scheduler with the given registry, interval and logger.
func New(registry *collector.Registry, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		registry: registry,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// OnSnapshot sets the callback invoked after every tick. It runs on the
// scheduler goroutine.
func (s *Scheduler) OnSnapshot(fn func(models.Snapshot)) {
	s.onSnapshot = fn
}

// Start polls immediately and then every interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.tick(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler stopped")
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Once runs a single tick and returns its snapshot without invoking the
// callback.
func (s *Scheduler) Once(ctx context.Context) models.Snapshot {
	return s.assembleSnapshot(s.registry.CollectAll(ctx))
}

func (s *Scheduler) tick(ctx context.Context) {
	snap := s.Once(ctx)
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("Collected GPU status",
		zap.Time("timestamp", snap.Timestamp),
		zap.Bool("polled", snap.Polled))

	if s.onSnapshot != nil {
		s.onSnapshot(snap)
	}
}

// assembleSnapshot maps collector results into one Snapshot.
func (s *Scheduler) assembleSnapshot(results collector.Results) models.Snapshot {
	snapshot := models.Snapshot{
		Timestamp:  s.now().UTC(),
		VRAM:       models.VRAMUnavailable(models.SensorNoHelper),
		VRAMHidden: true,
	}

	// GPU status
	if data, ok := results.Data["gpu"]; ok {
		if st, ok := data.(models.DynamicStatus); ok {
			snapshot.Status = st
			snapshot.Polled = true
		}
	}
	if err, ok := results.Errors["gpu"]; ok {
		snapshot.StatusError = err.Error()
	}

	// VRAM temperature
	if data, ok := results.Data["vram"]; ok {
		if v, ok := data.(collector.VRAMResult); ok {
			snapshot.VRAM = v.Reading
			snapshot.VRAMHidden = v.Hidden
			snapshot.VRAMHint = v.Hint
		}
	}

	return snapshot
}
