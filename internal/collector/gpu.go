package collector

import (
	"context"

	"github.com/Guliveer/gpuwatch/internal/models"
)

// StatusReader reads the dynamic GPU status; *telemetry.Querier satisfies it.
type StatusReader interface {
	Dynamic(ctx context.Context) (models.DynamicStatus, error)
}

// GPUCollector polls the primary telemetry source.
type GPUCollector struct {
	reader StatusReader
}

// NewGPUCollector creates a new GPU status collector.
func NewGPUCollector(reader StatusReader) *GPUCollector {
	return &GPUCollector{reader: reader}
}

func (c *GPUCollector) Name() string { return "gpu" }

// IsAvailable is always true: a missing nvidia-smi is reported on every
// tick rather than hidden.
func (c *GPUCollector) IsAvailable() bool { return true }

// Collect returns a models.DynamicStatus.
func (c *GPUCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.reader.Dynamic(ctx)
}
