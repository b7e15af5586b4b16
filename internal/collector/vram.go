package collector

import (
	"context"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/sensor"
)

// VRAMSensor is the secondary temperature source; *sensor.Prober
// satisfies it.
type VRAMSensor interface {
	Read(ctx context.Context) models.VRAMReading
	Hidden() bool
}

// VRAMResult is what VRAMCollector returns.
type VRAMResult struct {
	Reading models.VRAMReading
	Hidden  bool
	Hint    string
}

// VRAMCollector reads the VRAM temperature helper. It never fails; every
// problem is carried as a sensor status in the reading.
type VRAMCollector struct {
	sensor VRAMSensor
}

// NewVRAMCollector creates a new VRAM temperature collector.
func NewVRAMCollector(s VRAMSensor) *VRAMCollector {
	return &VRAMCollector{sensor: s}
}

func (c *VRAMCollector) Name() string { return "vram" }

func (c *VRAMCollector) IsAvailable() bool { return c.sensor != nil }

func (c *VRAMCollector) Collect(ctx context.Context) (interface{}, error) {
	r := c.sensor.Read(ctx)
	return VRAMResult{
		Reading: r,
		Hidden:  c.sensor.Hidden(),
		Hint:    sensor.Hint(r),
	}, nil
}
