package overclock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Guliveer/gpuwatch/internal/models"
)

const powerReport = `
==============NVSMI LOG==============

Timestamp                                 : Mon Oct 19 10:00:00 2026
Driver Version                            : 550.54.14
CUDA Version                              : 12.4

Attached GPUs                             : 1
GPU 00000000:01:00.0
    GPU Power Readings
        Power Draw                        : 31.52 W
        Current Power Limit               : 180.00 W
        Requested Power Limit             : 180.00 W
        Default Power Limit               : 170.00 W
        Min Power Limit                   : 100.00 W
        Max Power Limit                   : 200.00 W
    Power Samples
        Duration                          : 2.38 sec
`

func TestParsePowerLimits(t *testing.T) {
	p := ParsePowerLimits(powerReport)

	assert.Equal(t, 180.0, p.Current.Value)
	assert.Equal(t, 170.0, p.Default.Value)
	assert.Equal(t, 100.0, p.Min.Value)
	assert.Equal(t, 200.0, p.Max.Value)
	assert.True(t, p.Known())
}

func TestParsePowerLimits_OlderLayout(t *testing.T) {
	text := `    Power Readings
        Power Management                  : Supported
        Power Draw                        : 20.10 W
        Power Limit                       : 250.00 W
        Default Power Limit               : 250.00 W
        Enforced Power Limit              : 250.00 W
        Min Power Limit                   : 125.00 W
        Max Power Limit                   : 300.00 W
`
	p := ParsePowerLimits(text)

	assert.Equal(t, 250.0, p.Current.Value)
	assert.Equal(t, 125.0, p.Min.Value)
	assert.Equal(t, 300.0, p.Max.Value)
}

func TestParsePowerLimits_MissingFieldsAreIndependent(t *testing.T) {
	text := "Power Limit : 180.00 W\nMax Power Limit : N/A\n"

	p := ParsePowerLimits(text)

	assert.True(t, p.Current.Available)
	assert.Equal(t, 180.0, p.Current.Value)
	assert.False(t, p.Default.Available)
	assert.False(t, p.Min.Available)
	assert.False(t, p.Max.Available)
	assert.False(t, p.Known())
}

func TestParsePowerLimits_Empty(t *testing.T) {
	assert.Equal(t, PowerLimits{}, ParsePowerLimits(""))
}

func TestParseOffsetLimits(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		attr   string
		lo, hi int
		ok     bool
	}{
		{
			name: "current phrasing",
			text: "  Attribute 'GPUGraphicsClockOffset' (box:1[gpu:0]): 0.\n" +
				"    The valid values for 'GPUGraphicsClockOffset' are in the range -200 - 1200 (inclusive).\n",
			attr: "GPUGraphicsClockOffset",
			lo:   -200, hi: 1200, ok: true,
		},
		{
			name: "older phrasing",
			text: "  Attribute 'GPUMemoryTransferRateOffset' (box:1[gpu:0]): 500.\n    Valid values range from -2000 to 6000.\n",
			attr: "GPUMemoryTransferRateOffset",
			lo:   -2000, hi: 6000, ok: true,
		},
		{
			name: "range names another attribute",
			text: "The valid values for 'GPUMemoryTransferRateOffset' are in the range -1000 - 3000 (inclusive).",
			attr: "GPUGraphicsClockOffset",
		},
		{
			name: "no range",
			text: "  Attribute 'GPUGraphicsClockOffset' (box:1[gpu:0]): 0.\n",
			attr: "GPUGraphicsClockOffset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := ParseOffsetLimits(tt.text, tt.attr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestParseClockKind(t *testing.T) {
	k, err := ParseClockKind("Memory")
	assert.NoError(t, err)
	assert.Equal(t, ClockMemory, k)

	k, err = ParseClockKind("core")
	assert.NoError(t, err)
	assert.Equal(t, ClockCore, k)

	_, err = ParseClockKind("shader")
	assert.Error(t, err)
}

func TestFormatWatts(t *testing.T) {
	assert.Equal(t, "250", formatWatts(250))
	assert.Equal(t, "100.5", formatWatts(100.5))
	assert.Equal(t, "87.25", formatWatts(87.25))
	assert.Equal(t, "0", formatWatts(0.004))
}

func TestParsePowerLimits_LabeledLines(t *testing.T) {
	text := "Power Limit : 180.00 W\nDefault Power Limit : 170.00 W\nMin Power Limit : 100.00 W\nMax Power Limit : 200.00 W\n"

	p := ParsePowerLimits(text)

	assert.Equal(t, PowerLimits{
		Current: models.Of(180.0),
		Default: models.Of(170.0),
		Min:     models.Of(100.0),
		Max:     models.Of(200.0),
	}, p)
}
