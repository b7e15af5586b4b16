package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"int with unit", Of(60).Format("°C"), "60 °C"},
		{"float with unit", Of(55.12).Format("W"), "55.12 W"},
		{"whole float", Of(180.0).Format("W"), "180 W"},
		{"no unit", Of(4).Format(""), "4"},
		{"unavailable int", Measure[int]{}.Format("%"), UnavailableText},
		{"unavailable float", Measure[float64]{}.Format("W"), UnavailableText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSensorStatusSticky(t *testing.T) {
	sticky := map[SensorStatus]bool{
		SensorOK:           false,
		SensorNoHelper:     true,
		SensorNoRoot:       false,
		SensorNotSupported: true,
		SensorTimeout:      false,
		SensorParseError:   false,
		SensorGenericError: true,
	}
	for s, want := range sticky {
		assert.Equal(t, want, s.Sticky(), s.String())
	}
}

func TestVRAMReadingFormat(t *testing.T) {
	assert.Equal(t, "72 °C", VRAMCelsius(72).Format())
	assert.Equal(t, "No Root", VRAMUnavailable(SensorNoRoot).Format())
	assert.True(t, VRAMCelsius(0).OK())
	assert.False(t, VRAMUnavailable(SensorTimeout).OK())
}
