// Package overclock reads and changes the power limit and clock offsets of
// one GPU through nvidia-smi and nvidia-settings.
//
// Reads run unprivileged. Writes go through pkexec, and the clock-offset
// writes additionally need the caller's X display and authority file
// because nvidia-settings talks to the running X server.
package overclock

import (
	"fmt"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// Safe offset bounds used whenever the real limits cannot be read.
const (
	DefaultCoreMin   = -500
	DefaultCoreMax   = 2000
	DefaultMemoryMin = -500
	DefaultMemoryMax = 3000
)

// ClockKind selects which offset to read or write.
type ClockKind int

const (
	ClockCore ClockKind = iota
	ClockMemory
)

func (k ClockKind) String() string {
	switch k {
	case ClockCore:
		return "core"
	case ClockMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// attribute is the nvidia-settings attribute name for the offset.
func (k ClockKind) attribute() string {
	if k == ClockMemory {
		return "GPUMemoryTransferRateOffset"
	}
	return "GPUGraphicsClockOffset"
}

func (k ClockKind) valid() bool {
	return k == ClockCore || k == ClockMemory
}

// label is the capitalised name used in result messages.
func (k ClockKind) label() string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseClockKind accepts "core" or "memory" (also "mem").
func ParseClockKind(s string) (ClockKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "core", "graphics":
		return ClockCore, nil
	case "memory", "mem":
		return ClockMemory, nil
	default:
		return 0, fmt.Errorf("invalid clock type %q (expected \"core\" or \"memory\")", s)
	}
}

// PowerLimits are in watts. Each field is independently unavailable when
// its line is missing from the nvidia-smi report.
type PowerLimits struct {
	Current models.Measure[float64] `json:"current"`
	Default models.Measure[float64] `json:"default"`
	Min     models.Measure[float64] `json:"min"`
	Max     models.Measure[float64] `json:"max"`
}

// Known reports whether the limits are complete enough to offer a control.
func (p PowerLimits) Known() bool {
	return p.Min.Available && p.Max.Available
}

// OffsetRange is a clock offset in MHz with its valid bounds. Defaulted is
// set when the bounds could not be read and are the safe defaults.
type OffsetRange struct {
	Current   int  `json:"current"`
	Min       int  `json:"min"`
	Max       int  `json:"max"`
	Defaulted bool `json:"defaulted"`
}

// Snapshot is the reconciled overclock state of one GPU.
type Snapshot struct {
	GPU             int         `json:"gpu"`
	CoolbitsEnabled bool        `json:"coolbits_enabled"`
	Power           PowerLimits `json:"power"`
	Core            OffsetRange `json:"core"`
	Memory          OffsetRange `json:"memory"`
}

// Offset returns the range for kind.
func (s Snapshot) Offset(kind ClockKind) OffsetRange {
	if kind == ClockMemory {
		return s.Memory
	}
	return s.Core
}

// DefaultSnapshot is reported when the Coolbits gate is disabled: no power
// data and offsets at zero within the safe default bounds.
func DefaultSnapshot(gpu int) Snapshot {
	return Snapshot{
		GPU:    gpu,
		Core:   OffsetRange{Min: DefaultCoreMin, Max: DefaultCoreMax, Defaulted: true},
		Memory: OffsetRange{Min: DefaultMemoryMin, Max: DefaultMemoryMax, Defaulted: true},
	}
}

// Result is the outcome of an apply request. Snapshot holds the state
// re-read after the write, or the last known state (Refreshed false) when
// the request was rejected before any external command ran.
type Result struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Category  status.Category `json:"category"`
	Refreshed bool            `json:"refreshed"`
	Snapshot  Snapshot        `json:"snapshot"`
}

// State is the reconciler's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateProbing
	StateGateDisabled
	StateGateEnabled
	StateReady
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProbing:
		return "probing"
	case StateGateDisabled:
		return "gate-disabled"
	case StateGateEnabled:
		return "gate-enabled"
	case StateReady:
		return "ready"
	case StateApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// CoolbitsInstructions explains how to enable the feature gate.
const CoolbitsInstructions = `Clock offset controls need the Coolbits option of the NVIDIA X driver.
  1. Run: sudo nvidia-xconfig --cool-bits=28
  2. Log out and back in (or restart the display manager) so X picks it up.
Coolbits value 8 unlocks clock offsets, 4 manual fan control, 16 over-voltage;
28 enables all three.`
