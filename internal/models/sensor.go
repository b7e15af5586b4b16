package models

import "strconv"

// SensorStatus is the closed set of outcomes for a secondary temperature
// read. SensorOK means the reading carries a valid value.
type SensorStatus int

const (
	SensorOK SensorStatus = iota
	SensorNoHelper
	SensorNoRoot
	SensorNotSupported
	SensorTimeout
	SensorParseError
	SensorGenericError
)

func (s SensorStatus) String() string {
	switch s {
	case SensorOK:
		return "ok"
	case SensorNoHelper:
		return "No Helper"
	case SensorNoRoot:
		return "No Root"
	case SensorNotSupported:
		return "Not Supported"
	case SensorTimeout:
		return "Timeout"
	case SensorParseError:
		return "Parse Error"
	case SensorGenericError:
		return "Error"
	default:
		return "unknown"
	}
}

// Sticky reports whether the status is a permanent incompatibility for the
// session, as opposed to something worth retrying on the next tick.
func (s SensorStatus) Sticky() bool {
	return s == SensorNoHelper || s == SensorNotSupported || s == SensorGenericError
}

// VRAMReading is either a temperature in °C or an unavailable reason.
type VRAMReading struct {
	Celsius int          `json:"celsius"`
	Status  SensorStatus `json:"status"`
}

// VRAMCelsius returns a valid reading.
func VRAMCelsius(c int) VRAMReading {
	return VRAMReading{Celsius: c, Status: SensorOK}
}

// VRAMUnavailable returns a reading that failed for reason.
func VRAMUnavailable(reason SensorStatus) VRAMReading {
	return VRAMReading{Status: reason}
}

// OK reports whether the reading holds a temperature.
func (r VRAMReading) OK() bool { return r.Status == SensorOK }

// Format renders the reading for display.
func (r VRAMReading) Format() string {
	if r.OK() {
		return strconv.Itoa(r.Celsius) + " °C"
	}
	return r.Status.String()
}
