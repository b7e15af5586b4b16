package models

import "time"

// Snapshot is everything gathered in one poll tick.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	// Status is only meaningful when Polled is true. A failed poll leaves
	// Polled false and StatusError set; every field renders as unavailable.
	Status      DynamicStatus `json:"status"`
	Polled      bool          `json:"polled"`
	StatusError string        `json:"status_error,omitempty"`

	VRAM       VRAMReading `json:"vram"`
	VRAMHidden bool        `json:"vram_hidden"`
	VRAMHint   string      `json:"vram_hint,omitempty"`
}
