// Package collector defines the Collector interface and the per-tick GPU
// collectors.
package collector

import "context"

// Collector is the interface that all per-tick collectors implement.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers one reading. The context carries cancellation only;
	// each external command has its own timeout.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable reports whether the collector should be registered.
	IsAvailable() bool
}
