package collector

import (
	"context"

	"go.uber.org/zap"
)

// Results holds one pass over the registry, keyed by collector name.
// A collector appears in exactly one of the two maps.
type Results struct {
	Data   map[string]interface{}
	Errors map[string]error
}

// Registry holds the registered collectors and runs them in registration
// order on the caller's goroutine, so no two external queries of one tick
// overlap.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// Register adds a collector if it is available. Unavailable collectors are
// logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Debug("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// CollectAll runs every collector in order. A failed collector is recorded
// in Errors and does not stop the others. Cancellation stops the pass
// between collectors.
func (r *Registry) CollectAll(ctx context.Context) Results {
	res := Results{
		Data:   make(map[string]interface{}, len(r.collectors)),
		Errors: make(map[string]error),
	}

	for _, c := range r.collectors {
		if err := ctx.Err(); err != nil {
			res.Errors[c.Name()] = err
			continue
		}
		data, err := c.Collect(ctx)
		if err != nil {
			r.logger.Debug("Collection failed",
				zap.String("collector", c.Name()),
				zap.Error(err))
			res.Errors[c.Name()] = err
			continue
		}
		res.Data[c.Name()] = data
	}

	return res
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
