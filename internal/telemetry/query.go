package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// Querier runs nvidia-smi queries against one GPU.
type Querier struct {
	run     runner.Runner
	smi     string
	gpu     int
	timeout time.Duration
	logger  *zap.Logger
}

// NewQuerier creates a Querier. smi is the nvidia-smi executable, gpu the
// device index passed with -i.
func NewQuerier(run runner.Runner, smi string, gpu int, timeout time.Duration, logger *zap.Logger) *Querier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Querier{
		run:     run,
		smi:     smi,
		gpu:     gpu,
		timeout: timeout,
		logger:  logger,
	}
}

// Static reads name, VRAM, driver version and max PCIe generation.
func (q *Querier) Static(ctx context.Context) (models.StaticInfo, error) {
	line, err := q.query(ctx, StaticFields)
	if err != nil {
		return models.StaticInfo{}, err
	}
	info, err := ParseStatic(line)
	if err != nil {
		q.logger.Warn("Failed to parse static GPU info", zap.Error(err))
		return models.StaticInfo{}, status.Errorf(status.ParseError, q.smi, "%v", err)
	}
	return info, nil
}

// Dynamic reads the per-tick status. A failed query or an unparsable line
// yields an error and a zero record; there are no partial results.
func (q *Querier) Dynamic(ctx context.Context) (models.DynamicStatus, error) {
	line, err := q.query(ctx, DynamicFields)
	if err != nil {
		return models.DynamicStatus{}, err
	}
	st, err := ParseDynamic(line)
	if err != nil {
		q.logger.Warn("Failed to parse GPU status", zap.Error(err))
		return models.DynamicStatus{}, status.Errorf(status.ParseError, q.smi, "%v", err)
	}
	return st, nil
}

func (q *Querier) query(ctx context.Context, fields []Field) (string, error) {
	res := q.run.Run(ctx, runner.Command{
		Name: q.smi,
		Args: []string{
			"-i", strconv.Itoa(q.gpu),
			"--query-gpu=" + QueryList(fields),
			"--format=csv,noheader,nounits",
		},
		Timeout: q.timeout,
	})
	if err := status.FromResult(q.smi, res); err != nil {
		q.logger.Debug("GPU query failed", zap.Error(err))
		return "", err
	}
	return firstLine(res.Stdout), nil
}
