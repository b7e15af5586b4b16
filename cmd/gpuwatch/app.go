package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/collector"
	"github.com/Guliveer/gpuwatch/internal/elevate"
	"github.com/Guliveer/gpuwatch/internal/overclock"
	"github.com/Guliveer/gpuwatch/internal/platform"
	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/scheduler"
	"github.com/Guliveer/gpuwatch/internal/sensor"
	"github.com/Guliveer/gpuwatch/internal/telemetry"
)

// app wires the components for one invocation.
type app struct {
	platform   platform.Platform
	querier    *telemetry.Querier
	prober     *sensor.Prober
	reconciler *overclock.Reconciler
	scheduler  *scheduler.Scheduler
}

func newApp() *app {
	run := runner.NewExecRunner(logger)
	esc := elevate.New(cfg.Tools.Sudo, cfg.Tools.Pkexec, cfg.Tools.Env)

	querier := telemetry.NewQuerier(run, cfg.Tools.NvidiaSMI, cfg.GPU.Index,
		cfg.Timeouts.Query.Duration, logger.Named("telemetry"))

	prober := sensor.NewProber(run, esc, sensor.Options{
		Helper:  cfg.Tools.VRAMHelper,
		Timeout: cfg.Timeouts.Helper.Duration,
	}, logger.Named("sensor"))

	reconciler := overclock.NewReconciler(run, esc, overclock.Options{
		GPU:              cfg.GPU.Index,
		PerformanceLevel: cfg.GPU.PerformanceLevel,
		NvidiaSMI:        cfg.Tools.NvidiaSMI,
		NvidiaSettings:   cfg.Tools.NvidiaSettings,
		QueryTimeout:     cfg.Timeouts.Query.Duration,
		SettingsTimeout:  cfg.Timeouts.Settings.Duration,
		ApplyTimeout:     cfg.Timeouts.Apply.Duration,
	}, logger.Named("overclock"))

	registry := collector.NewRegistry(logger.Named("collector"))
	registry.Register(collector.NewGPUCollector(querier))
	registry.Register(collector.NewVRAMCollector(prober))

	return &app{
		platform:   platform.New(),
		querier:    querier,
		prober:     prober,
		reconciler: reconciler,
		scheduler:  scheduler.New(registry, cfg.Poll.Interval.Duration, logger.Named("scheduler")),
	}
}

// checkPlatform logs a warning on systems the NVIDIA tools do not run on.
// Commands still run so the failures surface as unavailable readings.
func (a *app) checkPlatform() {
	if err := a.platform.Check(); err != nil {
		logger.Warn("GPU tools are not supported here", zap.Error(err))
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
