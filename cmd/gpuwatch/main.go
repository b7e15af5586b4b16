// Package main is the entry point for gpuwatch, a terminal monitor and
// overclock tool for a single NVIDIA GPU.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/gpuwatch/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// errReported marks a failure whose message was already printed.
var errReported = errors.New("failed")

var (
	cfg    *config.Config
	logger *zap.Logger

	flagConfig   string
	flagGPU      int
	flagInterval time.Duration
	flagLogLevel string
	flagLogFile  string
)

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if logger != nil {
			_ = logger.Sync()
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "gpuwatch",
	Short:         "Monitor and overclock an NVIDIA GPU",
	Long:          `Polls nvidia-smi for live telemetry, reads VRAM temperature through an optional helper, and changes power limits and clock offsets through nvidia-smi and nvidia-settings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return setup(cmd)
	},
	RunE: runWatch,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to configuration file (default: search standard locations)")
	pf.IntVarP(&flagGPU, "gpu", "i", 0, "GPU index")
	pf.DurationVar(&flagInterval, "interval", 0, "Poll interval (e.g. 500ms, 2s)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFile, "log-file", "", "Also write JSON logs to this file")

	rootCmd.AddCommand(watchCmd, infoCmd, ocCmd, versionCmd)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		Interval: flagInterval,
		LogLevel: flagLogLevel,
		LogFile:  flagLogFile,
	}
	if cmd.Flags().Changed("gpu") {
		cli.GPUIndex = &flagGPU
	}

	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadLayered(cli, embeddedConfig, flagConfig)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = initLogger(cfg)
	logger.Debug("Configuration loaded",
		zap.String("version", version),
		zap.Int("gpu", cfg.GPU.Index),
		zap.Duration("interval", cfg.Poll.Interval.Duration))
	return nil
}

// initLogger creates a zap logger based on the configuration.
// Console output goes to stderr so telemetry on stdout stays clean; a JSON
// log file is added when configured.
func initLogger(cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.Logging.File, err)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
