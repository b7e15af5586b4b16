package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/config"
	"github.com/Guliveer/gpuwatch/internal/display"
	"github.com/Guliveer/gpuwatch/internal/elevate"
	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/overclock"
)

var flagLine bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live GPU telemetry until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagLine, "line", false, "Print one line per tick instead of a block")
	rootCmd.Flags().AddFlagSet(watchCmd.Flags())
	ocCmd.AddCommand(ocShowCmd, ocPowerCmd, ocOffsetCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := newApp()
	a.checkPlatform()

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	info, err := a.querier.Static(ctx)
	if err != nil {
		logger.Warn("Static GPU info unavailable", zap.Error(err))
	}
	display.Static(out, cfg.GPU.Index, info)

	a.scheduler.OnSnapshot(func(snap models.Snapshot) {
		if flagLine {
			fmt.Fprintln(out, display.StatusLine(snap))
			return
		}
		display.Snapshot(out, snap)
	})

	logger.Info("Watching GPU",
		zap.Int("gpu", cfg.GPU.Index),
		zap.Duration("interval", cfg.Poll.Interval.Duration))
	a.scheduler.Start(ctx)
	logger.Debug("Watch stopped")
	return nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show static GPU and host information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		a.checkPlatform()
		ctx, cancel := signalContext()
		defer cancel()

		out := cmd.OutOrStdout()
		info, err := a.querier.Static(ctx)
		if err != nil {
			logger.Warn("Static GPU info unavailable", zap.Error(err))
		}
		display.Static(out, cfg.GPU.Index, info)

		host, err := a.platform.Describe(ctx)
		if err != nil {
			logger.Warn("Host info incomplete", zap.Error(err))
		}
		display.Host(out, host)
		return nil
	},
}

var ocCmd = &cobra.Command{
	Use:   "oc",
	Short: "Show or change power limit and clock offsets",
}

var ocShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current power limit and clock offsets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		a.checkPlatform()
		ctx, cancel := signalContext()
		defer cancel()

		display.Overclock(cmd.OutOrStdout(), a.reconciler.Info(ctx))
		return nil
	},
}

var ocPowerCmd = &cobra.Command{
	Use:   "power <watts>",
	Short: "Set the power limit (asks for authorization through polkit)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watts, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid power limit %q", args[0])
		}

		a := newApp()
		a.checkPlatform()
		ctx, cancel := signalContext()
		defer cancel()

		return report(cmd, a.reconciler.ApplyPowerLimit(ctx, watts))
	},
}

var ocOffsetCmd = &cobra.Command{
	Use:   "offset <core|memory> <mhz>",
	Short: "Set a clock offset on all performance levels (needs Coolbits and a running X session)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := overclock.ParseClockKind(args[0])
		if err != nil {
			return err
		}
		mhz, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid offset %q", args[1])
		}

		a := newApp()
		a.checkPlatform()
		ctx, cancel := signalContext()
		defer cancel()

		return report(cmd, a.reconciler.ApplyClockOffset(ctx, kind, mhz))
	},
}

// report prints an apply result and turns a failure into a non-zero exit.
func report(cmd *cobra.Command, res overclock.Result) error {
	display.Result(cmd.OutOrStdout(), res)
	if !res.Success {
		return errReported
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gpuwatch %s\n", version)
	},
}

var flagSystem bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the standard location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := config.ScopeUser
		if flagSystem {
			scope = config.ScopeSystem
			if !elevate.IsRoot() {
				return fmt.Errorf("writing the system-wide config requires root privileges\n\nRun with sudo:\n  sudo %s config init --system", os.Args[0])
			}
		}
		path, err := config.InitPath(scope)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.WriteConfig(cfg, path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Written config → %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.Locate()
		}
		if path == "" {
			path = "(none, using built-in defaults)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&flagSystem, "system", false, "Write /etc/gpuwatch/config.yaml instead of the per-user file")
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
