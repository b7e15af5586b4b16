package overclock

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/gpuwatch/internal/elevate"
	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// Escalator wraps write commands for interactive privilege escalation.
type Escalator interface {
	Interactive(cmd runner.Command) runner.Command
	InteractiveInSession(cmd runner.Command, s elevate.Session) runner.Command
}

// Options configure a Reconciler.
type Options struct {
	GPU              int
	PerformanceLevel int
	NvidiaSMI        string
	NvidiaSettings   string
	QueryTimeout     time.Duration
	SettingsTimeout  time.Duration
	ApplyTimeout     time.Duration

	// Session resolves the graphical session for clock writes. Defaults
	// to the process environment.
	Session func() (elevate.Session, error)
}

// Reconciler holds the overclock state of one GPU and serialises changes
// to it. Info and the Apply methods may be called from any goroutine;
// an apply issued while another is running is refused rather than queued.
type Reconciler struct {
	run    runner.Runner
	esc    Escalator
	opts   Options
	logger *zap.Logger

	op sync.Mutex // held for the duration of Info and Apply*

	mu    sync.Mutex
	state State
	last  Snapshot
}

// NewReconciler creates a Reconciler in the Uninitialized state.
func NewReconciler(run runner.Runner, esc Escalator, opts Options, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NvidiaSMI == "" {
		opts.NvidiaSMI = "nvidia-smi"
	}
	if opts.NvidiaSettings == "" {
		opts.NvidiaSettings = "nvidia-settings"
	}
	if opts.Session == nil {
		opts.Session = func() (elevate.Session, error) {
			return elevate.ResolveSession(elevate.SystemEnv())
		}
	}
	return &Reconciler{
		run:    run,
		esc:    esc,
		opts:   opts,
		logger: logger.With(zap.String("component", "overclock"), zap.Int("gpu", opts.GPU)),
		last:   DefaultSnapshot(opts.GPU),
	}
}

// State returns the current lifecycle state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// lastSnapshot returns the most recent snapshot without querying the tools.
func (r *Reconciler) lastSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reconciler) setState(s State) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()
	if prev != s {
		r.logger.Debug("State changed", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

// Info probes the Coolbits gate and, when it is enabled, reads the power
// limits and both clock offsets. It never fails: whatever cannot be read
// is reported as unavailable or defaulted.
func (r *Reconciler) Info(ctx context.Context) Snapshot {
	r.op.Lock()
	defer r.op.Unlock()
	return r.info(ctx)
}

func (r *Reconciler) info(ctx context.Context) Snapshot {
	r.setState(StateProbing)
	snap := DefaultSnapshot(r.opts.GPU)

	if !r.gateEnabled(ctx) {
		r.setState(StateGateDisabled)
		r.logger.Info("Coolbits not enabled, overclock controls unavailable")
		return r.finish(snap)
	}
	r.setState(StateGateEnabled)
	snap.CoolbitsEnabled = true

	snap.Power = r.readPower(ctx)
	snap.Core = r.readOffset(ctx, ClockCore)
	snap.Memory = r.readOffset(ctx, ClockMemory)
	return r.finish(snap)
}

func (r *Reconciler) finish(snap Snapshot) Snapshot {
	r.mu.Lock()
	r.last = snap
	r.mu.Unlock()
	r.setState(StateReady)
	return snap
}

// offsetAttr is the per-performance-level read attribute for kind.
func (r *Reconciler) offsetAttr(kind ClockKind) string {
	return fmt.Sprintf("[gpu:%d]/%s[%d]", r.opts.GPU, kind.attribute(), r.opts.PerformanceLevel)
}

// gateEnabled reports whether the core offset attribute is exposed, which
// is the case only when Coolbits is set in the X configuration.
func (r *Reconciler) gateEnabled(ctx context.Context) bool {
	out, err := r.querySettings(ctx, true, r.offsetAttr(ClockCore))
	if err != nil {
		r.logger.Debug("Coolbits probe failed", zap.Error(err))
		return false
	}
	return out != ""
}

func (r *Reconciler) querySettings(ctx context.Context, terse bool, attr string) (string, error) {
	args := []string{"-q", attr}
	if terse {
		args = []string{"-t", "-q", attr}
	}
	res := r.run.Run(ctx, runner.Command{
		Name:    r.opts.NvidiaSettings,
		Args:    args,
		Timeout: r.opts.SettingsTimeout,
	})
	if err := settingsError(res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (r *Reconciler) readPower(ctx context.Context) PowerLimits {
	res := r.run.Run(ctx, runner.Command{
		Name:    r.opts.NvidiaSMI,
		Args:    []string{"-i", strconv.Itoa(r.opts.GPU), "-q", "-d", "POWER"},
		Timeout: r.opts.QueryTimeout,
	})
	if err := status.FromResult("nvidia-smi", res); err != nil {
		r.logger.Warn("Failed to read power limits", zap.Error(err))
		return PowerLimits{}
	}
	limits := ParsePowerLimits(res.Stdout)
	if !limits.Current.Available {
		r.logger.Warn("Current power limit missing from nvidia-smi report")
	}
	return limits
}

func (r *Reconciler) readOffset(ctx context.Context, kind ClockKind) OffsetRange {
	out := DefaultSnapshot(r.opts.GPU).Offset(kind)
	attr := r.offsetAttr(kind)

	cur, err := r.querySettings(ctx, true, attr)
	if err != nil {
		r.logger.Warn("Failed to read clock offset", zap.Stringer("clock", kind), zap.Error(err))
	} else if v, perr := parseOffsetCurrent(cur); perr != nil {
		r.logger.Warn("Unparsable clock offset", zap.Stringer("clock", kind), zap.String("output", cur))
	} else {
		out.Current = v
	}

	full, err := r.querySettings(ctx, false, attr)
	if err != nil {
		r.logger.Warn("Failed to read clock offset range", zap.Stringer("clock", kind), zap.Error(err))
		return out
	}
	lo, hi, ok := ParseOffsetLimits(full, kind.attribute())
	if !ok {
		r.logger.Warn("Clock offset range not reported, using defaults",
			zap.Stringer("clock", kind), zap.Int("min", out.Min), zap.Int("max", out.Max))
		return out
	}
	out.Min, out.Max, out.Defaulted = lo, hi, false
	return out
}

// rejected answers a request refused before any command ran, carrying the
// last known state.
func (r *Reconciler) rejected(cat status.Category, msg string) Result {
	return Result{Category: cat, Message: msg, Snapshot: r.lastSnapshot()}
}

// ApplyPowerLimit sets the power limit in watts through pkexec nvidia-smi
// and re-reads the state afterwards. Non-positive values are refused
// without running anything.
func (r *Reconciler) ApplyPowerLimit(ctx context.Context, watts float64) Result {
	if math.IsNaN(watts) || math.IsInf(watts, 0) {
		return r.rejected(status.GenericFailure, "Invalid power limit value.")
	}
	// Checked after rounding: nvidia-smi receives the formatted value.
	w := formatWatts(watts)
	if v, err := strconv.ParseFloat(w, 64); err != nil || v <= 0 {
		return r.rejected(status.GenericFailure, "Invalid power limit value.")
	}
	if !r.op.TryLock() {
		return r.rejected(status.GenericFailure, "Another change is still being applied.")
	}
	defer r.op.Unlock()
	r.setState(StateApplying)

	cmd := r.esc.Interactive(runner.Command{
		Name:    r.opts.NvidiaSMI,
		Args:    []string{"-i", strconv.Itoa(r.opts.GPU), "-pl", w},
		Timeout: r.opts.ApplyTimeout,
	})
	res := r.run.Run(ctx, cmd)
	result := classifyApply(powerRules, applyInput{res: res, tool: cmd.Name, label: "Power limit", target: w + "W"})
	r.logResult(result, cmd)

	result.Snapshot = r.info(ctx)
	result.Refreshed = true
	return result
}

// ApplyClockOffset sets the offset of kind in MHz on every performance
// level. The write needs the caller's X session; when it cannot be
// resolved the request is refused without running anything.
func (r *Reconciler) ApplyClockOffset(ctx context.Context, kind ClockKind, mhz int) Result {
	if !kind.valid() {
		return r.rejected(status.GenericFailure, "Invalid clock type.")
	}
	sess, err := r.opts.Session()
	if err != nil {
		return r.rejected(status.AuthorizationRequired, fmt.Sprintf("Cannot reach the graphical session: %v.", err))
	}
	if !r.op.TryLock() {
		return r.rejected(status.GenericFailure, "Another change is still being applied.")
	}
	defer r.op.Unlock()
	r.setState(StateApplying)

	assign := fmt.Sprintf("[gpu:%d]/%sAllPerformanceLevels=%d", r.opts.GPU, kind.attribute(), mhz)
	cmd := r.esc.InteractiveInSession(runner.Command{
		Name:    r.opts.NvidiaSettings,
		Args:    []string{"-a", assign},
		Timeout: r.opts.ApplyTimeout,
	}, sess)
	res := r.run.Run(ctx, cmd)
	result := classifyApply(offsetRules, applyInput{
		res:    res,
		tool:   cmd.Name,
		label:  kind.label() + " offset",
		target: fmt.Sprintf("%d MHz", mhz),
	})
	r.logResult(result, cmd)

	result.Snapshot = r.info(ctx)
	result.Refreshed = true
	return result
}

func (r *Reconciler) logResult(result Result, cmd runner.Command) {
	if result.Success {
		r.logger.Info("Overclock change applied", zap.String("command", cmd.String()), zap.String("message", result.Message))
		return
	}
	r.logger.Error("Overclock change failed",
		zap.String("command", cmd.String()),
		zap.Stringer("category", result.Category),
		zap.String("message", result.Message))
}
