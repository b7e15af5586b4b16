package overclock

import (
	"fmt"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// applyInput is what the apply rules look at.
type applyInput struct {
	res    runner.Result
	tool   string // executable that was spawned
	label  string // "Power limit", "Core offset", ...
	target string // formatted value with unit
}

func (in applyInput) stderr() string {
	return strings.TrimSpace(in.res.Stderr)
}

func (in applyInput) stderrHas(needles ...string) bool {
	return status.Outcome{Result: in.res}.StderrHas(needles...)
}

func (in applyInput) exited(code int) bool {
	return !in.res.NotFound && !in.res.TimedOut && in.res.Err == nil && in.res.ExitCode == code
}

// applyRule is one row of an apply classification table.
type applyRule struct {
	name    string
	match   func(in applyInput) bool
	success bool
	cat     status.Category
	message func(in applyInput) string
}

func classifyApply(rules []applyRule, in applyInput) Result {
	for _, r := range rules {
		if r.match(in) {
			return Result{Success: r.success, Category: r.cat, Message: r.message(in)}
		}
	}
	return Result{
		Category: status.GenericFailure,
		Message:  fmt.Sprintf("Failed to set %s. Code: %d. Stderr: %s", strings.ToLower(in.label), in.res.ExitCode, in.stderr()),
	}
}

// Rows shared by both apply tables.
var (
	ruleSpawnFailed = applyRule{
		name:    "not-found",
		match:   func(in applyInput) bool { return in.res.NotFound },
		cat:     status.ToolNotFound,
		message: func(in applyInput) string { return fmt.Sprintf("Command '%s' not found.", in.tool) },
	}
	ruleTimedOut = applyRule{
		name:    "timeout",
		match:   func(in applyInput) bool { return in.res.TimedOut },
		cat:     status.Timeout,
		message: func(in applyInput) string { return fmt.Sprintf("%s command timed out.", in.label) },
	}
	ruleTargetMissing = applyRule{
		name:    "wrapper-target-missing",
		match:   func(in applyInput) bool { return in.exited(127) },
		cat:     status.ToolNotFound,
		message: func(in applyInput) string { return "pkexec or the target tool was not found." },
	}
	ruleDenied = applyRule{
		name:    "wrapper-denied",
		match:   func(in applyInput) bool { return in.exited(126) },
		cat:     status.AuthorizationRequired,
		message: func(in applyInput) string { return "pkexec authorization failed or was cancelled." },
	}
	ruleClean = applyRule{
		name:    "clean",
		match:   func(in applyInput) bool { return in.exited(0) && in.stderr() == "" },
		success: true,
		message: func(in applyInput) string { return fmt.Sprintf("%s set to %s.", in.label, in.target) },
	}
	ruleWarnings = applyRule{
		name:    "warnings",
		match:   func(in applyInput) bool { return in.exited(0) },
		success: true,
		message: func(in applyInput) string {
			return fmt.Sprintf("%s set to %s (warnings: %s).", in.label, in.target, in.stderr())
		},
	}
)

var powerRules = []applyRule{
	ruleSpawnFailed,
	ruleTimedOut,
	{
		name:    "confirmed",
		match:   func(in applyInput) bool { return in.exited(0) && strings.Contains(strings.ToLower(in.res.Stdout), "successfully") },
		success: true,
		message: func(in applyInput) string { return fmt.Sprintf("Power limit set to %s.", in.target) },
	},
	{
		name:    "unconfirmed",
		match:   func(in applyInput) bool { return in.exited(0) && in.stderr() == "" },
		success: true,
		message: func(in applyInput) string { return fmt.Sprintf("Power limit command executed for %s.", in.target) },
	},
	ruleWarnings,
	ruleTargetMissing,
	ruleDenied,
	{
		name:    "persistence-mode",
		match:   func(in applyInput) bool { return in.stderrHas("persistence mode is disabled") },
		cat:     status.FeatureUnsupported,
		message: func(in applyInput) string { return "Persistence Mode must be enabled to change the power limit." },
	},
}

// xAuthSuccessPhrases show up on stderr with exit status 0 when
// nvidia-settings could not authenticate against X and changed nothing.
var xAuthSuccessPhrases = []string{"authorization required", "no authorization protocol specified"}

var offsetRules = []applyRule{
	ruleSpawnFailed,
	ruleTimedOut,
	{
		name:  "x-auth-silent",
		match: func(in applyInput) bool { return in.exited(0) && in.stderrHas(xAuthSuccessPhrases...) },
		cat:   status.AuthorizationRequired,
		message: func(in applyInput) string {
			return fmt.Sprintf("X authentication failed, offset not applied. Stderr: %s", in.stderr())
		},
	},
	ruleClean,
	ruleWarnings,
	ruleTargetMissing,
	ruleDenied,
	{
		name:  "x-auth",
		match: func(in applyInput) bool { return in.stderrHas("authorization required", "cannot open display") },
		cat:   status.AuthorizationRequired,
		message: func(in applyInput) string {
			return fmt.Sprintf("X authentication failed. Stderr: %s", in.stderr())
		},
	},
	{
		name: "attribute-not-available",
		match: func(in applyInput) bool {
			return in.stderrHas("attribute") && in.stderrHas("not available", "isn't available")
		},
		cat:     status.FeatureUnsupported,
		message: func(in applyInput) string { return "Attribute not available. Is Coolbits enabled?" },
	},
	{
		name:  "invalid-value",
		match: func(in applyInput) bool { return in.stderrHas("valid values") },
		cat:   status.GenericFailure,
		message: func(in applyInput) string {
			return fmt.Sprintf("Invalid value %s. %s", in.target, in.stderr())
		},
	},
}

func formatWatts(w float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", w), "0"), ".")
}
