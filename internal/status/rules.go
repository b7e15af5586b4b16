package status

import (
	"strconv"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/runner"
)

// Outcome is what a rule looks at: the raw process result plus, for the
// sensor helper, the parsed integer on stdout.
type Outcome struct {
	Result   runner.Result
	Value    int
	ParseErr error
}

// Failed reports whether the process did not exit cleanly.
func (o Outcome) Failed() bool {
	return o.Result.ExitCode != 0 || o.Result.Err != nil
}

// StderrHas reports whether stderr contains any needle, ignoring case.
func (o Outcome) StderrHas(needles ...string) bool {
	s := strings.ToLower(o.Result.Stderr)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Rule pairs a predicate with the outcome it selects.
type Rule[T any] struct {
	Name   string
	Match  func(Outcome) bool
	Result T
}

// First evaluates rules in order and returns the result of the first match.
func First[T any](rules []Rule[T], o Outcome) (T, bool) {
	for _, r := range rules {
		if r.Match(o) {
			return r.Result, true
		}
	}
	var zero T
	return zero, false
}

// authPhrases are substrings (lower case) emitted by sudo, pkexec and the
// X server when an authorization check fails.
var authPhrases = []string{
	"password is required",
	"a terminal is required",
	"incorrect password",
	"not in the sudoers",
	"authorization required",
	"not authorized",
	"authentication failed",
	"no authorization protocol",
}

// SensorRules classifies the secondary temperature helper. Order matters:
// it separates operator-fixable permission problems from permanent
// incompatibilities.
var SensorRules = []Rule[models.SensorStatus]{
	{
		Name:   "binary-not-found",
		Match:  func(o Outcome) bool { return o.Result.NotFound },
		Result: models.SensorNoHelper,
	},
	{
		Name:   "timeout",
		Match:  func(o Outcome) bool { return o.Result.TimedOut },
		Result: models.SensorTimeout,
	},
	{
		Name:   "authorization",
		Match:  func(o Outcome) bool { return o.Failed() && o.StderrHas(authPhrases...) },
		Result: models.SensorNoRoot,
	},
	{
		Name:   "memory-mapping-failed",
		Match:  func(o Outcome) bool { return o.Failed() && o.StderrHas("memory mapping failed") },
		Result: models.SensorNotSupported,
	},
	{
		Name:   "dev-mem",
		Match:  func(o Outcome) bool { return o.Failed() && o.StderrHas("/dev/mem") },
		Result: models.SensorNoRoot,
	},
	{
		Name:   "negative-reading",
		Match:  func(o Outcome) bool { return !o.Failed() && o.ParseErr == nil && o.Value < 0 },
		Result: models.SensorNotSupported,
	},
	{
		Name:   "unparsable",
		Match:  func(o Outcome) bool { return !o.Failed() && o.ParseErr != nil },
		Result: models.SensorParseError,
	},
}

// ClassifySensor turns one helper invocation into a reading.
func ClassifySensor(res runner.Result) models.VRAMReading {
	o := Outcome{Result: res}
	o.Value, o.ParseErr = strconv.Atoi(strings.TrimSpace(res.Stdout))

	if st, ok := First(SensorRules, o); ok {
		return models.VRAMUnavailable(st)
	}
	if o.Failed() {
		return models.VRAMUnavailable(models.SensorGenericError)
	}
	return models.VRAMCelsius(o.Value)
}

// ToolRules classifies vendor tool invocations, including those routed
// through a privilege-escalation wrapper (pkexec exits 127 when it cannot
// run the target and 126 when authorization is refused).
var ToolRules = []Rule[Category]{
	{
		Name:   "binary-not-found",
		Match:  func(o Outcome) bool { return o.Result.NotFound },
		Result: ToolNotFound,
	},
	{
		Name:   "timeout",
		Match:  func(o Outcome) bool { return o.Result.TimedOut },
		Result: Timeout,
	},
	{
		Name:   "wrapper-target-missing",
		Match:  func(o Outcome) bool { return o.Result.ExitCode == 127 },
		Result: ToolNotFound,
	},
	{
		Name:   "wrapper-denied",
		Match:  func(o Outcome) bool { return o.Result.ExitCode == 126 },
		Result: AuthorizationRequired,
	},
	{
		Name:   "authorization",
		Match:  func(o Outcome) bool { return o.Failed() && o.StderrHas(authPhrases...) },
		Result: AuthorizationRequired,
	},
	{
		Name: "unsupported",
		Match: func(o Outcome) bool {
			return o.Failed() && o.StderrHas("memory mapping failed", "not supported", "not available", "isn't available")
		},
		Result: FeatureUnsupported,
	},
	{
		Name:   "dev-mem",
		Match:  func(o Outcome) bool { return o.Failed() && o.StderrHas("/dev/mem") },
		Result: AuthorizationRequired,
	},
	{
		Name:   "failed",
		Match:  func(o Outcome) bool { return o.Failed() },
		Result: GenericFailure,
	},
}

// Classify returns the category of a vendor tool invocation, OK on success.
func Classify(res runner.Result) Category {
	if cat, ok := First(ToolRules, Outcome{Result: res}); ok {
		return cat
	}
	return OK
}

// SensorCategory maps a sensor token onto the shared taxonomy.
func SensorCategory(s models.SensorStatus) Category {
	switch s {
	case models.SensorOK:
		return OK
	case models.SensorNoHelper:
		return ToolNotFound
	case models.SensorTimeout:
		return Timeout
	case models.SensorNoRoot:
		return AuthorizationRequired
	case models.SensorNotSupported:
		return FeatureUnsupported
	case models.SensorParseError:
		return ParseError
	default:
		return GenericFailure
	}
}
