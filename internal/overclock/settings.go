package overclock

import (
	"strings"

	"github.com/Guliveer/gpuwatch/internal/runner"
	"github.com/Guliveer/gpuwatch/internal/status"
)

// settingsFailure is what a failed nvidia-settings read is reported as.
type settingsFailure struct {
	Category status.Category
	Detail   string
}

// settingsRules map nvidia-settings stderr onto a failure. The last rule
// matches any failed run and reports its stderr verbatim.
var settingsRules = []status.Rule[settingsFailure]{
	{
		Name:   "not-found",
		Match:  func(o status.Outcome) bool { return o.Result.NotFound },
		Result: settingsFailure{status.ToolNotFound, "nvidia-settings not found"},
	},
	{
		Name:   "timeout",
		Match:  func(o status.Outcome) bool { return o.Result.TimedOut },
		Result: settingsFailure{status.Timeout, "nvidia-settings timed out"},
	},
	{
		Name: "attribute-not-available",
		Match: func(o status.Outcome) bool {
			return o.StderrHas("attribute") && o.StderrHas("not available", "isn't available")
		},
		Result: settingsFailure{status.FeatureUnsupported, "attribute not available"},
	},
	{
		Name:   "target-missing",
		Match:  func(o status.Outcome) bool { return o.StderrHas("does not exist") },
		Result: settingsFailure{status.FeatureUnsupported, "target does not exist"},
	},
	{
		Name:   "x-connection",
		Match:  func(o status.Outcome) bool { return o.StderrHas("failed to connect", "unable to init server", "cannot open display") },
		Result: settingsFailure{status.GenericFailure, "X server connection failed"},
	},
	{
		Name:   "control-display",
		Match:  func(o status.Outcome) bool { return o.StderrHas("control display is undefined") },
		Result: settingsFailure{status.GenericFailure, "control display is undefined"},
	},
}

// settingsError classifies a finished nvidia-settings run; nil on success.
func settingsError(res runner.Result) error {
	o := status.Outcome{Result: res}
	if !res.NotFound && !res.TimedOut && !o.Failed() {
		return nil
	}
	if f, ok := status.First(settingsRules, o); ok {
		return &status.Error{Category: f.Category, Tool: "nvidia-settings", Detail: f.Detail}
	}
	detail := strings.TrimSpace(res.Stderr)
	if detail == "" && res.Err != nil {
		detail = res.Err.Error()
	}
	return &status.Error{Category: status.GenericFailure, Tool: "nvidia-settings", Detail: detail}
}
