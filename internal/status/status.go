// Package status maps raw process outcomes onto the closed set of failure
// categories consumed by the presentation layer. Classification is driven by
// ordered rule tables; the first matching rule wins.
package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/runner"
)

// Category is the failure taxonomy shared by every component.
type Category int

const (
	OK Category = iota
	ToolNotFound
	Timeout
	AuthorizationRequired
	FeatureUnsupported
	ParseError
	GenericFailure
)

func (c Category) String() string {
	switch c {
	case OK:
		return "ok"
	case ToolNotFound:
		return "tool not found"
	case Timeout:
		return "timeout"
	case AuthorizationRequired:
		return "authorization required"
	case FeatureUnsupported:
		return "feature unsupported"
	case ParseError:
		return "parse error"
	case GenericFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure of an external tool or of parsing its output.
type Error struct {
	Category Category
	Tool     string
	Detail   string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Category)
	}
	return fmt.Sprintf("%s: %s: %s", e.Tool, e.Category, e.Detail)
}

// Errorf builds an Error with a formatted detail.
func Errorf(cat Category, tool, format string, args ...any) *Error {
	return &Error{Category: cat, Tool: tool, Detail: fmt.Sprintf(format, args...)}
}

// CategoryOf extracts the category of err. Unclassified errors are
// GenericFailure; nil is OK.
func CategoryOf(err error) Category {
	if err == nil {
		return OK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Category
	}
	return GenericFailure
}

// FromResult classifies res and wraps it in an Error, or returns nil when
// the command succeeded.
func FromResult(tool string, res runner.Result) error {
	cat := Classify(res)
	if cat == OK {
		return nil
	}
	return &Error{Category: cat, Tool: tool, Detail: describe(res)}
}

// describe summarises a failed result in one line.
func describe(res runner.Result) string {
	switch {
	case res.NotFound:
		return "executable not found"
	case res.TimedOut:
		return "command timed out"
	case res.Err != nil:
		return res.Err.Error()
	}
	stderr := strings.TrimSpace(res.Stderr)
	if stderr == "" {
		return fmt.Sprintf("exit code %d", res.ExitCode)
	}
	return fmt.Sprintf("exit code %d: %s", res.ExitCode, stderr)
}
