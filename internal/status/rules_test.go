package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Guliveer/gpuwatch/internal/models"
	"github.com/Guliveer/gpuwatch/internal/runner"
)

func TestClassifySensor(t *testing.T) {
	tests := []struct {
		name string
		res  runner.Result
		want models.VRAMReading
	}{
		{"reading", runner.Stdout("72\n"), models.VRAMCelsius(72)},
		{"zero is a reading", runner.Stdout("0"), models.VRAMCelsius(0)},
		{"helper missing", runner.Result{NotFound: true, ExitCode: -1}, models.VRAMUnavailable(models.SensorNoHelper)},
		{"timeout", runner.Result{TimedOut: true, ExitCode: -1}, models.VRAMUnavailable(models.SensorTimeout)},
		{"sudo needs password", runner.Exit(1, "sudo: a password is required\n"), models.VRAMUnavailable(models.SensorNoRoot)},
		{"mapping failed", runner.Exit(1, "Error: Memory mapping failed (at helper.c:130)\n  Check kernel parameters (e.g., iomem=relaxed) and ensure root privileges.\n"), models.VRAMUnavailable(models.SensorNotSupported)},
		{"dev mem open", runner.Exit(1, "Error: Could not open /dev/mem (at helper.c:90)"), models.VRAMUnavailable(models.SensorNoRoot)},
		{"negative sentinel", runner.Stdout("-1\n"), models.VRAMUnavailable(models.SensorNotSupported)},
		{"garbage", runner.Stdout("hot"), models.VRAMUnavailable(models.SensorParseError)},
		{"empty output", runner.Stdout(""), models.VRAMUnavailable(models.SensorParseError)},
		{"silent failure", runner.Exit(1, ""), models.VRAMUnavailable(models.SensorGenericError)},
		{"other failure", runner.Exit(2, "segfault"), models.VRAMUnavailable(models.SensorGenericError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySensor(tt.res))
		})
	}
}

func TestSensorRules_Precedence(t *testing.T) {
	// Both the password phrase and the mapping failure are present; the
	// authorization rule comes first.
	res := runner.Exit(1, "sudo: a password is required\nError: Memory mapping failed")
	assert.Equal(t, models.SensorNoRoot, ClassifySensor(res).Status)

	// Mapping failure outranks the /dev/mem rule.
	res = runner.Exit(1, "Memory mapping failed while reading /dev/mem")
	assert.Equal(t, models.SensorNotSupported, ClassifySensor(res).Status)

	// A timeout wins even if stderr carries other text.
	res = runner.Result{TimedOut: true, ExitCode: -1, Stderr: "Memory mapping failed"}
	assert.Equal(t, models.SensorTimeout, ClassifySensor(res).Status)
}

func TestSensorRules_Order(t *testing.T) {
	names := make([]string, 0, len(SensorRules))
	for _, r := range SensorRules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"binary-not-found",
		"timeout",
		"authorization",
		"memory-mapping-failed",
		"dev-mem",
		"negative-reading",
		"unparsable",
	}, names)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		res  runner.Result
		want Category
	}{
		{"success", runner.Stdout("ok"), OK},
		{"success with stderr", runner.Result{Stderr: "note"}, OK},
		{"not found", runner.Result{NotFound: true, ExitCode: -1}, ToolNotFound},
		{"timeout", runner.Result{TimedOut: true, ExitCode: -1}, Timeout},
		{"pkexec target missing", runner.Exit(127, ""), ToolNotFound},
		{"pkexec denied", runner.Exit(126, "Error executing command as another user: Not authorized"), AuthorizationRequired},
		{"x auth", runner.Exit(1, "Authorization required, but no authorization protocol specified"), AuthorizationRequired},
		{"attribute missing", runner.Exit(1, "ERROR: The attribute 'GPUGraphicsClockOffset' isn't available"), FeatureUnsupported},
		{"dev mem", runner.Exit(1, "cannot open /dev/mem"), AuthorizationRequired},
		{"generic", runner.Exit(9, "weird"), GenericFailure},
		{"start error", runner.Result{ExitCode: -1, Err: errors.New("fork failed")}, GenericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.res))
		})
	}
}

func TestFromResult(t *testing.T) {
	assert.NoError(t, FromResult("nvidia-smi", runner.Stdout("x")))

	err := FromResult("nvidia-smi", runner.Exit(6, "No devices were found\n"))
	assert.Error(t, err)
	assert.Equal(t, GenericFailure, CategoryOf(err))
	assert.Equal(t, "nvidia-smi: failure: exit code 6: No devices were found", err.Error())

	err = FromResult("nvidia-smi", runner.Result{NotFound: true, ExitCode: -1})
	assert.Equal(t, ToolNotFound, CategoryOf(err))

	wrapped := fmt.Errorf("query: %w", err)
	assert.Equal(t, ToolNotFound, CategoryOf(wrapped))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, OK, CategoryOf(nil))
	assert.Equal(t, GenericFailure, CategoryOf(errors.New("plain")))
	assert.Equal(t, ParseError, CategoryOf(Errorf(ParseError, "nvidia-smi", "bad line %q", "x")))
}

func TestSensorCategory(t *testing.T) {
	assert.Equal(t, ToolNotFound, SensorCategory(models.SensorNoHelper))
	assert.Equal(t, AuthorizationRequired, SensorCategory(models.SensorNoRoot))
	assert.Equal(t, FeatureUnsupported, SensorCategory(models.SensorNotSupported))
	assert.Equal(t, Timeout, SensorCategory(models.SensorTimeout))
	assert.Equal(t, ParseError, SensorCategory(models.SensorParseError))
	assert.Equal(t, GenericFailure, SensorCategory(models.SensorGenericError))
	assert.Equal(t, OK, SensorCategory(models.SensorOK))
}
