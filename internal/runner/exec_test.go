package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecRunner_Success(t *testing.T) {
	r := NewExecRunner(nil)

	res := r.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo hello; echo warn >&2"},
		Timeout: 5 * time.Second,
	})

	assert.True(t, res.Ok())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
	assert.Equal(t, "warn", strings.TrimSpace(res.Stderr))
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(nil)

	res := r.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
		Timeout: 5 * time.Second,
	})

	assert.False(t, res.Ok())
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.False(t, res.NotFound)
	assert.Equal(t, "boom", strings.TrimSpace(res.Stderr))
}

func TestExecRunner_NotFound(t *testing.T) {
	r := NewExecRunner(nil)

	tests := []string{
		"definitely-not-a-real-binary-gpuwatch",
		"/nonexistent/dir/tool",
	}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			res := r.Run(context.Background(), Command{Name: name, Timeout: time.Second})
			assert.True(t, res.NotFound)
			assert.Equal(t, -1, res.ExitCode)
			assert.False(t, res.Ok())
		})
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	r := NewExecRunner(nil)

	start := time.Now()
	res := r.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 100 * time.Millisecond,
	})

	assert.True(t, res.TimedOut)
	assert.False(t, res.Ok())
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecRunner_ExtraEnv(t *testing.T) {
	r := NewExecRunner(nil)

	res := r.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "printf %s \"$GPUWATCH_TEST_VAR\""},
		Env:     []string{"GPUWATCH_TEST_VAR=set"},
		Timeout: 5 * time.Second,
	})

	assert.Equal(t, "set", res.Stdout)
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "nvidia-smi", Args: []string{"-i", "0", "-pl", "150"}}
	assert.Equal(t, "nvidia-smi -i 0 -pl 150", c.String())
}

func TestFake_RecordsCalls(t *testing.T) {
	f := NewFake(func(cmd Command) Result {
		if cmd.Name == "fail" {
			return Exit(1, "nope")
		}
		return Stdout("ok")
	})

	ok := f.Run(context.Background(), Command{Name: "pass"})
	bad := f.Run(context.Background(), Command{Name: "fail"})

	assert.Equal(t, "ok", ok.Stdout)
	assert.Equal(t, 1, bad.ExitCode)
	assert.Equal(t, 2, f.CallCount())
	assert.Equal(t, "fail", f.Calls()[1].Name)
}
