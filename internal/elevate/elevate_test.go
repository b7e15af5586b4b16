package elevate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/gpuwatch/internal/runner"
)

func wrapperAs(uid int) Wrapper {
	w := New("sudo", "pkexec", "env")
	w.euid = func() int { return uid }
	return w
}

func TestNonInteractive(t *testing.T) {
	cmd := runner.Command{Name: "/opt/gpuwatch/vramtemp-helper", Timeout: 3 * time.Second}

	got := wrapperAs(1000).NonInteractive(cmd)

	assert.Equal(t, "sudo", got.Name)
	assert.Equal(t, []string{"-n", "/opt/gpuwatch/vramtemp-helper"}, got.Args)
	assert.Equal(t, 3*time.Second, got.Timeout)
}

func TestInteractive(t *testing.T) {
	cmd := runner.Command{Name: "nvidia-smi", Args: []string{"-i", "0", "-pl", "150"}}

	got := wrapperAs(1000).Interactive(cmd)

	assert.Equal(t, "pkexec", got.Name)
	assert.Equal(t, []string{"nvidia-smi", "-i", "0", "-pl", "150"}, got.Args)
	// The original command is untouched.
	assert.Equal(t, []string{"-i", "0", "-pl", "150"}, cmd.Args)
}

func TestInteractiveInSession(t *testing.T) {
	cmd := runner.Command{Name: "nvidia-settings", Args: []string{"-a", "[gpu:0]/GPUGraphicsClockOffsetAllPerformanceLevels=100"}}
	s := Session{Display: ":0", XAuthority: "/home/u/.Xauthority"}

	got := wrapperAs(1000).InteractiveInSession(cmd, s)

	assert.Equal(t, "pkexec", got.Name)
	assert.Equal(t, []string{
		"env", "DISPLAY=:0", "XAUTHORITY=/home/u/.Xauthority",
		"nvidia-settings", "-a", "[gpu:0]/GPUGraphicsClockOffsetAllPerformanceLevels=100",
	}, got.Args)
}

func TestRootSkipsWrapper(t *testing.T) {
	w := wrapperAs(0)
	cmd := runner.Command{Name: "nvidia-settings", Args: []string{"-a", "x=1"}}

	assert.Equal(t, cmd, w.NonInteractive(cmd))
	assert.Equal(t, cmd, w.Interactive(cmd))

	got := w.InteractiveInSession(cmd, Session{Display: ":1", XAuthority: "/x"})
	assert.Equal(t, "nvidia-settings", got.Name)
	assert.Equal(t, []string{"DISPLAY=:1", "XAUTHORITY=/x"}, got.Env)
}

func fakeEnv(vars map[string]string, home string, files ...string) Env {
	existing := make(map[string]bool)
	for _, f := range files {
		existing[f] = true
	}
	return Env{
		Getenv: func(k string) string { return vars[k] },
		Home:   home,
		Exists: func(p string) bool { return existing[p] },
	}
}

func TestResolveSession(t *testing.T) {
	s, err := ResolveSession(fakeEnv(map[string]string{"DISPLAY": ":0", "XAUTHORITY": "/run/user/1000/gdm/Xauthority"}, "/home/u"))
	require.NoError(t, err)
	assert.Equal(t, Session{Display: ":0", XAuthority: "/run/user/1000/gdm/Xauthority"}, s)
}

func TestResolveSession_XAuthorityFallback(t *testing.T) {
	s, err := ResolveSession(fakeEnv(map[string]string{"DISPLAY": ":0"}, "/home/u", "/home/u/.Xauthority"))
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.Xauthority", s.XAuthority)
}

func TestResolveSession_Errors(t *testing.T) {
	_, err := ResolveSession(fakeEnv(map[string]string{"XAUTHORITY": "/x"}, "/home/u"))
	assert.ErrorIs(t, err, ErrNoDisplay)

	_, err = ResolveSession(fakeEnv(map[string]string{"DISPLAY": ":0"}, "/home/u"))
	assert.ErrorIs(t, err, ErrNoXAuthority)
}
