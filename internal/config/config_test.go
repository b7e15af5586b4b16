package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("gpu:\n  index: 1\npoll:\n  interval: 2s\n")
	t.Setenv("GPUWATCH_GPU_INDEX", "2")
	idx := 3
	cli := CLIOverrides{GPUIndex: &idx, Interval: 500 * time.Millisecond}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GPU.Index != 3 {
		t.Errorf("GPU.Index = %d, want CLI override", cfg.GPU.Index)
	}
	if cfg.Poll.Interval.Duration != 500*time.Millisecond {
		t.Errorf("Interval = %v, want CLI override", cfg.Poll.Interval.Duration)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("gpu:\n  index: 1\nlogging:\n  level: warn\n")
	t.Setenv("GPUWATCH_GPU_INDEX", "2")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GPU.Index != 2 {
		t.Errorf("GPU.Index = %d, want env override", cfg.GPU.Index)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want embedded value", cfg.Logging.Level)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  vram_helper: /opt/vram\n"), 0644); err != nil {
		t.Fatal(err)
	}
	embedded := []byte("tools:\n  vram_helper: embedded-helper\n")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tools.VRAMHelper != "/opt/vram" {
		t.Errorf("VRAMHelper = %q, want file value", cfg.Tools.VRAMHelper)
	}
	if cfg.Tools.NvidiaSMI != "nvidia-smi" {
		t.Errorf("NvidiaSMI = %q, want default", cfg.Tools.NvidiaSMI)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Poll.Interval.Duration != time.Second {
		t.Errorf("Interval = %v, want 1s default", cfg.Poll.Interval.Duration)
	}
	if cfg.GPU.PerformanceLevel != 3 {
		t.Errorf("PerformanceLevel = %d, want 3", cfg.GPU.PerformanceLevel)
	}
	if cfg.Timeouts.Apply.Duration != 20*time.Second {
		t.Errorf("Apply timeout = %v, want 20s", cfg.Timeouts.Apply.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLayered_BadEnv(t *testing.T) {
	t.Setenv("GPUWATCH_POLL_INTERVAL", "fast")
	if _, err := LoadLayered(CLIOverrides{}, nil, ""); err == nil {
		t.Error("expected error for malformed GPUWATCH_POLL_INTERVAL")
	}
}

func TestLoadFromBytes_BadDuration(t *testing.T) {
	_, err := LoadFromBytes([]byte("timeouts:\n  query: soon\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("err = %v, want invalid duration", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative index", func(c *Config) { c.GPU.Index = -1 }, "gpu index"},
		{"zero interval", func(c *Config) { c.Poll.Interval = Duration{} }, "poll interval"},
		{"zero timeout", func(c *Config) { c.Timeouts.Apply = Duration{} }, "timeouts.apply"},
		{"empty tool", func(c *Config) { c.Tools.Pkexec = " " }, "tools.pkexec"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.GPU.Index = 1
	cfg.Poll.Interval = Duration{250 * time.Millisecond}

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.GPU.Index != 1 || got.Poll.Interval.Duration != 250*time.Millisecond {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestInitPath_IsSearched(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	user, err := InitPath(ScopeUser)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(user, filepath.Join("gpuwatch", "config.yaml")) {
		t.Errorf("user path = %q", user)
	}

	if err := WriteConfig(DefaultConfig(), user); err != nil {
		t.Fatal(err)
	}
	if got := Locate(); got != user {
		t.Errorf("Locate() = %q, want %q", got, user)
	}
}
