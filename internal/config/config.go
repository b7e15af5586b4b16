// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "1s", "500ms", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all gpuwatch configuration.
type Config struct {
	GPU      GPUConfig      `yaml:"gpu"`
	Poll     PollConfig     `yaml:"poll"`
	Tools    ToolsConfig    `yaml:"tools"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GPUConfig selects the device and the performance level offsets are read at.
type GPUConfig struct {
	Index            int `yaml:"index"`
	PerformanceLevel int `yaml:"performance_level"`
}

// PollConfig holds telemetry polling settings.
type PollConfig struct {
	Interval Duration `yaml:"interval"`
}

// ToolsConfig names the external executables. Bare names are looked up in PATH.
type ToolsConfig struct {
	NvidiaSMI      string `yaml:"nvidia_smi"`
	NvidiaSettings string `yaml:"nvidia_settings"`
	Pkexec         string `yaml:"pkexec"`
	Sudo           string `yaml:"sudo"`
	Env            string `yaml:"env"`
	VRAMHelper     string `yaml:"vram_helper"`
}

// TimeoutsConfig bounds each kind of external command.
type TimeoutsConfig struct {
	Query    Duration `yaml:"query"`
	Settings Duration `yaml:"settings"`
	Helper   Duration `yaml:"helper"`
	Apply    Duration `yaml:"apply"`
}

// LoggingConfig holds logging settings. An empty File disables the JSON log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GPU: GPUConfig{
			Index:            0,
			PerformanceLevel: 3,
		},
		Poll: PollConfig{
			Interval: Duration{1 * time.Second},
		},
		Tools: ToolsConfig{
			NvidiaSMI:      "nvidia-smi",
			NvidiaSettings: "nvidia-settings",
			Pkexec:         "pkexec",
			Sudo:           "sudo",
			Env:            "env",
			VRAMHelper:     "gddr6-vram-temp",
		},
		Timeouts: TimeoutsConfig{
			Query:    Duration{5 * time.Second},
			Settings: Duration{10 * time.Second},
			Helper:   Duration{3 * time.Second},
			Apply:    Duration{20 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	GPUIndex *int
	Interval time.Duration
	LogLevel string
	LogFile  string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.GPUIndex != nil {
		cfg.GPU.Index = *cli.GPUIndex
	}
	if cli.Interval > 0 {
		cfg.Poll.Interval = Duration{cli.Interval}
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFile != "" {
		cfg.Logging.File = cli.LogFile
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies GPUWATCH_* environment variable overrides.
func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("GPUWATCH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if v := os.Getenv("GPUWATCH_GPU_INDEX"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GPUWATCH_GPU_INDEX: invalid index %q", v)
		}
		cfg.GPU.Index = idx
	}
	if v := os.Getenv("GPUWATCH_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GPUWATCH_POLL_INTERVAL: %w", err)
		}
		cfg.Poll.Interval = Duration{d}
	}
	if helper := os.Getenv("GPUWATCH_VRAM_HELPER"); helper != "" {
		cfg.Tools.VRAMHelper = helper
	}
	return nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if c.GPU.Index < 0 {
		return fmt.Errorf("gpu index must not be negative (got %d)", c.GPU.Index)
	}
	if c.GPU.PerformanceLevel < 0 {
		return fmt.Errorf("gpu performance level must not be negative (got %d)", c.GPU.PerformanceLevel)
	}
	if c.Poll.Interval.Duration <= 0 {
		return fmt.Errorf("poll interval must be positive (got %s)", c.Poll.Interval.Duration)
	}

	timeouts := map[string]time.Duration{
		"query":    c.Timeouts.Query.Duration,
		"settings": c.Timeouts.Settings.Duration,
		"helper":   c.Timeouts.Helper.Duration,
		"apply":    c.Timeouts.Apply.Duration,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive (got %s)", name, d)
		}
	}

	tools := map[string]string{
		"nvidia_smi":      c.Tools.NvidiaSMI,
		"nvidia_settings": c.Tools.NvidiaSettings,
		"pkexec":          c.Tools.Pkexec,
		"sudo":            c.Tools.Sudo,
		"env":             c.Tools.Env,
		"vram_helper":     c.Tools.VRAMHelper,
	}
	for name, v := range tools {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("tools.%s must not be empty", name)
		}
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	return nil
}

// Scope selects where InitPath points.
type Scope int

const (
	ScopeUser Scope = iota
	ScopeSystem
)

// InitPath returns the file "config init" writes for scope. It is always
// one of the paths Locate searches.
func InitPath(scope Scope) (string, error) {
	paths := configSearchPaths()
	if len(paths) == 0 {
		return "", fmt.Errorf("no config location available")
	}
	if scope == ScopeSystem {
		return paths[len(paths)-1], nil
	}
	return paths[0], nil
}
