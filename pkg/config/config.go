package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for activity-monitor
type Config struct {
	// Session timing
	TotalRuntime  time.Duration `yaml:"total_runtime" env:"ACTIVITY_MONITOR_TOTAL_RUNTIME"`
	Timeout       time.Duration `yaml:"timeout" env:"ACTIVITY_MONITOR_TIMEOUT"`
	CheckInterval time.Duration `yaml:"check_interval" env:"ACTIVITY_MONITOR_CHECK_INTERVAL"`
	LogPeriod     time.Duration `yaml:"log_period" env:"ACTIVITY_MONITOR_LOG_PERIOD"`

	// Screen sampling
	Region          Region     `yaml:"region"`
	Resolution      Resolution `yaml:"resolution"`
	MotionThreshold float64    `yaml:"motion_threshold" env:"ACTIVITY_MONITOR_MOTION_THRESHOLD"`
	DiffThreshold   int        `yaml:"diff_threshold" env:"ACTIVITY_MONITOR_DIFF_THRESHOLD"`

	// Presence
	Username      string `yaml:"username" env:"ACTIVITY_MONITOR_USERNAME"`
	PresenceCheck bool   `yaml:"presence_check" env:"ACTIVITY_MONITOR_PRESENCE_CHECK"`
	UtmpPath      string `yaml:"utmp_path"`

	// Persistence
	StorePath string `yaml:"store_path" env:"ACTIVITY_MONITOR_STORE"`

	// Output
	StatusLine bool   `yaml:"status_line" env:"ACTIVITY_MONITOR_STATUS_LINE"`
	Quiet      bool   `yaml:"quiet" env:"ACTIVITY_MONITOR_QUIET"`
	LogLevel   string `yaml:"log_level" env:"ACTIVITY_MONITOR_LOG_LEVEL"`
	LogFormat  string `yaml:"log_format" env:"ACTIVITY_MONITOR_LOG_FORMAT"`
	LogFile    string `yaml:"log_file" env:"ACTIVITY_MONITOR_LOG_FILE"`
}

// Region is a capture rectangle in screen coordinates.
// A zero width or height means "centered half of the screen".
type Region struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// IsZero reports whether the region was left unset.
func (r Region) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

// Resolution is the fixed size samples are normalized to.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TotalRuntime:    30 * time.Minute,
		Timeout:         5 * time.Minute,
		CheckInterval:   10 * time.Second,
		LogPeriod:       5 * time.Minute,
		Resolution:      Resolution{Width: 800, Height: 600},
		MotionThreshold: 0.95,
		DiffThreshold:   55,
		PresenceCheck:   true,
		UtmpPath:        "/var/run/utmp",
		StatusLine:      true,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("ACTIVITY_MONITOR_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "activity-monitor", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "activity-monitor", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"ACTIVITY_MONITOR_TOTAL_RUNTIME", &cfg.TotalRuntime},
		{"ACTIVITY_MONITOR_TIMEOUT", &cfg.Timeout},
		{"ACTIVITY_MONITOR_CHECK_INTERVAL", &cfg.CheckInterval},
		{"ACTIVITY_MONITOR_LOG_PERIOD", &cfg.LogPeriod},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ACTIVITY_MONITOR_PRESENCE_CHECK", &cfg.PresenceCheck},
		{"ACTIVITY_MONITOR_STATUS_LINE", &cfg.StatusLine},
		{"ACTIVITY_MONITOR_QUIET", &cfg.Quiet},
	}
	for _, b := range bools {
		if v := os.Getenv(b.key); v != "" {
			switch v {
			case "true", "1", "yes":
				*b.dst = true
			case "false", "0", "no":
				*b.dst = false
			default:
				return fmt.Errorf("invalid %s value: %q (use true/false)", b.key, v)
			}
		}
	}

	if v := os.Getenv("ACTIVITY_MONITOR_MOTION_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ACTIVITY_MONITOR_MOTION_THRESHOLD: %w", err)
		}
		cfg.MotionThreshold = f
	}

	if v := os.Getenv("ACTIVITY_MONITOR_DIFF_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ACTIVITY_MONITOR_DIFF_THRESHOLD: %w", err)
		}
		cfg.DiffThreshold = n
	}

	if v := os.Getenv("ACTIVITY_MONITOR_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("ACTIVITY_MONITOR_STORE"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("ACTIVITY_MONITOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ACTIVITY_MONITOR_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ACTIVITY_MONITOR_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return nil
}

// Validate checks the configuration. It runs after command line flags have
// been applied on top of Load.
func (c *Config) Validate() error {
	if c.TotalRuntime <= 0 {
		return fmt.Errorf("total_runtime must be positive")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive")
	}

	if c.LogPeriod <= 0 {
		return fmt.Errorf("log_period must be positive")
	}

	if c.MotionThreshold <= 0 || c.MotionThreshold > 1 {
		return fmt.Errorf("motion_threshold must be in (0, 1], got %v", c.MotionThreshold)
	}

	if c.DiffThreshold < 1 || c.DiffThreshold > 255 {
		return fmt.Errorf("diff_threshold must be in [1, 255], got %d", c.DiffThreshold)
	}

	if c.Resolution.Width <= 0 || c.Resolution.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", c.Resolution.Width, c.Resolution.Height)
	}

	if c.Region.X < 0 || c.Region.Y < 0 || c.Region.Width < 0 || c.Region.Height < 0 {
		return fmt.Errorf("region must be non-negative")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	return nil
}
