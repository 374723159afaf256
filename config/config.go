// Package config provides configuration management for the VPN Switcher
// daemon. It handles loading, saving, and validating daemon settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-switcher/common"
)

// Config represents the daemon configuration. All settings are persisted to
// a YAML file in the user's config directory; the trust policy lives in its
// own file so the daemon can reload it per cycle.
type Config struct {
	// LogLevel sets the minimum log severity: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the log encoder: text or json.
	LogFormat string `yaml:"log_format"`
	// LogFile enables logging to a rotating file in the config directory.
	LogFile bool `yaml:"log_file"`
	// DebounceSeconds is how long change notifications are coalesced before
	// a switch cycle starts. Zero evaluates immediately.
	DebounceSeconds int `yaml:"debounce_seconds"`
	// ShowNotifications enables desktop notifications for tunnel switches.
	ShowNotifications bool `yaml:"show_notifications"`
	// MetricsAddress exposes Prometheus metrics when set, e.g.
	// "127.0.0.1:9341". Empty disables the endpoint.
	MetricsAddress string `yaml:"metrics_address,omitempty"`
	// ReachabilityURL switches the reachability probe from the
	// NetworkManager connectivity check to an HTTP endpoint expected to
	// answer 204 No Content.
	ReachabilityURL string `yaml:"reachability_url,omitempty"`
	// PolicyPath overrides where the trust policy file lives.
	PolicyPath string `yaml:"policy_path,omitempty"`
}

// DefaultConfig returns the default configuration.
// These are sensible defaults for most users.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		LogFile:           true,
		DebounceSeconds:   int(common.DebounceDelay / time.Second),
		ShowNotifications: true,
	}
}

// Debounce returns the debounce delay as a duration.
func (c *Config) Debounce() time.Duration {
	if c.DebounceSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DebounceSeconds) * time.Second
}

// Load loads the configuration from path, or from the default location when
// path is empty. If the file doesn't exist, it creates one with default
// values. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	// Decoding over the defaults keeps them for keys the file omits.
	cfg := DefaultConfig()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	return cfg, nil
}

// validate verifies that configuration values are valid
func (c *Config) validate() error {
	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !common.StringInSlice(strings.ToLower(c.LogLevel), validLevels) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	format := strings.ToLower(c.LogFormat)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log_format %q, expected text or json", c.LogFormat)
	}

	if c.DebounceSeconds < 0 {
		return fmt.Errorf("debounce_seconds must not be negative")
	}
	return nil
}

// Save saves the configuration to path, or to the default location when
// path is empty.
func (c *Config) Save(path string) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return common.DefaultConfigPath()
}
