package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DatabasePath string `yaml:"database_path"`
	LogLevel     string `yaml:"log_level"`

	Auth struct {
		Secret          string   `yaml:"secret"`
		StaffPINs       []string `yaml:"staff_pins"`
		TokenTTLMinutes int      `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`

	Floor struct {
		AlertThresholdMinutes int     `yaml:"alert_threshold_minutes"`
		TipPercent            float64 `yaml:"tip_percent"`
	} `yaml:"floor"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		DatabasePath: "comandero.db",
		LogLevel:     "info",
	}
	cfg.Auth.Secret = "comandero-dev-secret"
	cfg.Auth.StaffPINs = []string{"1234"}
	cfg.Auth.TokenTTLMinutes = 12 * 60 // one shift
	cfg.Floor.AlertThresholdMinutes = 5
	cfg.Floor.TipPercent = 10
	return cfg
}

// Load reads configuration from a YAML file, applying defaults for any
// field the file leaves out. A missing file is not an error: the defaults
// are returned so the server can start without one.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		return nil, fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if cfg.Floor.AlertThresholdMinutes <= 0 {
		return nil, fmt.Errorf("floor.alert_threshold_minutes must be positive")
	}
	if cfg.Floor.TipPercent < 0 {
		return nil, fmt.Errorf("floor.tip_percent must not be negative")
	}
	return cfg, nil
}
