package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatabasePath != "comandero.db" {
		t.Errorf("database path = %q, want the default", cfg.DatabasePath)
	}
	if cfg.Floor.TipPercent != 10 {
		t.Errorf("tip percent = %v, want 10", cfg.Floor.TipPercent)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database_path: /tmp/floor.db
auth:
  secret: s3cret
  staff_pins: ["0000", "9999"]
  token_ttl_minutes: 60
floor:
  alert_threshold_minutes: 3
  tip_percent: 12.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatabasePath != "/tmp/floor.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if len(cfg.Auth.StaffPINs) != 2 || cfg.Auth.Secret != "s3cret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Floor.AlertThresholdMinutes != 3 || cfg.Floor.TipPercent != 12.5 {
		t.Errorf("floor = %+v", cfg.Floor)
	}
	// Fields the file leaves out keep their defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "floor: [",
		"zero ttl":       "auth:\n  token_ttl_minutes: -1",
		"zero threshold": "floor:\n  alert_threshold_minutes: -2",
		"negative tip":   "floor:\n  tip_percent: -1",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: Load accepted invalid config", name)
		}
	}
}
