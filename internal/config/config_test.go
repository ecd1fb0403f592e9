package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SETTINGS_PATH", filepath.Join(tmp, "settings.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))
	t.Setenv("USAGE_API_URL", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("HISTORY_LIMIT", "")
	t.Setenv("DEFAULT_MODEL", "")
	t.Setenv("COST_ALERT_THRESHOLD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.UsageAPIBaseURL != "http://localhost:3000/api" {
		t.Errorf("UsageAPIBaseURL = %q", cfg.UsageAPIBaseURL)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.HistoryLimit)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.CostAlertThreshold != 0 {
		t.Errorf("CostAlertThreshold = %v, want 0 (off)", cfg.CostAlertThreshold)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SETTINGS_PATH", filepath.Join(tmp, "s.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmp, "l.log"))
	t.Setenv("USAGE_API_URL", "http://example.test/api")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("DEFAULT_MODEL", "gpt-4")
	t.Setenv("COST_ALERT_THRESHOLD", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.UsageAPIBaseURL != "http://example.test/api" {
		t.Errorf("UsageAPIBaseURL = %q", cfg.UsageAPIBaseURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.DefaultModel != "gpt-4" {
		t.Errorf("DefaultModel = %q, want gpt-4", cfg.DefaultModel)
	}
	if cfg.CostAlertThreshold != 2.5 {
		t.Errorf("CostAlertThreshold = %v, want 2.5", cfg.CostAlertThreshold)
	}
}

func TestLoad_BareSecondsPollInterval(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SETTINGS_PATH", filepath.Join(tmp, "s.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmp, "l.log"))
	t.Setenv("POLL_INTERVAL", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SETTINGS_PATH", filepath.Join(tmp, "s.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmp, "l.log"))
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("HISTORY_LIMIT", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want default 10s", cfg.PollInterval)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want default 10", cfg.HistoryLimit)
	}
}
