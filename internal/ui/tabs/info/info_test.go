package info

import (
	"strings"
	"testing"
	"time"

	"github.com/tokendeck/tokendeck/internal/app"
	"github.com/tokendeck/tokendeck/internal/config"
)

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_View_WithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 40)

	view := m.View()
	if view == "" {
		t.Fatal("View returned empty string")
	}
	if !strings.Contains(view, "Configuration not loaded") {
		t.Error("missing-config notice not rendered")
	}
}

func TestModel_View_WithConfig(t *testing.T) {
	cfg := &config.Config{
		UsageAPIBaseURL: "http://localhost:3000/api",
		SettingsPath:    "/tmp/settings.db",
		TranscriptPath:  "/tmp/live-session.json",
		LogPath:         "/tmp/tokendeck.log",
		DefaultModel:    "gpt-4o-mini",
		HistoryLimit:    10,
		PollInterval:    10 * time.Second,
	}

	m := New(app.NewState(), cfg)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "http://localhost:3000/api") {
		t.Error("API URL not rendered")
	}
	if !strings.Contains(view, "gpt-4o-mini") {
		t.Error("default model not rendered")
	}
	if !strings.Contains(view, "gpt-4") {
		t.Error("pricing table not rendered")
	}
}
