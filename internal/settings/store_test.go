package settings

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/tokendeck/tokendeck/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetFallback(t *testing.T) {
	s := openTestStore(t)

	if got := s.Get("missing", "default"); got != "default" {
		t.Errorf("Get(missing) = %q, want fallback", got)
	}
}

func TestStore_SetGetRoundtrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeyPeriod, "30"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Get(KeyPeriod, "7"); got != "30" {
		t.Errorf("Get = %q, want 30", got)
	}

	// Overwrite
	if err := s.Set(KeyPeriod, "7"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got := s.Get(KeyPeriod, "30"); got != "7" {
		t.Errorf("Get after overwrite = %q, want 7", got)
	}
}

func TestStore_ViewModePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set(KeyViewMode, "Sessions"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and read back
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()

	if got := s2.Get(KeyViewMode, "Usage"); got != "Sessions" {
		t.Errorf("view mode after reopen = %q, want Sessions", got)
	}
}

func TestStore_StatsSnapshot(t *testing.T) {
	s := openTestStore(t)

	// No snapshot yet
	cs, err := s.LoadStatsSnapshot()
	if err != nil {
		t.Fatalf("LoadStatsSnapshot: %v", err)
	}
	if cs != nil {
		t.Fatalf("snapshot = %+v, want nil before first save", cs)
	}

	payload := map[string]any{
		"totals": models.UsageTotals{TotalRequests: 4, TokensTotal: 800, TotalCost: 0.03},
	}
	if err := s.SaveStatsSnapshot(7, payload); err != nil {
		t.Fatalf("SaveStatsSnapshot: %v", err)
	}

	cs, err = s.LoadStatsSnapshot()
	if err != nil {
		t.Fatalf("LoadStatsSnapshot after save: %v", err)
	}
	if cs == nil {
		t.Fatal("snapshot missing after save")
	}
	if cs.PeriodDays != 7 {
		t.Errorf("PeriodDays = %d, want 7", cs.PeriodDays)
	}
	if cs.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}

	var decoded struct {
		Totals models.UsageTotals `json:"totals"`
	}
	if err := json.Unmarshal(cs.Payload, &decoded); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if decoded.Totals.TokensTotal != 800 {
		t.Errorf("decoded totals = %+v", decoded.Totals)
	}

	// A second save replaces the first
	if err := s.SaveStatsSnapshot(30, payload); err != nil {
		t.Fatalf("second SaveStatsSnapshot: %v", err)
	}
	cs, err = s.LoadStatsSnapshot()
	if err != nil {
		t.Fatalf("LoadStatsSnapshot after replace: %v", err)
	}
	if cs.PeriodDays != 30 {
		t.Errorf("PeriodDays after replace = %d, want 30", cs.PeriodDays)
	}
}
