package sessions

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokendeck/tokendeck/internal/app"
	"github.com/tokendeck/tokendeck/internal/models"
)

func seedHistory(state *app.State, n int) {
	records := make([]models.SessionHistoryRecord, n)
	for i := range records {
		records[i] = models.SessionHistoryRecord{
			SessionID: string(rune('a' + i)),
			StartTime: time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	state.SetHistory(records)
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_SelectionWrapsAround(t *testing.T) {
	state := app.NewState()
	seedHistory(state, 3)
	m := New(state, nil)

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	m.Update(down)
	m.Update(down)
	if m.selectedIndex != 2 {
		t.Errorf("selectedIndex = %d, want 2", m.selectedIndex)
	}

	m.Update(down)
	if m.selectedIndex != 0 {
		t.Errorf("selectedIndex wrapped to %d, want 0", m.selectedIndex)
	}

	m.Update(up)
	if m.selectedIndex != 2 {
		t.Errorf("selectedIndex wrapped back to %d, want 2", m.selectedIndex)
	}
}

func TestModel_SelectionClampsAfterShrink(t *testing.T) {
	state := app.NewState()
	seedHistory(state, 5)
	m := New(state, nil)
	m.selectedIndex = 4

	seedHistory(state, 2)
	m.Update(app.HistoryLoadedMsg{History: state.GetHistory()})

	if m.selectedIndex > 1 {
		t.Errorf("selectedIndex = %d, want clamped to last record", m.selectedIndex)
	}
}

func TestModel_HistoryErrorRetainsRecords(t *testing.T) {
	state := app.NewState()
	seedHistory(state, 2)
	m := New(state, nil)
	m.loaded = true

	m.Update(app.HistoryLoadedMsg{Err: errors.New("store down")})

	if len(state.GetHistory()) != 2 {
		t.Error("records should survive a failed fetch")
	}
	if m.lastErr == "" {
		t.Error("error should be recorded")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(100, 40)

	// Empty
	if view := m.View(); view == "" {
		t.Error("empty view is blank")
	}

	// With records, including an ongoing one
	end := time.Now()
	state.SetHistory([]models.SessionHistoryRecord{
		{SessionID: "sess-closed", StartTime: end.Add(-time.Hour), EndTime: &end, RequestCount: 3, TokensTotal: 500, Cost: 0.02},
		{SessionID: "sess-open", StartTime: end.Add(-10 * time.Minute), RequestCount: 1, TokensTotal: 100},
	})
	m.loaded = true

	if view := m.View(); view == "" {
		t.Error("populated view is blank")
	}
}
