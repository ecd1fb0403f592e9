package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tokendeck/tokendeck/internal/token"
)

func writeTranscript(t *testing.T, path string, tr Transcript) {
	t.Helper()
	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
}

func TestNew_MissingTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live-session.json")

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	if w.Estimate() != nil {
		t.Error("estimate should be nil with no transcript")
	}
	if w.SessionID() != "" {
		t.Errorf("SessionID = %q, want empty", w.SessionID())
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New("", "gpt-4"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	tr := Transcript{
		SessionID: "sess-42",
		Model:     "gpt-4",
		Messages: []token.Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi there"},
		},
	}
	writeTranscript(t, path, tr)

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	est := w.Estimate()
	if est == nil {
		t.Fatal("estimate is nil after initial load")
	}
	if est.SessionID != "sess-42" {
		t.Errorf("SessionID = %q, want sess-42", est.SessionID)
	}
	if est.Model != "gpt-4" {
		t.Errorf("Model = %q, want gpt-4 from transcript", est.Model)
	}

	want := token.EstimateTranscript(tr.Messages, "gpt-4")
	if est.Tokens != want {
		t.Errorf("Tokens = %d, want %d", est.Tokens, want)
	}
}

func TestWatcher_DefaultModelFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	writeTranscript(t, path, Transcript{
		SessionID: "sess-1",
		Messages:  []token.Message{{Role: "user", Content: "hi"}},
	})

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	est := w.Estimate()
	if est == nil {
		t.Fatal("estimate is nil")
	}
	if est.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want default gpt-4o-mini", est.Model)
	}
}

func TestWatcher_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	writeTranscript(t, path, Transcript{
		SessionID: "sess-1",
		Model:     "gpt-4",
		Messages:  []token.Message{{Role: "user", Content: "one"}},
	})

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	before := w.Estimate().Tokens

	writeTranscript(t, path, Transcript{
		SessionID: "sess-1",
		Model:     "gpt-4",
		Messages: []token.Message{
			{Role: "user", Content: "one"},
			{Role: "assistant", Content: "two"},
			{Role: "user", Content: "three"},
		},
	})

	if err := w.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	after := w.Estimate().Tokens
	if after <= before {
		t.Errorf("estimate did not grow: before=%d after=%d", before, after)
	}
}

func TestWatcher_ReloadMissingFileClearsEstimate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	writeTranscript(t, path, Transcript{
		SessionID: "sess-1",
		Model:     "gpt-4",
		Messages:  []token.Message{{Role: "user", Content: "hello"}},
	})

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	if w.Estimate() == nil {
		t.Fatal("estimate missing before removal")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove transcript: %v", err)
	}
	if err := w.Reload(); !os.IsNotExist(err) {
		t.Fatalf("Reload after remove: err = %v, want not-exist", err)
	}

	if w.Estimate() != nil {
		t.Error("estimate should be cleared after transcript removal")
	}
}

func TestWatcher_EmitsEstimateEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	writeTranscript(t, path, Transcript{
		SessionID: "sess-evt",
		Model:     "gpt-4",
		Messages:  []token.Message{{Role: "user", Content: "ping"}},
	})

	// The fs watcher debounces for 100ms before reloading.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case evt := <-w.Events():
			if evt.Type == EventEstimateUpdated && evt.Estimate != nil &&
				evt.Estimate.SessionID == "sess-evt" {
				return
			}
		case <-deadline:
			t.Fatal("no estimate event within deadline")
		}
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live-session.json")

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWatcher_EstimateCarriesModelSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live-session.json")

	writeTranscript(t, path, Transcript{
		SessionID: "sess-77",
		Model:     "gpt-4",
		Messages: []token.Message{
			{Role: "user", Content: "compare these models"},
			{Role: "assistant", Content: "sure, here is a comparison"},
			{Role: "user", Content: "now in gpt-4o-mini please", Model: "gpt-4o-mini"},
		},
	})

	w, err := New(path, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = w.Close() }()

	est := w.Estimate()
	if est == nil {
		t.Fatal("estimate is nil")
	}

	if len(est.Summary.Models) != 2 {
		t.Fatalf("summary models = %d, want 2", len(est.Summary.Models))
	}
	if est.Summary.Models[0].Model != "gpt-4" {
		t.Errorf("first summary model = %s, want gpt-4", est.Summary.Models[0].Model)
	}
	if est.Summary.Models[1].Model != "gpt-4o-mini" {
		t.Errorf("second summary model = %s, want gpt-4o-mini", est.Summary.Models[1].Model)
	}
	if int64(est.Tokens) != est.Summary.TotalTokens {
		t.Errorf("Tokens = %d, want summary total %d", est.Tokens, est.Summary.TotalTokens)
	}
}
