// Package session watches the live chat transcript and maintains the
// provisional client-side token estimate for the active session.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tokendeck/tokendeck/internal/logger"
	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/token"
)

// Transcript is the JSON shape the chat client writes as the conversation
// grows.
type Transcript struct {
	SessionID string          `json:"sessionId"`
	Model     string          `json:"model"`
	Messages  []token.Message `json:"messages"`
}

// Event represents a session service event.
type Event struct {
	Type     EventType
	Error    error
	Estimate *models.SessionEstimate
}

// EventType defines the type of session event.
type EventType int

const (
	// EventEstimateUpdated indicates a fresh provisional estimate.
	EventEstimateUpdated EventType = iota
	// EventSessionCleared indicates the transcript was removed.
	EventSessionCleared
	// EventError indicates a watcher or parse failure.
	EventError
)

// Watcher recomputes the provisional estimate whenever the transcript file
// changes. The estimate is advisory display data only; authoritative counts
// always come from the usage store.
type Watcher struct {
	mu            sync.RWMutex
	filePath      string
	defaultModel  string
	estimate      *models.SessionEstimate
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
}

// New creates a watcher for the transcript at filePath and starts watching.
// A missing transcript is not an error; it just means no active session yet.
func New(filePath, defaultModel string) (*Watcher, error) {
	if filePath == "" {
		return nil, fmt.Errorf("transcript path must not be empty")
	}

	w := &Watcher{
		filePath:     filePath,
		defaultModel: defaultModel,
		eventChan:    make(chan Event, 100),
		stopChan:     make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	// Best-effort initial load; the file may not exist yet.
	if err := w.reload(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read transcript on startup", "error", err)
	}

	if err := w.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start transcript watcher: %w", err)
	}

	return w, nil
}

// Events returns the event channel for subscribing to estimate changes.
func (w *Watcher) Events() <-chan Event {
	return w.eventChan
}

// Estimate returns the current provisional estimate, or nil when there is no
// active session.
func (w *Watcher) Estimate() *models.SessionEstimate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.estimate == nil {
		return nil
	}
	e := *w.estimate
	return &e
}

// SessionID returns the active session identifier, or "" when none.
func (w *Watcher) SessionID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.estimate == nil {
		return ""
	}
	return w.estimate.SessionID
}

// Reload forces a recomputation from the transcript file, for manual
// refresh.
func (w *Watcher) Reload() error {
	return w.reload()
}

// reload reads the transcript and recomputes the estimate.
func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.clearEstimate()
		}
		return err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	model := t.Model
	if model == "" {
		model = w.defaultModel
	}

	summary := token.SummarizeTranscript(t.Messages, model)
	est := &models.SessionEstimate{
		SessionID: t.SessionID,
		Model:     model,
		Tokens:    int(summary.TotalTokens),
		Summary:   summary,
		UpdatedAt: time.Now(),
	}

	w.mu.Lock()
	w.estimate = est
	w.mu.Unlock()

	w.sendEvent(Event{Type: EventEstimateUpdated, Estimate: est})
	return nil
}

func (w *Watcher) clearEstimate() {
	w.mu.Lock()
	hadEstimate := w.estimate != nil
	w.estimate = nil
	w.mu.Unlock()

	if hadEstimate {
		w.sendEvent(Event{Type: EventSessionCleared})
	}
}

// startWatcher starts the file system watcher on the transcript directory so
// create and delete events are caught as well.
func (w *Watcher) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(filepath.Dir(w.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go w.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.filePath) {
				continue
			}

			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, func() {
					w.handleFileChange()
				})
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.clearEstimate()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendEvent(Event{Type: EventError, Error: err})

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleFileChange() {
	if err := w.reload(); err != nil && !os.IsNotExist(err) {
		w.sendEvent(Event{Type: EventError, Error: err})
	}
}

// sendEvent delivers an event without blocking; a full channel drops the
// event, which is safe because consumers re-read current state.
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.eventChan <- event:
	default:
		logger.Warn("session event channel full, dropping event")
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}
