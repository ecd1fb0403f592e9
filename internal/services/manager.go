// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/tokendeck/tokendeck/internal/config"
	"github.com/tokendeck/tokendeck/internal/logger"
	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/services/session"
	"github.com/tokendeck/tokendeck/internal/settings"
	"github.com/tokendeck/tokendeck/internal/usageapi"
)

type (
	// EstimateUpdatedEvent is emitted when the provisional session estimate
	// changes.
	EstimateUpdatedEvent struct {
		Estimate *models.SessionEstimate
	}

	// SessionClearedEvent is emitted when the live transcript goes away.
	SessionClearedEvent struct{}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (EstimateUpdatedEvent) isServiceEvent() {}
func (SessionClearedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()           {}

// UsageAPI is the query contract against the external usage store. The HTTP
// client implements it; tests substitute stubs.
type UsageAPI interface {
	FetchStats(ctx context.Context, period models.Period, sessionID string) (*usageapi.StatsResult, error)
	FetchHistory(ctx context.Context, limit int) ([]models.SessionHistoryRecord, error)
}

// Manager orchestrates the usage client, the settings store, and the live
// session watcher, and routes service events to subscribers.
type Manager struct {
	mu          sync.RWMutex
	api         UsageAPI
	store       *settings.Store
	session     *session.Watcher
	cfg         *config.Config
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	stopOnce    sync.Once
	subscribers []chan<- ServiceEvent
	alertFired  bool
}

// NewManager creates a new service manager and starts background services.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		api:       usageapi.New(cfg.UsageAPIBaseURL),
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	var err error
	m.store, err = settings.Open(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize settings store: %w", err)
	}

	m.session, err = session.New(cfg.TranscriptPath, cfg.DefaultModel)
	if err != nil {
		_ = m.store.Close()
		return nil, fmt.Errorf("failed to initialize session watcher: %w", err)
	}

	go m.routeEvents()

	return m, nil
}

// NewManagerWithAPI builds a manager around a caller-supplied usage API
// implementation; used by tests.
func NewManagerWithAPI(cfg *config.Config, api UsageAPI) (*Manager, error) {
	m, err := NewManager(cfg)
	if err != nil {
		return nil, err
	}
	m.api = api
	return m, nil
}

// routeEvents converts session watcher events into service events.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.session.Events():
			switch event.Type {
			case session.EventEstimateUpdated:
				m.broadcast(EstimateUpdatedEvent{Estimate: event.Estimate})
			case session.EventSessionCleared:
				m.broadcast(SessionClearedEvent{})
			case session.EventError:
				m.broadcast(ErrorEvent{Service: "session", Error: event.Error})
			}

		case <-m.stopChan:
			return
		}
	}
}

// FetchStats queries the usage store, caches the result as the last-known
// good snapshot, and checks the cost alert threshold. On failure the caller
// keeps its previous state; the error is logged here and returned for the
// view to count, never rendered as a blocking failure.
func (m *Manager) FetchStats(ctx context.Context, period models.Period, sessionID string) (*usageapi.StatsResult, error) {
	stats, err := m.api.FetchStats(ctx, period, sessionID)
	if err != nil {
		logger.Error("stats fetch failed", "period", period.Days(), "error", err)
		return nil, err
	}

	if err := m.store.SaveStatsSnapshot(period.Days(), stats); err != nil {
		logger.Warn("failed to cache stats snapshot", "error", err)
	}

	m.checkCostAlert(stats.Totals.TotalCost)
	return stats, nil
}

// FetchHistory queries the recent session records.
func (m *Manager) FetchHistory(ctx context.Context) ([]models.SessionHistoryRecord, error) {
	history, err := m.api.FetchHistory(ctx, m.cfg.HistoryLimit)
	if err != nil {
		logger.Error("history fetch failed", "error", err)
		return nil, err
	}
	return history, nil
}

// CachedStats returns the persisted last-known-good snapshot, or nil when
// none exists. A reopened dashboard shows this stale data until the first
// fresh fetch lands.
func (m *Manager) CachedStats() (*usageapi.StatsResult, models.Period, bool) {
	cached, err := m.store.LoadStatsSnapshot()
	if err != nil {
		logger.Warn("failed to load cached stats", "error", err)
		return nil, models.Period7Days, false
	}
	if cached == nil {
		return nil, models.Period7Days, false
	}

	var stats usageapi.StatsResult
	if err := json.Unmarshal(cached.Payload, &stats); err != nil {
		logger.Warn("failed to decode cached stats", "error", err)
		return nil, models.Period7Days, false
	}
	return &stats, models.PeriodFromDays(cached.PeriodDays), true
}

// checkCostAlert fires a desktop notification once when the period cost
// crosses the configured threshold, re-arming when it drops back below.
func (m *Manager) checkCostAlert(totalCost float64) {
	threshold := m.cfg.CostAlertThreshold
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if totalCost >= threshold && !m.alertFired {
		m.alertFired = true
		title := "Usage cost alert"
		body := fmt.Sprintf("Period cost $%.2f crossed the $%.2f threshold", totalCost, threshold)
		_ = beeep.Notify(title, body, "")
	} else if totalCost < threshold {
		m.alertFired = false
	}
}

// SessionEstimate returns the current provisional estimate, or nil.
func (m *Manager) SessionEstimate() *models.SessionEstimate {
	return m.session.Estimate()
}

// SessionID returns the active session identifier, or "".
func (m *Manager) SessionID() string {
	return m.session.SessionID()
}

// ReloadSession forces the live estimate to recompute, for manual refresh.
func (m *Manager) ReloadSession() {
	if err := m.session.Reload(); err != nil {
		logger.Debug("transcript reload", "error", err)
	}
}

// Settings returns the local settings store.
func (m *Manager) Settings() *settings.Store {
	return m.store
}

// Config returns the application configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Period returns the persisted period selection, defaulting to 7 days.
func (m *Manager) Period() models.Period {
	if m.store.Get(settings.KeyPeriod, "7") == "30" {
		return models.Period30Days
	}
	return models.Period7Days
}

// SetPeriod persists the period selection.
func (m *Manager) SetPeriod(p models.Period) {
	if err := m.store.Set(settings.KeyPeriod, fmt.Sprintf("%d", p.Days())); err != nil {
		logger.Warn("failed to persist period", "error", err)
	}
}

// ViewMode returns the persisted view mode, defaulting to the given value.
func (m *Manager) ViewMode(fallback string) string {
	return m.store.Get(settings.KeyViewMode, fallback)
}

// SetViewMode persists the view mode.
func (m *Manager) SetViewMode(mode string) {
	if err := m.store.Set(settings.KeyViewMode, mode); err != nil {
		logger.Warn("failed to persist view mode", "error", err)
	}
}

// broadcast sends an event to the main channel and all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close shuts down background services and the settings store.
func (m *Manager) Close() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.stopChan)
		if closeErr := m.session.Close(); closeErr != nil {
			err = closeErr
		}
		if closeErr := m.store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
