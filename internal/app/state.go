// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/usageapi"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Stats   bool
	History bool
}

// State is the shared renderable state merged from the three usage sources:
// the provisional local estimate, the authoritative current-session record
// (inside Stats), and the historical records. Stats and History are replaced
// wholesale on each successful fetch, never mutated in place; a failed fetch
// leaves them untouched.
type State struct {
	mu sync.RWMutex

	Stats       *usageapi.StatsResult
	StatsPeriod models.Period
	StatsStale  bool
	History     []models.SessionHistoryRecord
	Estimate    *models.SessionEstimate

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState initializes the shared application state.
func NewState() *State {
	return &State{
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "stats":
		s.Loading.Stats = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial || s.Loading.Stats || s.Loading.History
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetStats adopts a fetched stats snapshot. Results are applied in arrival
// order: overlapping fetches are each a valid snapshot of server state, so
// whichever resolves last wins.
func (s *State) SetStats(stats *usageapi.StatsResult, period models.Period) {
	if stats == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = stats
	s.StatsPeriod = period
	s.StatsStale = false
	s.LastUpdated = time.Now()
}

// SetStaleStats seeds the state with a cached snapshot that predates this
// process, shown until fresh data arrives.
func (s *State) SetStaleStats(stats *usageapi.StatsResult, period models.Period) {
	if stats == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = stats
	s.StatsPeriod = period
	s.StatsStale = true
}

// GetStats returns the current stats snapshot, its period, and whether it is
// a pre-process cached value.
func (s *State) GetStats() (*usageapi.StatsResult, models.Period, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats, s.StatsPeriod, s.StatsStale
}

// CurrentSession returns the authoritative current-session record, or nil.
func (s *State) CurrentSession() *models.CurrentSessionUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Stats == nil {
		return nil
	}
	return s.Stats.CurrentSession
}

// SetHistory replaces the session history records.
func (s *State) SetHistory(history []models.SessionHistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = history
	s.LastUpdated = time.Now()
}

// GetHistory returns a copy of the session history records.
func (s *State) GetHistory() []models.SessionHistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]models.SessionHistoryRecord, len(s.History))
	copy(history, s.History)
	return history
}

// SetEstimate updates the provisional session estimate. It never touches the
// authoritative records.
func (s *State) SetEstimate(est *models.SessionEstimate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Estimate = est
}

// GetEstimate returns the provisional session estimate, or nil.
func (s *State) GetEstimate() *models.SessionEstimate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Estimate
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time authoritative data was adopted.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}
