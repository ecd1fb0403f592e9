package app

import (
	"time"

	"github.com/tokendeck/tokendeck/internal/models"
	"github.com/tokendeck/tokendeck/internal/services"
	"github.com/tokendeck/tokendeck/internal/usageapi"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// PollTickMsg drives the usage poll while the dashboard is open. Gen is a
// generation counter owned by the dashboard tab: ticks from a closed or
// superseded polling cycle carry a stale generation and are dropped, so no
// timer survives a close and reopen.
type PollTickMsg struct {
	Gen  int
	Time time.Time
}

// StatsLoadedMsg carries the outcome of a stats fetch. On error, Stats is
// nil and the previous snapshot is retained.
type StatsLoadedMsg struct {
	Stats  *usageapi.StatsResult
	Period models.Period
	Err    error
}

// HistoryLoadedMsg carries the outcome of a history fetch.
type HistoryLoadedMsg struct {
	History []models.SessionHistoryRecord
	Err     error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "stats", "history"
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}
