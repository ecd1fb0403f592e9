// Package models defines data structures and domain types.
package models

import "time"

// AggregatedModelUsage holds token counts for a single model within a scope
// (one conversation or one time window).
type AggregatedModelUsage struct {
	Model            string `json:"model"`
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	TotalTokens      int64  `json:"totalTokens"`
}

// TokenUsageSummary is an ordered collection of per-model usage plus a grand
// total. TotalTokens always equals the sum of the members' TotalTokens.
type TokenUsageSummary struct {
	Models      []AggregatedModelUsage `json:"models"`
	TotalTokens int64                  `json:"totalTokens"`
}

// NewTokenUsageSummary builds a summary from per-model entries, normalizing
// each member's total and computing the grand total.
func NewTokenUsageSummary(members []AggregatedModelUsage) TokenUsageSummary {
	s := TokenUsageSummary{Models: make([]AggregatedModelUsage, len(members))}
	for i, m := range members {
		m.TotalTokens = m.PromptTokens + m.CompletionTokens
		s.Models[i] = m
		s.TotalTokens += m.TotalTokens
	}
	return s
}

// DailyUsageRecord is one calendar day's rollup, ordered by date for trend
// charting. Dates are unique within the sequence returned for a period.
type DailyUsageRecord struct {
	Date         string  `json:"date"`
	Requests     int     `json:"requests"`
	TokensInput  int64   `json:"tokensInput"`
	TokensOutput int64   `json:"tokensOutput"`
	TokensTotal  int64   `json:"tokensTotal"`
	Cost         float64 `json:"cost"`
}

// UsageTotals aggregates the selected period.
type UsageTotals struct {
	TotalRequests int     `json:"totalRequests"`
	TokensTotal   int64   `json:"tokensTotal"`
	TotalCost     float64 `json:"totalCost"`
}

// CurrentSessionUsage is the live authoritative record for the session in
// view. At most one is active per session; it is replaced wholesale on each
// poll, never mutated in place.
type CurrentSessionUsage struct {
	SessionID    string  `json:"sessionId"`
	TokensInput  int64   `json:"tokensInput"`
	TokensOutput int64   `json:"tokensOutput"`
	TokensTotal  int64   `json:"tokensTotal"`
	Cost         float64 `json:"cost"`
	RequestCount int     `json:"requestCount"`
}

// SessionHistoryRecord is a closed-or-open conversation record. EndTime is
// nil while the session is ongoing. Lists are ordered most-recent-start
// first.
type SessionHistoryRecord struct {
	SessionID    string     `json:"sessionId"`
	UserID       *string    `json:"userId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	RequestCount int        `json:"requestCount"`
	TokensInput  int64      `json:"tokensInput"`
	TokensOutput int64      `json:"tokensOutput"`
	TokensTotal  int64      `json:"tokensTotal"`
	Cost         float64    `json:"cost"`
}

// Ongoing reports whether the session has not ended yet.
func (s *SessionHistoryRecord) Ongoing() bool {
	return s.EndTime == nil
}

// SessionEstimate is the provisional, client-side token estimate for the
// active session. It is advisory only and is never merged with authoritative
// store values. Summary breaks the estimate down per model; its grand total
// always equals Tokens.
type SessionEstimate struct {
	SessionID string
	Model     string
	Tokens    int
	Summary   TokenUsageSummary
	UpdatedAt time.Time
}
