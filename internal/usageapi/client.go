// Package usageapi is a read-only client for the external usage store.
//
// Both queries decode into explicitly typed responses and fail closed: a
// transport error, a non-2xx status, a malformed body, or success=false all
// return an error so the caller keeps its last-known-good state.
package usageapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tokendeck/tokendeck/internal/models"
)

// DefaultTimeout bounds a single query round trip.
const DefaultTimeout = 10 * time.Second

// Client queries the usage store over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the store at baseURL (no trailing slash needed).
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client,
// used by tests.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

// StatsResult is the decoded stats query response.
type StatsResult struct {
	DailyStats     []models.DailyUsageRecord   `json:"dailyStats"`
	Totals         models.UsageTotals          `json:"totals"`
	CurrentSession *models.CurrentSessionUsage `json:"currentSession"`
}

type statsEnvelope struct {
	Success bool `json:"success"`
	StatsResult
}

type historyEnvelope struct {
	Success bool                          `json:"success"`
	History []models.SessionHistoryRecord `json:"history"`
}

// FetchStats fetches daily rollups, period totals, and the authoritative
// current-session record. sessionID may be empty.
func (c *Client) FetchStats(ctx context.Context, period models.Period, sessionID string) (*StatsResult, error) {
	q := url.Values{}
	q.Set("period", strconv.Itoa(period.Days()))
	if sessionID != "" {
		q.Set("sessionId", sessionID)
	}

	var env statsEnvelope
	if err := c.get(ctx, "/usage/stats", q, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("usage store rejected stats query")
	}
	return &env.StatsResult, nil
}

// FetchHistory fetches the most recent session records, newest start time
// first.
func (c *Client) FetchHistory(ctx context.Context, limit int) ([]models.SessionHistoryRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var env historyEnvelope
	if err := c.get(ctx, "/usage/history", q, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("usage store rejected history query")
	}
	return env.History, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("usage store request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("usage store returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode usage store response: %w", err)
	}
	return nil
}
