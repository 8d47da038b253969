// Package claude implements the thin HTTP client for the claude.ai usage
// endpoint.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/usage"
)

const (
	defaultBaseURL = "https://claude.ai/api"
	userAgent      = "claudebar/1.0"
)

// Client fetches usage statistics for one organization. One GET per call,
// no retries; the poller's schedule is the only retry mechanism.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a usage client. baseURL defaults to the production
// claude.ai API when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// limitWindow mirrors one percent/reset pair on the wire. Pointer fields
// distinguish "object absent" from zero values.
type limitWindow struct {
	PercentUsed *float64 `json:"percent_used"`
	ResetsAt    string   `json:"resets_at"`
}

// usageResponse mirrors the response body. Unknown fields are ignored;
// absence of any of the three objects is a parse error.
type usageResponse struct {
	FiveHour       *limitWindow `json:"five_hour"`
	SevenDay       *limitWindow `json:"seven_day"`
	SevenDaySonnet *limitWindow `json:"seven_day_sonnet"`
}

// Fetch issues a single GET with the session key as a cookie and the
// organization id as a path parameter. Errors are classified into the
// usage error taxonomy; the caller never sees a raw transport error
// without a kind.
func (c *Client) Fetch(ctx context.Context, creds credentials.Credentials) (usage.Snapshot, error) {
	if creds.SessionKey == "" || creds.OrganizationID == "" {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrUnconfigured, fmt.Errorf("missing credentials"))
	}

	url := fmt.Sprintf("%s/organizations/%s/usage", c.baseURL, creds.OrganizationID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "sessionKey", Value: creds.SessionKey})

	resp, err := c.http.Do(req)
	if err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAuth, fmt.Errorf("HTTP %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAPI, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var body usageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAPI, fmt.Errorf("malformed body: %w", err))
	}

	session, err := parseWindow("five_hour", body.FiveHour)
	if err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAPI, err)
	}
	weekly, err := parseWindow("seven_day", body.SevenDay)
	if err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAPI, err)
	}
	sonnet, err := parseWindow("seven_day_sonnet", body.SevenDaySonnet)
	if err != nil {
		return usage.Snapshot{}, usage.NewPollError(usage.ErrAPI, err)
	}

	return usage.Snapshot{
		Session:      session,
		Weekly:       weekly,
		WeeklySonnet: sonnet,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// parseWindow validates one limit object. Percent values pass through
// unmodified; the source already guarantees the 0-100 domain. Timestamps
// are ISO-8601 and surfaced as absolute instants so the renderer can
// compute countdowns at display time.
func parseWindow(name string, w *limitWindow) (usage.Window, error) {
	if w == nil || w.PercentUsed == nil {
		return usage.Window{}, fmt.Errorf("response missing %s", name)
	}
	out := usage.Window{PercentUsed: *w.PercentUsed}
	if w.ResetsAt != "" {
		ts, err := time.Parse(time.RFC3339, w.ResetsAt)
		if err != nil {
			return usage.Window{}, fmt.Errorf("invalid %s.resets_at: %w", name, err)
		}
		out.ResetsAt = ts
	}
	return out, nil
}
