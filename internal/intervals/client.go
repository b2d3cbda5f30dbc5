// Package intervals is a minimal client for the intervals.icu API, used to
// pull daily wellness data (HRV, resting HR, sleep, readiness).
package intervals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const BaseURL = "https://intervals.icu/api/v1"

// Client is an intervals.icu API client. Authentication is HTTP basic with
// the literal username "API_KEY" and the key as password.
type Client struct {
	athleteID  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given athlete.
func NewClient(athleteID, apiKey string) *Client {
	return &Client{
		athleteID:  athleteID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WellnessEntry is one day of wellness data. The entry ID is the date in
// YYYY-MM-DD form. All metric fields are optional.
type WellnessEntry struct {
	Date       string   `json:"id"`
	RestingHR  *float64 `json:"restingHR"`
	HRV        *float64 `json:"hrv"`
	SleepScore *float64 `json:"sleepScore"`
	Readiness  *float64 `json:"readiness"`
}

// GetWellness fetches wellness entries for the inclusive date range
// [oldest, newest].
func (c *Client) GetWellness(ctx context.Context, oldest, newest time.Time) ([]WellnessEntry, error) {
	params := url.Values{}
	params.Set("oldest", oldest.Format("2006-01-02"))
	params.Set("newest", newest.Format("2006-01-02"))

	path := fmt.Sprintf("/athlete/%s/wellness", c.athleteID)
	reqURL := BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("API_KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching wellness: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("intervals.icu error %d: %s", resp.StatusCode, string(body))
	}

	var entries []WellnessEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding wellness entries: %w", err)
	}

	return entries, nil
}
