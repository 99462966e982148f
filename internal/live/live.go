// Package live fetches current operational data from the MCP endpoint.
package live

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client pulls a text snapshot of live data. The payload is opaque to the
// pipeline; it goes into the prompt as-is.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch returns the live-data payload. Errors are returned so callers can
// tell "fetch failed" from "nothing available", but the pipeline treats both
// as an empty block.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("live data endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build live data request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("live data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("live data endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read live data response: %w", err)
	}
	return string(body), nil
}
