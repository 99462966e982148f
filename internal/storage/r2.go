// Package storage uploads raw files to an R2-compatible bucket over HTTP.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client puts objects into a bucket exposed behind an HTTP endpoint and
// derives their public URLs from a separate public base.
type Client struct {
	bucketURL string
	publicURL string
	http      *http.Client
}

func NewClient(bucketURL, publicURL string) *Client {
	return &Client{
		bucketURL: strings.TrimRight(bucketURL, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether uploads can be attempted at all.
func (c *Client) Configured() bool {
	return c.bucketURL != ""
}

// Put uploads body under a timestamped key derived from the filename and
// returns the key.
func (c *Client) Put(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("bucket endpoint not configured")
	}

	key := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.bucketURL+"/"+key, body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return key, nil
}

// PublicURL returns the publicly reachable URL for an uploaded key.
func (c *Client) PublicURL(key string) string {
	if c.publicURL == "" {
		return ""
	}
	return c.publicURL + "/" + key
}
