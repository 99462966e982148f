// Package notify delivers feedback submissions to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	FeedbackBug         = "bug"
	FeedbackImprovement = "improvement"

	colorRed   = 0xed4245
	colorGreen = 0x57f287
)

// Attachment is an optional image shipped alongside the feedback.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Feedback is one structured submission from the widget's feedback form.
type Feedback struct {
	Type         string
	Subject      string
	Description  string
	ContactEmail string

	UserAgent string
	ClientIP  string
	Country   string

	Image *Attachment
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
	Timestamp string `json:"timestamp"`
}

type webhookPayload struct {
	Embeds    []embed `json:"embeds"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
}

// DiscordClient posts feedback to a configured webhook. Delivery failure is
// an error the caller surfaces; feedback must not vanish silently.
type DiscordClient struct {
	webhookURL string
	http       *http.Client
}

func NewDiscordClient(webhookURL string) *DiscordClient {
	return &DiscordClient{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *DiscordClient) Configured() bool {
	return c.webhookURL != ""
}

func (c *DiscordClient) Send(ctx context.Context, fb Feedback) error {
	if !c.Configured() {
		return fmt.Errorf("discord webhook not configured")
	}

	payload := webhookPayload{
		Embeds:   []embed{buildEmbed(fb)},
		Username: "InoBot Feedback",
	}

	var (
		body        io.Reader
		contentType string
		err         error
	)
	if fb.Image != nil {
		body, contentType, err = multipartBody(payload, fb.Image)
		if err != nil {
			return err
		}
	} else {
		raw, merr := json.Marshal(payload)
		if merr != nil {
			return fmt.Errorf("failed to marshal webhook payload: %w", merr)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, body)
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildEmbed(fb Feedback) embed {
	title := "💡 Improvement Suggestion"
	color := colorGreen
	if fb.Type == FeedbackBug {
		title = "🐛 Bug Report"
		color = colorRed
	}

	e := embed{
		Title:       title,
		Description: fmt.Sprintf("**%s**\n\n%s", fb.Subject, fb.Description),
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	e.Footer.Text = "InoBot Feedback System"

	if fb.UserAgent != "" {
		e.Fields = append(e.Fields, embedField{
			Name:  "💻 Environment",
			Value: fb.UserAgent,
		})
	}

	var network []string
	if fb.Country != "" {
		network = append(network, fmt.Sprintf("**Country:** %s", fb.Country))
	}
	if fb.ClientIP != "" {
		network = append(network, fmt.Sprintf("**IP:** %s", fb.ClientIP))
	}
	if len(network) > 0 {
		value := network[0]
		for _, line := range network[1:] {
			value += "\n" + line
		}
		e.Fields = append(e.Fields, embedField{Name: "🌍 Network & Location", Value: value})
	}

	if fb.ContactEmail != "" {
		e.Fields = append(e.Fields, embedField{Name: "📧 Contact", Value: fb.ContactEmail})
	}

	return e
}

// multipartBody packages the JSON payload and the image the way the Discord
// webhook API expects: a payload_json field plus a files[0] part.
func multipartBody(payload webhookPayload, image *Attachment) (io.Reader, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("payload_json", string(raw)); err != nil {
		return nil, "", fmt.Errorf("failed to write payload field: %w", err)
	}

	part, err := w.CreateFormFile("files[0]", image.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write image data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
