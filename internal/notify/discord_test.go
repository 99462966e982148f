package notify

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendBugReport(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewDiscordClient(srv.URL)
	err := client.Send(context.Background(), Feedback{
		Type:         FeedbackBug,
		Subject:      "Widget crashes",
		Description:  "Opening the chat twice crashes the page.",
		ContactEmail: "user@example.com",
		UserAgent:    "Mozilla/5.0",
		ClientIP:     "203.0.113.7",
		Country:      "IN",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}

	var payload webhookPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}
	e := payload.Embeds[0]
	if !strings.Contains(e.Title, "Bug Report") {
		t.Errorf("expected bug report title, got %q", e.Title)
	}
	if e.Color != colorRed {
		t.Errorf("expected red color for bug, got %#x", e.Color)
	}
	if !strings.Contains(e.Description, "Widget crashes") {
		t.Errorf("embed description missing subject: %q", e.Description)
	}

	var names []string
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"Environment", "Network", "Contact"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected a %s field, got fields %q", want, joined)
		}
	}
}

func TestSendImprovementColor(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewDiscordClient(srv.URL)
	if err := client.Send(context.Background(), Feedback{
		Type:        FeedbackImprovement,
		Subject:     "Dark mode",
		Description: "Please add a dark theme.",
	}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	var payload webhookPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	e := payload.Embeds[0]
	if e.Color != colorGreen {
		t.Errorf("expected green color for improvement, got %#x", e.Color)
	}
	if strings.Contains(e.Title, "Bug") {
		t.Errorf("unexpected bug title for improvement: %q", e.Title)
	}
	if len(e.Fields) != 0 {
		t.Errorf("expected no optional fields, got %d", len(e.Fields))
	}
}

func TestSendWithImageUsesMultipart(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewDiscordClient(srv.URL)
	err := client.Send(context.Background(), Feedback{
		Type:        FeedbackBug,
		Subject:     "Broken layout",
		Description: "Screenshot attached.",
		Image: &Attachment{
			Name:        "screenshot.png",
			ContentType: "image/png",
			Data:        []byte{0x89, 'P', 'N', 'G'},
		},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(gotContentType)
	if err != nil {
		t.Fatalf("failed to parse content type %q: %v", gotContentType, err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("expected multipart body, got %q", mediaType)
	}

	reader := multipart.NewReader(strings.NewReader(string(gotBody)), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}

	payloadJSON, ok := form.Value["payload_json"]
	if !ok || len(payloadJSON) != 1 {
		t.Fatal("expected a payload_json field")
	}
	var payload webhookPayload
	if err := json.Unmarshal([]byte(payloadJSON[0]), &payload); err != nil {
		t.Fatalf("failed to decode payload_json: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}

	files, ok := form.File["files[0]"]
	if !ok || len(files) != 1 {
		t.Fatal("expected a files[0] part")
	}
	if files[0].Filename != "screenshot.png" {
		t.Errorf("expected filename screenshot.png, got %q", files[0].Filename)
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewDiscordClient(srv.URL)
	err := client.Send(context.Background(), Feedback{Type: FeedbackBug, Subject: "x", Description: "y"})
	if err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestSendUnconfigured(t *testing.T) {
	client := NewDiscordClient("")
	if client.Configured() {
		t.Fatal("empty webhook should not report configured")
	}
	if err := client.Send(context.Background(), Feedback{Type: FeedbackBug, Subject: "x", Description: "y"}); err == nil {
		t.Fatal("expected error when webhook is unconfigured")
	}
}
