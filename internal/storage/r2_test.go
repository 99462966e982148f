package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPutUploadsUnderTimestampedKey(t *testing.T) {
	var gotPath, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		gotPath, gotContentType, gotBody = r.URL.Path, r.Header.Get("Content-Type"), string(body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://pub.example.org")
	key, err := c.Put(context.Background(), "notes.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(key, "_notes.txt") {
		t.Errorf("key %q is not timestamped filename", key)
	}
	if gotPath != "/"+key {
		t.Errorf("uploaded to %q, key is %q", gotPath, key)
	}
	if gotContentType != "text/plain" || gotBody != "hello" {
		t.Errorf("got content-type %q body %q", gotContentType, gotBody)
	}
	if c.PublicURL(key) != "https://pub.example.org/"+key {
		t.Errorf("unexpected public url %q", c.PublicURL(key))
	}
}

func TestPutErrorsOnFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Put(context.Background(), "x.txt", "", strings.NewReader("x"))
	if err == nil {
		t.Error("expected an error for a 403 response")
	}
}

func TestPutErrorsWhenUnconfigured(t *testing.T) {
	c := NewClient("", "")
	if c.Configured() {
		t.Error("empty bucket URL must report unconfigured")
	}
	if _, err := c.Put(context.Background(), "x.txt", "", strings.NewReader("x")); err == nil {
		t.Error("expected an error when unconfigured")
	}
}
