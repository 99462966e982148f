// Package auth gates public submissions behind Cloudflare Turnstile.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Outcome distinguishes "verification skipped by configuration" from an
// actual pass or fail, so logs and tests can tell them apart.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomePassed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// TurnstileVerifier checks captcha tokens against the Cloudflare siteverify
// endpoint. A missing token or secret skips verification entirely; outside
// production-hardened deployments the captcha is best-effort.
type TurnstileVerifier struct {
	secret    string
	verifyURL string
	http      *http.Client
}

func NewTurnstileVerifier(secret string) *TurnstileVerifier {
	return &TurnstileVerifier{
		secret:    secret,
		verifyURL: defaultVerifyURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewTurnstileVerifierWithURL overrides the siteverify endpoint, for tests.
func NewTurnstileVerifierWithURL(secret, verifyURL string) *TurnstileVerifier {
	v := NewTurnstileVerifier(secret)
	v.verifyURL = verifyURL
	return v
}

// Verify checks a Turnstile token. Transport failures are reported alongside
// OutcomeFailed; it is the caller's policy whether a failure blocks.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (Outcome, error) {
	if token == "" || v.secret == "" {
		return OutcomeSkipped, nil
	}

	if remoteIP == "" {
		remoteIP = "unknown"
	}
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
		"remoteip": {remoteIP},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	if !result.Success {
		return OutcomeFailed, fmt.Errorf("turnstile rejected token: %v", result.ErrorCodes)
	}
	return OutcomePassed, nil
}
