// Package ingest holds the platform adapters that fetch messages from
// external services, normalize them, and forward them to the API with
// bounded retry.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

const forwardAttempts = 3

// Message is the normalized shape every adapter produces, matching the
// POST /messages contract.
type Message struct {
	Sender         string `json:"sender"`
	App            string `json:"app"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	ContactID      *int64 `json:"contact_id,omitempty"`
}

// Forwarder posts normalized messages to the aggregation API.
type Forwarder struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewForwarder(baseURL, apiKey string, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Forward posts one message with up to three attempts and exponential
// backoff. Non-final failures are logged at warn; the final failure is
// returned for the adapter to report.
func (f *Forwarder) Forward(ctx context.Context, path string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= forwardAttempts; attempt++ {
		if attempt > 1 {
			backoff := forwardBackoff(attempt)
			f.logger.Warn("forward failed, retrying",
				"path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = f.post(ctx, path, body)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("forward after %d attempts: %w", forwardAttempts, lastErr)
}

func (f *Forwarder) post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// forwardBackoff doubles per attempt within the 1-10s bounds, plus
// jitter so a burst of adapters does not retry in lockstep.
func forwardBackoff(attempt int) time.Duration {
	base := time.Duration(1<<(attempt-1)) * time.Second
	if base > 10*time.Second {
		base = 10 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base/2 + 1)))
	backoff := base + jitter
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	return backoff
}

// ResolveContactID looks up a contact by exact name so the adapter can
// attach the correlation id to the message. First match wins; lookup
// failures are logged and treated as no match.
func (f *Forwarder) ResolveContactID(ctx context.Context, name string) *int64 {
	if name == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/contacts", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("contact lookup failed", "name", name, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Error("contact lookup failed", "name", name, "status", resp.StatusCode)
		return nil
	}

	var contacts []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&contacts); err != nil {
		f.logger.Error("contact lookup failed", "name", name, "error", err)
		return nil
	}
	for _, c := range contacts {
		if c.Name == name {
			id := c.ID
			return &id
		}
	}
	return nil
}
