package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Aula pulls messages from an Aula-compatible REST endpoint.
type Aula struct {
	apiURL string
	token  string
	client *http.Client
	logger *slog.Logger
}

func NewAula(apiURL, token string, logger *slog.Logger) *Aula {
	return &Aula{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type aulaMessage struct {
	Sender         string `json:"sender"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func normalizeAula(raw aulaMessage) Message {
	sender := raw.Sender
	if sender == "" {
		sender = "unknown"
	}
	return Message{
		Sender:         sender,
		App:            "aula",
		Message:        raw.Message,
		ConversationID: raw.ConversationID,
	}
}

func (a *Aula) Fetch(ctx context.Context) ([]Message, error) {
	if a.apiURL == "" || a.token == "" {
		a.logger.Warn("aula API not configured")
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"/messages", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aula request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aula status %d", resp.StatusCode)
	}

	var payload struct {
		Messages []aulaMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode aula response: %w", err)
	}

	out := make([]Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		out = append(out, normalizeAula(m))
	}
	return out, nil
}

func (a *Aula) Ingest(ctx context.Context, f *Forwarder) error {
	msgs, err := a.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := f.Forward(ctx, "/webhook", msg); err != nil {
			a.logger.Error("failed forwarding Aula message", "error", err)
		}
	}
	return nil
}
