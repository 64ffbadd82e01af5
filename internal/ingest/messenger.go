package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Messenger pulls page conversations from the Facebook Graph API.
type Messenger struct {
	pageID    string
	pageToken string
	apiURL    string
	client    *http.Client
	logger    *slog.Logger
}

func NewMessenger(pageID, pageToken string, logger *slog.Logger) *Messenger {
	return &Messenger{
		pageID:    pageID,
		pageToken: pageToken,
		apiURL:    graphAPIURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type messengerMessage struct {
	ID   string `json:"id"`
	From struct {
		ID string `json:"id"`
	} `json:"from"`
	Message string `json:"message"`
}

func normalizeMessenger(raw messengerMessage) Message {
	sender := raw.From.ID
	if sender == "" {
		sender = "unknown"
	}
	return Message{
		Sender:         sender,
		App:            "messenger",
		Message:        raw.Message,
		ConversationID: raw.ID,
	}
}

func (m *Messenger) Fetch(ctx context.Context) ([]Message, error) {
	if m.pageID == "" || m.pageToken == "" {
		m.logger.Warn("messenger credentials not configured")
		return nil, nil
	}

	var conversations struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/%s/conversations?access_token=%s", m.apiURL, m.pageID, m.pageToken)
	if err := m.getJSON(ctx, url, &conversations); err != nil {
		return nil, err
	}

	var out []Message
	for _, conv := range conversations.Data {
		var msgs struct {
			Data []messengerMessage `json:"data"`
		}
		url := fmt.Sprintf("%s/%s/messages?access_token=%s", m.apiURL, conv.ID, m.pageToken)
		if err := m.getJSON(ctx, url, &msgs); err != nil {
			return nil, err
		}
		for _, msg := range msgs.Data {
			if msg.Message == "" {
				continue
			}
			out = append(out, normalizeMessenger(msg))
		}
	}
	return out, nil
}

func (m *Messenger) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("messenger status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode messenger response: %w", err)
	}
	return nil
}

func (m *Messenger) Ingest(ctx context.Context, f *Forwarder) error {
	msgs, err := m.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		msg.ContactID = f.ResolveContactID(ctx, msg.Sender)
		if err := f.Forward(ctx, "/messages", msg); err != nil {
			m.logger.Error("failed forwarding Messenger message", "error", err)
		}
	}
	return nil
}
