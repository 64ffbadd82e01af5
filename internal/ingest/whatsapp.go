package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const graphAPIURL = "https://graph.facebook.com/v17.0"

// WhatsApp handles WhatsApp Business messages, either pushed via
// webhook payloads or polled from the Graph API.
type WhatsApp struct {
	token         string
	phoneNumberID string
	apiURL        string
	client        *http.Client
	logger        *slog.Logger
}

func NewWhatsApp(token, phoneNumberID string, logger *slog.Logger) *WhatsApp {
	return &WhatsApp{
		token:         token,
		phoneNumberID: phoneNumberID,
		apiURL:        graphAPIURL,
		client:        &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

type whatsappMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// WhatsAppWebhook is the envelope Meta posts to webhook receivers.
type WhatsAppWebhook struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []whatsappMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func normalizeWhatsApp(raw whatsappMessage) Message {
	return Message{
		Sender:         raw.From,
		App:            "whatsapp",
		Message:        raw.Text.Body,
		ConversationID: raw.ID,
	}
}

// NormalizeWebhook flattens a webhook envelope into messages.
func NormalizeWebhook(payload WhatsAppWebhook) []Message {
	var out []Message
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				out = append(out, normalizeWhatsApp(msg))
			}
		}
	}
	return out
}

// HandleWebhook forwards every message in a webhook payload.
func (wa *WhatsApp) HandleWebhook(ctx context.Context, payload WhatsAppWebhook, f *Forwarder) {
	for _, msg := range NormalizeWebhook(payload) {
		if err := f.Forward(ctx, "/webhook", msg); err != nil {
			wa.logger.Error("failed forwarding WhatsApp message", "error", err)
		}
	}
}

func (wa *WhatsApp) Fetch(ctx context.Context) ([]Message, error) {
	if wa.token == "" || wa.phoneNumberID == "" {
		wa.logger.Warn("whatsapp credentials not configured")
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s/messages", wa.apiURL, wa.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+wa.token)

	resp, err := wa.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatsapp status %d", resp.StatusCode)
	}

	var payload struct {
		Data []whatsappMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode whatsapp response: %w", err)
	}

	out := make([]Message, 0, len(payload.Data))
	for _, m := range payload.Data {
		out = append(out, normalizeWhatsApp(m))
	}
	return out, nil
}

func (wa *WhatsApp) Ingest(ctx context.Context, f *Forwarder) error {
	msgs, err := wa.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := f.Forward(ctx, "/webhook", msg); err != nil {
			wa.logger.Error("failed forwarding WhatsApp message", "error", err)
		}
	}
	return nil
}
