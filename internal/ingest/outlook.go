package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const graphMSAPIURL = "https://graph.microsoft.com/v1.0"

// Outlook pulls mail from the Microsoft Graph API.
type Outlook struct {
	token  string
	userID string
	apiURL string
	client *http.Client
	logger *slog.Logger
}

func NewOutlook(token, userID string, logger *slog.Logger) *Outlook {
	if userID == "" {
		userID = "me"
	}
	return &Outlook{
		token:  token,
		userID: userID,
		apiURL: graphMSAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type outlookMessage struct {
	Subject        string `json:"subject"`
	ConversationID string `json:"conversationId"`
	From           struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

func normalizeOutlook(raw outlookMessage) Message {
	sender := raw.From.EmailAddress.Address
	if sender == "" {
		sender = "unknown"
	}
	return Message{
		Sender:         sender,
		App:            "outlook",
		Message:        raw.Subject,
		ConversationID: raw.ConversationID,
	}
}

func (o *Outlook) Fetch(ctx context.Context) ([]Message, error) {
	if o.token == "" {
		o.logger.Warn("outlook token not configured")
		return nil, nil
	}

	url := fmt.Sprintf("%s/users/%s/messages", o.apiURL, o.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.token)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("outlook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("outlook status %d", resp.StatusCode)
	}

	var payload struct {
		Value []outlookMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode outlook response: %w", err)
	}

	out := make([]Message, 0, len(payload.Value))
	for _, m := range payload.Value {
		out = append(out, normalizeOutlook(m))
	}
	return out, nil
}

func (o *Outlook) Ingest(ctx context.Context, f *Forwarder) error {
	msgs, err := o.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := f.Forward(ctx, "/webhook", msg); err != nil {
			o.logger.Error("failed forwarding Outlook message", "error", err)
		}
	}
	return nil
}
