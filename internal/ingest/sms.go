package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const twilioAPIURL = "https://api.twilio.com/2010-04-01"

// SMS pulls messages from the Twilio REST API.
type SMS struct {
	accountSID string
	authToken  string
	apiURL     string
	client     *http.Client
	logger     *slog.Logger
}

func NewSMS(accountSID, authToken string, logger *slog.Logger) *SMS {
	return &SMS{
		accountSID: accountSID,
		authToken:  authToken,
		apiURL:     twilioAPIURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type twilioMessage struct {
	From string `json:"from"`
	Body string `json:"body"`
	SID  string `json:"sid"`
}

func normalizeSMS(raw twilioMessage) Message {
	return Message{
		Sender:         raw.From,
		App:            "sms",
		Message:        raw.Body,
		ConversationID: raw.SID,
	}
}

func (s *SMS) Fetch(ctx context.Context) ([]Message, error) {
	if s.accountSID == "" || s.authToken == "" {
		s.logger.Warn("twilio credentials not configured")
		return nil, nil
	}

	url := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.apiURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twilio status %d", resp.StatusCode)
	}

	var payload struct {
		Messages []twilioMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twilio response: %w", err)
	}

	out := make([]Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		out = append(out, normalizeSMS(m))
	}
	return out, nil
}

// Ingest fetches and forwards one batch of SMS messages.
func (s *SMS) Ingest(ctx context.Context, f *Forwarder) error {
	msgs, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		msg.ContactID = f.ResolveContactID(ctx, msg.Sender)
		if err := f.Forward(ctx, "/messages", msg); err != nil {
			s.logger.Error("failed forwarding SMS message", "error", err)
		}
	}
	return nil
}
