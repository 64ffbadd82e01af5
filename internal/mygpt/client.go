// Package mygpt is the HTTP client for the external myGPT completion
// endpoint: a prompt goes in, a single text answer comes out.
package mygpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUpstream marks any failure of the external API: timeout, non-2xx,
// malformed or empty response. Callers decide whether to fall back or
// surface it; it is never silently turned into a success.
var ErrUpstream = errors.New("mygpt upstream failure")

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type request struct {
	Prompt string `json:"prompt"`
}

// response covers the field names the API has answered with across
// versions; the first non-empty one wins.
type response struct {
	Response string `json:"response"`
	Summary  string `json:"summary"`
	Answer   string `json:"answer"`
}

// Generate sends a prompt and returns the answer text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", ErrUpstream, err)
	}

	for _, text := range []string{apiResp.Response, apiResp.Summary, apiResp.Answer} {
		if text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: empty response", ErrUpstream)
}
