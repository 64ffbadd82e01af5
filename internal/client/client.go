// Package client is a thin HTTP wrapper around the msgmon API, used by
// the command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SummaryTask mirrors the task shape returned by the API.
type SummaryTask struct {
	ID             int64   `json:"id"`
	ConversationID string  `json:"conversation_id"`
	Status         string  `json:"status"`
	Summary        *string `json:"summary"`
	CreatedAt      string  `json:"created_at"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ListTasks returns all summary tasks.
func (c *Client) ListTasks(ctx context.Context) ([]SummaryTask, error) {
	var tasks []SummaryTask
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListConversations returns the distinct conversation IDs known through
// summary tasks, sorted.
func (c *Client) ListConversations(ctx context.Context) ([]string, error) {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, t := range tasks {
		if !seen[t.ConversationID] {
			seen[t.ConversationID] = true
			ids = append(ids, t.ConversationID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetSummary returns the most recent completed summary for a conversation,
// or an error when none exists.
func (c *Client) GetSummary(ctx context.Context, conversationID string) (string, error) {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		if t.ConversationID == conversationID && t.Status == "completed" && t.Summary != nil {
			return *t.Summary, nil
		}
	}
	return "", fmt.Errorf("no completed summary for conversation %s", conversationID)
}

// RequestSummary enqueues a summarization task for a conversation.
func (c *Client) RequestSummary(ctx context.Context, conversationID string) (SummaryTask, error) {
	var task SummaryTask
	err := c.do(ctx, http.MethodPost, "/tasks", map[string]string{"conversation_id": conversationID}, &task)
	return task, err
}

// RequestSuggestions asks the API for reply suggestions for a conversation.
func (c *Client) RequestSuggestions(ctx context.Context, conversationID string, limit int) ([]string, error) {
	body := map[string]any{"conversation_id": conversationID}
	if limit > 0 {
		body["limit"] = limit
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodPost, "/suggestions", body, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Search queries stored messages.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	v := url.Values{"q": {query}}
	if limit > 0 {
		v.Set("limit", fmt.Sprint(limit))
	}
	var results []map[string]any
	if err := c.do(ctx, http.MethodGet, "/search?"+v.Encode(), nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}
