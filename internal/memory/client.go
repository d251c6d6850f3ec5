// Package memory provides a thin client for the hosted memory service.
// The service owns storage and semantic search; this client only calls
// through to its REST API.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/raphaelgruber/studymate/internal/models"
)

// Sentinel errors for the router's failure handling.
var (
	// ErrUnavailable means the service could not be reached or returned a
	// server error.
	ErrUnavailable = errors.New("memory service unavailable")

	// ErrAuthFailed means the API key was rejected.
	ErrAuthFailed = errors.New("memory service authentication failed")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("memory record not found")
)

// Client is a REST client for the memory service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a memory client for the given endpoint and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// record is the wire shape of a stored memory.
type record struct {
	ID        string    `json:"id"`
	Memory    string    `json:"memory"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r record) toModel(userID string) models.MemoryRecord {
	uid := r.UserID
	if uid == "" {
		uid = userID
	}
	return models.MemoryRecord{
		ID:        r.ID,
		UserID:    uid,
		Text:      r.Memory,
		CreatedAt: r.CreatedAt,
	}
}

// Add stores a fact for a user and returns the created record.
func (c *Client) Add(ctx context.Context, userID, text string) (models.MemoryRecord, error) {
	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": text},
		},
		"user_id": userID,
		"metadata": map[string]string{
			"source": "conversation",
		},
	}

	var results []record
	if err := c.do(ctx, http.MethodPost, "/v1/memories/", payload, &results); err != nil {
		return models.MemoryRecord{}, fmt.Errorf("add memory: %w", err)
	}

	// The service may split or rewrite the fact; report the first record.
	if len(results) == 0 {
		return models.MemoryRecord{UserID: userID, Text: text}, nil
	}
	rec := results[0].toModel(userID)
	if rec.Text == "" {
		rec.Text = text
	}
	return rec, nil
}

// Search runs a semantic search over a user's memories. Results keep the
// service's relevance order.
func (c *Client) Search(ctx context.Context, userID, query string, limit int) ([]models.MemoryRecord, error) {
	payload := map[string]any{
		"query":   query,
		"user_id": userID,
		"limit":   limit,
	}

	var results []record
	if err := c.do(ctx, http.MethodPost, "/v1/memories/search/", payload, &results); err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	out := make([]models.MemoryRecord, 0, len(results))
	for _, r := range results {
		out = append(out, r.toModel(userID))
	}
	return out, nil
}

// List returns all memories stored for a user.
func (c *Client) List(ctx context.Context, userID string, limit int) ([]models.MemoryRecord, error) {
	path := "/v1/memories/?" + url.Values{
		"user_id": {userID},
		"limit":   {fmt.Sprint(limit)},
	}.Encode()

	var results []record
	if err := c.do(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	out := make([]models.MemoryRecord, 0, len(results))
	for _, r := range results {
		out = append(out, r.toModel(userID))
	}
	return out, nil
}

// Update replaces the text of an existing record. The service may rewrite
// the text; the returned record reports what was actually stored.
func (c *Client) Update(ctx context.Context, recordID, text string) (models.MemoryRecord, error) {
	payload := map[string]any{"text": text}

	var updated record
	if err := c.do(ctx, http.MethodPut, "/v1/memories/"+url.PathEscape(recordID)+"/", payload, &updated); err != nil {
		return models.MemoryRecord{}, fmt.Errorf("update memory: %w", err)
	}

	rec := updated.toModel("")
	if rec.ID == "" {
		rec.ID = recordID
	}
	if rec.Text == "" {
		rec.Text = text
	}
	return rec, nil
}

// Delete removes a single memory record.
func (c *Client) Delete(ctx context.Context, recordID string) error {
	if err := c.do(ctx, http.MethodDelete, "/v1/memories/"+url.PathEscape(recordID)+"/", nil, nil); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

// DeleteAll removes every memory stored for a user.
func (c *Client) DeleteAll(ctx context.Context, userID string) error {
	path := "/v1/memories/?" + url.Values{"user_id": {userID}}.Encode()
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete all memories: %w", err)
	}
	return nil
}

// do executes one API call and decodes the response into result.
func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	case resp.StatusCode >= 400:
		return fmt.Errorf("request failed: %s - %s", resp.Status, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		// Some endpoints wrap the list in {"results": [...]}.
		var wrapped struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(respBody, &wrapped); err == nil && len(wrapped.Results) > 0 {
			respBody = wrapped.Results
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
