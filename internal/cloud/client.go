package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andoniskgr/heating-system/internal/config"
)

// DefaultTimeout bounds a single store request.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of a store response is read.
const maxResponseBody = 64 * 1024

// Status is the controller's current state as published to system.json.
type Status struct {
	CurrentStatus string  `json:"current_status"`
	CurrentLevel  float64 `json:"current_level"`
	LastUpdate    string  `json:"last_update"`
}

// HistoryEntry is one row appended to history.json.
type HistoryEntry struct {
	Time   string  `json:"time"`
	Status string  `json:"status"`
	Level  float64 `json:"level"`
}

// Client talks to the remote key-value store: a Firebase-style REST
// interface where each top-level key is a JSON document reachable at
// <base>/<key>.json, optionally authenticated with an auth query
// parameter.
type Client struct {
	// BaseURL is the store root, e.g. "https://example.firebaseio.com/".
	BaseURL string

	// AuthToken, when non-empty, is sent as the auth query parameter.
	AuthToken string

	// HTTPClient is the underlying HTTP client.
	HTTPClient *http.Client
}

// NewClient builds a store client from the cloud configuration section.
func NewClient(cfg config.Cloud) *Client {
	return &Client{
		BaseURL:    cfg.BaseURL,
		AuthToken:  cfg.AuthToken,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// endpoint builds the URL for one document key.
func (c *Client) endpoint(key string) string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	u := base + "/" + key + ".json"
	if c.AuthToken != "" {
		u += "?auth=" + url.QueryEscape(c.AuthToken)
	}
	return u
}

// do issues one request with a JSON body and returns the response body.
// Status codes outside 2xx are classified errors.
func (c *Client) do(ctx context.Context, method, key string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", key, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(key), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", key, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError("store unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, newNetworkError("failed to read store response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(method+" "+key, resp.StatusCode)
	}
	return data, nil
}

// FetchCommand reads the current control record. A store with no pending
// command returns (nil, nil).
func (c *Client) FetchCommand(ctx context.Context) (*Command, error) {
	data, err := c.do(ctx, http.MethodGet, "command", nil)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, newParseError("malformed command document", err)
	}
	return &cmd, nil
}

// UpdateStatus merges the current controller state into system.json.
func (c *Client) UpdateStatus(ctx context.Context, status Status) error {
	_, err := c.do(ctx, http.MethodPatch, "system", status)
	return err
}

// AppendHistory appends one log row to history.json.
func (c *Client) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := c.do(ctx, http.MethodPost, "history", entry)
	return err
}

// AckManualUpdate clears the manual refresh flag after it was served.
func (c *Client) AckManualUpdate(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPatch, "command", map[string]bool{"manual_update": false})
	return err
}

// TestConnection writes a probe document so startup can verify the store
// is reachable with the configured token.
func (c *Client) TestConnection(ctx context.Context, timestamp string) error {
	_, err := c.do(ctx, http.MethodPut, "test", map[string]string{
		"test":      "connection",
		"timestamp": timestamp,
	})
	return err
}
