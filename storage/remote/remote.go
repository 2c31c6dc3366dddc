/*
Package remote implements the storage.Adapter contract against a remote PTO
records API.

PURPOSE:
  Each adapter operation maps 1:1 onto one HTTP call: a base URL plus a
  per-operation path template, with ":id" substituted for read, update and
  delete. No batching, no fan-out, no internal retries.

ERROR MAPPING:
  A non-success status is surfaced as a *StatusError carrying the status
  code and response body, with one exception: 404 on Get and Delete is the
  first-class not-found result (nil, nil), and 404 on Update maps to
  storage.ErrNotFound.

SEE ALSO:
  - storage/adapter.go: the contract this package implements
  - config/config.go: base URL, path templates, bearer token
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warp/pto-scheduler/config"
	"github.com/warp/pto-scheduler/pto"
	"github.com/warp/pto-scheduler/storage"
)

// StatusError is a non-success response from the remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote pto api error: %d - %s", e.StatusCode, e.Body)
}

// Client is the remote-API adapter.
type Client struct {
	baseURL   string
	apiKey    string
	endpoints config.Endpoints
	http      *http.Client
}

var _ storage.Adapter = (*Client)(nil)

// New creates a remote adapter. The timeout bounds every HTTP call.
func New(cfg config.Remote, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		endpoints: cfg.Endpoints,
		http:      &http.Client{Timeout: timeout},
	}
}

// Create persists a new record via POST.
func (c *Client) Create(ctx context.Context, rec pto.Request) (*pto.Request, error) {
	var out pto.Request
	if err := c.do(ctx, http.MethodPost, c.endpoints.Create, rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a record; 404 yields (nil, nil).
func (c *Client) Get(ctx context.Context, id string) (*pto.Request, error) {
	var out pto.Request
	err := c.do(ctx, http.MethodGet, withID(c.endpoints.Read, id), nil, &out)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends the partial fields via PUT and returns the merged record.
func (c *Client) Update(ctx context.Context, id string, fields pto.Fields) (*pto.Request, error) {
	var out pto.Request
	err := c.do(ctx, http.MethodPut, withID(c.endpoints.Update, id), fields, &out)
	if isNotFound(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record; 404 yields (nil, nil).
func (c *Client) Delete(ctx context.Context, id string) (*pto.Request, error) {
	var out pto.Request
	err := c.do(ctx, http.MethodDelete, withID(c.endpoints.Delete, id), nil, &out)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches all records.
func (c *Client) List(ctx context.Context) ([]pto.Request, error) {
	var out []pto.Request
	if err := c.do(ctx, http.MethodGet, c.endpoints.List, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one HTTP call and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote pto api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func withID(template, id string) string {
	return strings.ReplaceAll(template, ":id", id)
}

func isNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusNotFound
}
