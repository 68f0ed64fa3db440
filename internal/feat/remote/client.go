package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foliohq/folio/internal/feat/content"
	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
)

// Client is the typed gateway to the remote content store.
//
// Read operations (list, get, count) are fail-soft: any transport or status
// error is logged and absorbed into an empty or absent result, so callers
// always have a renderable state. Write operations (create, update, delete,
// upload) fail outward with a typed content.StoreError; swallowing a write
// failure would desynchronize the UI from the store.
//
// Timeouts are delegated to the underlying http.Client; no operation is
// retried here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a gateway for the configured remote store.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Remote.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Remote.TimeoutDuration(),
		},
		log: log,
	}
}

// Start logs the gateway target. The remote store is not probed; a dead
// store degrades to empty collections, never to a failed startup.
func (c *Client) Start(ctx context.Context) error {
	c.log.Infof("Content gateway ready: %s", c.baseURL)
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// getJSON performs a read-path GET. The caller decides how to absorb errors.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return fmt.Errorf("cannot reach content store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("content store returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}

// listOf fetches a collection fail-soft: on any failure it logs and returns
// an empty slice, never nil and never an error.
func listOf[T any](ctx context.Context, c *Client, path string) []T {
	var out []T
	if err := c.getJSON(ctx, path, &out); err != nil {
		c.log.Errorf("list %s failed, serving empty collection: %v", path, err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// getOne fetches a single resource fail-soft: absent or unreachable both
// resolve to nil.
func getOne[T any](ctx context.Context, c *Client, path string) *T {
	var out T
	if err := c.getJSON(ctx, path, &out); err != nil {
		c.log.Errorf("get %s failed, serving absent value: %v", path, err)
		return nil
	}
	return &out
}

type countResponse struct {
	Count int `json:"count"`
}

// countOf fetches a collection count fail-soft, defaulting to zero.
func (c *Client) countOf(ctx context.Context, path string) int {
	var out countResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		c.log.Errorf("count %s failed, serving zero: %v", path, err)
		return 0
	}
	return out.Count
}

// writeJSON performs a write-path request with a JSON payload, decoding the
// response into out when non-nil. Failures surface as typed store errors.
func (c *Client) writeJSON(ctx context.Context, op, method, path string, payload any, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return content.NewStoreError(content.KindUnknown, op, "Could not encode the request.", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.write(ctx, op, method, path, body, contentType, out)
}

// write performs a write-path request. The store must return the resource
// body on create/update; out being non-nil enforces that an empty success
// body counts as a rejection.
func (c *Client) write(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return classifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return content.NewStoreError(content.KindNotFound, op, "The item no longer exists in the content store.", nil)
	}
	if resp.StatusCode >= 400 {
		return content.NewStoreError(content.KindServerRejected, op,
			fmt.Sprintf("The content store rejected the request (status %d).", resp.StatusCode), nil)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// The client needs at least the store-issued id back to reconcile
		// local state; an empty success body breaks that contract.
		return content.NewStoreError(content.KindServerRejected, op, "The content store returned an empty response.", nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return content.NewStoreError(content.KindServerRejected, op, "The content store returned an unreadable response.", err)
	}
	return nil
}

func classifyTransport(op string, err error) *content.StoreError {
	msg := "Could not reach the content store."
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "The content store took too long to respond."
	}
	return content.NewStoreError(content.KindNetwork, op, msg, err)
}

// requireID enforces the write contract: created/updated resources must come
// back with a store-issued id.
func requireID(op, id string) error {
	if id == "" {
		return content.NewStoreError(content.KindServerRejected, op, "The content store returned no id for the item.", nil)
	}
	return nil
}
