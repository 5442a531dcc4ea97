// package api implements the REST client for the MixView backend.
//
// All traffic to third-party music services flows through the backend; this
// client only ever talks to the backend itself. Errors carry the HTTP status
// and the backend's detail message, and nothing here retries on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mixview/mixview/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the backend address used when none is configured.
	DefaultBaseURL = "http://localhost:8001"

	defaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the MixView backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	limiter    *rate.Limiter
}

// NewClient creates a backend client for the given base URL.
//
// An empty baseURL falls back to [DefaultBaseURL]; a nil httpClient gets a
// default with a request timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
	}
}

// BaseURL returns the backend base URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	return c.token
}

// SetRateLimit reconfigures the client-side request limiter.
//
// Zero or negative rps disables limiting.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// doRequest performs a JSON request against the backend and decodes the
// response into out when out is non-nil.
//
// Error responses surface the FastAPI detail message alongside the status
// code. A 401 maps to [shared.ErrNotAuthenticated] so callers can prompt for
// a fresh login; no request is ever retried here.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if detail := readDetail(resp.Body); detail != "" {
			return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, detail)
		}
		return shared.ErrNotAuthenticated
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if detail := readDetail(resp.Body); detail != "" {
			return fmt.Errorf("backend error (status %d): %s", resp.StatusCode, detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// readDetail extracts the FastAPI {"detail": "..."} message from an error body.
func readDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}

// APIResponse contains the raw result of a passthrough request.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a raw GET against the backend, bypassing typed decoding.
//
// Used by the debug `api` command; the bearer token still applies.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.raw(ctx, http.MethodGet, path, nil)
}

// Post performs a raw POST with a JSON payload against the backend.
func (c *Client) Post(ctx context.Context, path string, payload []byte) (*APIResponse, error) {
	return c.raw(ctx, http.MethodPost, path, payload)
}

func (c *Client) raw(ctx context.Context, method, path string, payload []byte) (*APIResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	response := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		response.IsJSON = true
		response.JSONData = jsonData
	}

	return response, nil
}
