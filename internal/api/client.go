// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry budget for idempotent state fetches.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize bounds response body reads.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Shared HTTP client with connection pooling for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common backend failures.
var (
	// ErrNoThread indicates a call was attempted without a thread id.
	ErrNoThread = errors.New("thread id is required")

	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrRateLimited indicates the local send budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the agent backend on behalf of one acting user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int

	// limiter caps outgoing requests so a misbehaving loop cannot hammer
	// the backend. nil disables limiting.
	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
	}
}

// WithTimeout sets the per-request timeout. The shared pooled transport is
// kept; only this client's deadline changes.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	client := *c.httpClient
	client.Timeout = timeout
	c.httpClient = &client
	return c
}

// WithMaxRetries sets the retry budget for state fetches.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithRateLimit caps requests per minute (0 disables the cap).
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Chat sends a user message on a thread and returns the resulting full
// state. The call is never auto-retried: replaying a send would make the
// agent do the work twice.
func (c *Client) Chat(ctx context.Context, threadID, query string) (*StateResponse, error) {
	if threadID == "" {
		return nil, ErrNoThread
	}
	if err := c.reserve(); err != nil {
		return nil, err
	}
	return c.post(ctx, "/chat", chatRequest{Query: query, ThreadID: threadID})
}

// FetchState loads the current message/task state of a thread without
// sending a message (an empty-query chat call). Transient failures are
// retried with exponential backoff; the call is idempotent.
func (c *Client) FetchState(ctx context.Context, threadID string) (*StateResponse, error) {
	if threadID == "" {
		return nil, ErrNoThread
	}
	if err := c.reserve(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		resp, err := c.post(ctx, "/chat", chatRequest{Query: "", ThreadID: threadID})
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// UpdateState refreshes a thread's state. When tasks is non-nil the entire
// mapping is persisted backend-side, replacing whatever was there; callers
// are expected to push the full current mapping, never a partial one.
func (c *Client) UpdateState(ctx context.Context, threadID string, tasks map[string]Task) (*StateResponse, error) {
	if threadID == "" {
		return nil, ErrNoThread
	}
	if err := c.reserve(); err != nil {
		return nil, err
	}
	return c.post(ctx, "/update_state", updateStateRequest{ThreadID: threadID, Tasks: tasks})
}

// =============================================================================
// TRANSPORT
// =============================================================================

// reserve takes one token from the rate limiter without blocking the caller.
func (c *Client) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limiter != nil && !c.limiter.Allow() {
		return ErrRateLimited
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*StateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hanu/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorFrom(resp.StatusCode, data)
	}

	var state StateResponse
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &state, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorFrom converts an error response into an *APIError, preserving the
// backend's code/message envelope when present.
func errorFrom(status int, body []byte) error {
	var envelope apiErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
			Status:  status,
		}
	}
	return &APIError{
		Message: strings.TrimSpace(string(body)),
		Status:  status,
	}
}

// isRetryable reports whether a fetch failure is worth retrying.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests ||
			(apiErr.Status >= 500 && apiErr.Status < 600)
	}
	return false
}

// backoff returns the delay before retry attempt n (1-based).
func backoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
