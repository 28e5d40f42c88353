// Package telnyxclient is a small REST client for the Telnyx v2 Messages
// API, covering only the outbound-SMS surface this service sends through.
package telnyxclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

const (
	defaultBaseURL = "https://api.telnyx.com/v2"
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
	defaultBackoff = 250 * time.Millisecond

	userAgent = "dental-booking-bridge/0.1"

	// maxErrorBody caps how much of an undecodable error response is kept
	// in the error string.
	maxErrorBody = 300
)

// Client posts messages to the Telnyx v2 API with bearer auth and bounded
// retries on transient failures.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API host, normally a test
// server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each send attempt, not the whole retry sequence.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets how many times a transient failure is retried after the
// first attempt.
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = n
	}
}

// WithBackoff sets the base delay between retries; each retry doubles it.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Telnyx client. The API key is required; everything
// else has defaults.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("telnyxclient: api key required")
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retries: defaultRetries,
		backoff: defaultBackoff,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendMessage posts one outbound SMS and returns the created message
// resource.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, "/messages", req.payload())
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data Message `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("telnyxclient: decode response: %w", err)
	}
	return &envelope.Data, nil
}

// post marshals the payload, sends it, and retries transient failures with
// exponential backoff. A dead request context ends the loop no matter what
// the last attempt returned.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telnyxclient: marshal payload: %w", err)
	}
	for attempt := 0; ; attempt++ {
		raw, err := c.attempt(ctx, path, body)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil || attempt >= c.retries || !retryable(err) {
			return nil, err
		}
		c.logger.Warn("telnyx request failed, retrying",
			"path", path,
			"attempt", attempt+1,
			"error", err,
		)
		if pauseErr := c.pause(ctx, attempt); pauseErr != nil {
			return nil, pauseErr
		}
	}
}

// attempt is one HTTP exchange. Non-2xx responses come back as *APIError;
// transport failures keep their cause wrapped so retryable can inspect it.
func (c *Client) attempt(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telnyxclient: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("telnyxclient: http error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telnyxclient: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// retryable reports whether a failed attempt is worth repeating: rate
// limits, server-side errors, and transport timeouts are; cancellation and
// client-side API rejections are not.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.Canceled)
}

func (c *Client) pause(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff << attempt)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// APIError is a non-2xx response from the Telnyx API.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail
	Body       string
}

// ErrorDetail is one entry of the Telnyx error envelope.
type ErrorDetail struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// newAPIError decodes the Telnyx error envelope, falling back to a raw-body
// excerpt when the payload is not the documented shape.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope struct {
		Errors []ErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		apiErr.Errors = envelope.Errors
		return apiErr
	}
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody]
	}
	apiErr.Body = excerpt
	return apiErr
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		switch {
		case first.Detail != "":
			return fmt.Sprintf("telnyxclient: %s (status %d)", first.Detail, e.StatusCode)
		case first.Title != "":
			return fmt.Sprintf("telnyxclient: %s (status %d)", first.Title, e.StatusCode)
		}
	}
	if e.Body != "" {
		return fmt.Sprintf("telnyxclient: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("telnyxclient: status %d", e.StatusCode)
}
