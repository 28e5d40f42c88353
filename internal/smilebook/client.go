// Package smilebook integrates with the SmileBook booking platform: a REST
// client for its availability API and a playwright driver for its hosted
// booking form.
package smilebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

const (
	defaultAPIBase = "https://api.smilebook.io"
	defaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response lands in logs and
	// error strings.
	maxErrorBody = 300
)

// Slot represents one bookable time unit as SmileBook reports it.
type Slot struct {
	ID        string `json:"id,omitempty"`
	Time      string `json:"time"` // e.g. "09:30"
	Available bool   `json:"available"`
	Provider  string `json:"provider,omitempty"`
}

// slotsResponse is the availability API envelope.
type slotsResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// Client is an HTTP client for SmileBook's availability API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout bounds each availability request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a SmileBook availability client. baseURL defaults to the
// production API when empty.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slots fetches availability for a practice on a given date. typeCode is the
// SmileBook appointment-type code; providerCode may be empty for no
// preference. Timeouts, network errors, and non-2xx responses all surface as
// errors; the caller decides whether to fall back.
func (c *Client) Slots(ctx context.Context, token, date, typeCode, providerCode string) ([]Slot, error) {
	q := url.Values{}
	q.Set("practice", token)
	q.Set("date", date)
	q.Set("type", typeCode)
	if providerCode != "" {
		q.Set("provider", providerCode)
	}

	reqURL := c.baseURL + "/v1/slots?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("smilebook: create slots request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching slots", "date", date, "type", typeCode, "provider", providerCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smilebook: slots request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("smilebook: slots request returned %d: %s", resp.StatusCode, string(body))
	}

	var result slotsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("smilebook: decode slots response: %w", err)
	}

	c.logger.Info("slots fetched", "date", date, "count", len(result.Slots))
	return result.Slots, nil
}
