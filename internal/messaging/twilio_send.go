package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

var twilioSendTracer = otel.Tracer("dentalbridge.internal.messaging.twilio_send")

const (
	twilioAPIBase  = "https://api.twilio.com"
	twilioAttempts = 3
)

// TwilioSender posts SMS messages through Twilio's Messages API
// (form-encoded, basic auth).
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioSender builds a sender with sane defaults.
func NewTwilioSender(accountSID, authToken, defaultFrom string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       defaultFrom,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ booking.SMSSender = (*TwilioSender)(nil)

// SendSMS dispatches a single SMS, retrying rate limits and server-side
// failures up to twilioAttempts total tries.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	if to == "" {
		return errors.New("messaging: to required")
	}
	if s.from == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dentalbridge.sms_provider", SMSProviderTwilio),
		attribute.String("dentalbridge.to", to),
	)

	var lastErr error
	for attempt := 1; attempt <= twilioAttempts; attempt++ {
		retry, err := s.deliver(ctx, to, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == twilioAttempts {
			break
		}
		if !pauseBetweenAttempts(ctx) {
			break
		}
	}

	span.RecordError(lastErr)
	s.logger.Error("failed to send twilio sms", "error", lastErr, "to", to)
	return lastErr
}

// deliver performs one Messages API call. retry reports whether the failure
// is worth another attempt: rate limits and 5xx are, other rejections are
// permanent.
func (s *TwilioSender) deliver(ctx context.Context, to, body string) (retry bool, err error) {
	form := url.Values{
		"To":   {to},
		"From": {s.from},
		"Body": {body},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("messaging: build twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("messaging: twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logSent(to, raw)
		return false, nil
	}
	retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return retry, fmt.Errorf("twilio send failed: %s", formatTwilioError(resp.StatusCode, raw))
}

func (s *TwilioSender) logSent(to string, raw []byte) {
	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.SID != "" {
		s.logger.Info("twilio sms sent", "to", to, "message_sid", parsed.SID, "status", parsed.Status)
		return
	}
	s.logger.Info("twilio sms sent", "to", to)
}

// pauseBetweenAttempts sleeps a jittered delay so concurrent retries spread
// out, giving up early when the context dies.
func pauseBetweenAttempts(ctx context.Context) bool {
	delay := time.Duration(200+rand.Intn(300)) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// formatTwilioError renders Twilio's JSON error payload, falling back to
// the raw body.
func formatTwilioError(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, text)
}
