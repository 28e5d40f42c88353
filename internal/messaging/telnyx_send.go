package messaging

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/messaging/telnyxclient"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

var telnyxSendTracer = otel.Tracer("dentalbridge.internal.messaging.telnyx_send")

// TelnyxSender posts SMS messages using Telnyx's V2 API.
type TelnyxSender struct {
	client             *telnyxclient.Client
	from               string
	messagingProfileID string
	logger             *logging.Logger
}

// NewTelnyxSender builds a sender for the Telnyx V2 API. The from number is
// optional when the messaging profile supplies a number pool.
func NewTelnyxSender(apiKey, messagingProfileID, from string, logger *logging.Logger) (*TelnyxSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	client, err := telnyxclient.NewClient(apiKey, telnyxclient.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &TelnyxSender{
		client:             client,
		from:               from,
		messagingProfileID: messagingProfileID,
		logger:             logger,
	}, nil
}

var _ booking.SMSSender = (*TelnyxSender)(nil)

// SendSMS dispatches a single SMS via Telnyx, retrying transient failures.
func (s *TelnyxSender) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := telnyxSendTracer.Start(ctx, "messaging.telnyx.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dentalbridge.sms_provider", SMSProviderTelnyx),
		attribute.String("dentalbridge.to", to),
	)

	msg, err := s.client.SendMessage(ctx, telnyxclient.SendMessageRequest{
		From:               s.from,
		To:                 to,
		Text:               body,
		MessagingProfileID: s.messagingProfileID,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to send telnyx sms", "error", err, "to", to)
		return err
	}
	s.logger.Info("telnyx sms sent", "to", to, "message_id", msg.ID, "status", msg.Status)
	return nil
}
