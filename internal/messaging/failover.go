package messaging

import (
	"context"
	"errors"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// leg is one named provider in a failover chain.
type leg struct {
	name   string
	sender booking.SMSSender
}

// FailoverSender walks a chain of providers in order, stopping at the first
// success.
type FailoverSender struct {
	legs   []leg
	logger *logging.Logger
}

// NewFailoverSender builds a failover sender with named providers. Nil
// senders are skipped.
func NewFailoverSender(primary booking.SMSSender, primaryName string, secondary booking.SMSSender, secondaryName string, logger *logging.Logger) *FailoverSender {
	if logger == nil {
		logger = logging.Default()
	}
	legs := make([]leg, 0, 2)
	if primary != nil {
		legs = append(legs, leg{name: primaryName, sender: primary})
	}
	if secondary != nil {
		legs = append(legs, leg{name: secondaryName, sender: secondary})
	}
	return &FailoverSender{legs: legs, logger: logger}
}

var _ booking.SMSSender = (*FailoverSender)(nil)

// SendSMS returns nil on the first leg that delivers. When every leg fails,
// the last leg's error wins.
func (f *FailoverSender) SendSMS(ctx context.Context, to, body string) error {
	if f == nil || len(f.legs) == 0 {
		return errors.New("messaging: failover primary sender not configured")
	}
	var lastErr error
	for i, l := range f.legs {
		err := l.sender.SendSMS(ctx, to, body)
		if err == nil {
			if i > 0 {
				f.logger.Info("sms delivered via fallback provider", "provider", l.name, "to", to)
			}
			return nil
		}
		lastErr = err
		if i+1 < len(f.legs) {
			f.logger.Warn("primary sms send failed; attempting fallback",
				"provider", l.name,
				"fallback", f.legs[i+1].name,
				"error", err,
				"to", to,
			)
			continue
		}
		f.logger.Error("all sms providers failed", "provider", l.name, "error", err, "to", to)
	}
	return lastErr
}
