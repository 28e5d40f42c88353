package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Strategy identifiers, as they appear in config and outcomes.
const (
	StrategyAutomation = "automation"
	StrategyHandoff    = "sms-handoff"
)

// SMSSender sends a single text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// HandoffAdapter implements Adapter for practices that prefer patients book
// themselves. It texts the patient the practice's booking link and optionally
// alerts the front desk, with no browser involved.
type HandoffAdapter struct {
	sms    SMSSender
	logger *logging.Logger
}

// NewHandoffAdapter creates the SMS hand-off strategy.
func NewHandoffAdapter(sms SMSSender, logger *logging.Logger) *HandoffAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &HandoffAdapter{
		sms:    sms,
		logger: logger,
	}
}

var _ Adapter = (*HandoffAdapter)(nil)

// Name returns "sms-handoff".
func (a *HandoffAdapter) Name() string { return StrategyHandoff }

// Book texts the patient the booking link. The front-desk alert is
// best-effort and never changes the outcome; the patient text decides it.
func (a *HandoffAdapter) Book(ctx context.Context, prac practice.Config, req Request) (Outcome, error) {
	if a.sms == nil {
		a.logger.Warn("sms handoff requested but no sms sender configured", "practice_id", prac.ID)
		return Outcome{
			Status:   StatusFailure,
			Message:  "Unable to text the booking link: no SMS channel is configured. Please call the practice directly.",
			Strategy: a.Name(),
		}, nil
	}

	to := smsRecipient(req.Phone)
	body := handoffText(prac, req)
	if err := a.sms.SendSMS(ctx, to, body); err != nil {
		a.logger.Error("failed to text booking link to patient",
			"practice_id", prac.ID, "to", to, "error", err)
		return Outcome{
			Status:   StatusFailure,
			Message:  "Unable to text the booking link. Please call the practice directly.",
			Strategy: a.Name(),
		}, nil
	}
	a.logger.Info("booking link texted to patient", "practice_id", prac.ID, "to", to)

	a.alertFrontDesk(ctx, prac, req)

	return Outcome{
		Status:   StatusSuccess,
		Message:  handoffConfirmation(prac.Name),
		Strategy: a.Name(),
	}, nil
}

func (a *HandoffAdapter) alertFrontDesk(ctx context.Context, prac practice.Config, req Request) {
	if !prac.Notifications.SMSEnabled || !prac.Notifications.NotifyOnHandoff {
		return
	}
	if prac.FrontDeskPhone == "" {
		a.logger.Warn("handoff front-desk alert enabled but no front desk phone set", "practice_id", prac.ID)
		return
	}
	summary := FormatHandoffSummary(prac, req)
	if err := a.sms.SendSMS(ctx, smsRecipient(prac.FrontDeskPhone), summary); err != nil {
		a.logger.Error("failed to alert front desk of handoff",
			"practice_id", prac.ID, "error", err)
		return
	}
	a.logger.Info("front desk alerted of handoff", "practice_id", prac.ID)
}

// handoffText is the patient-facing SMS carrying the booking link.
func handoffText(prac practice.Config, req Request) string {
	name := strings.TrimSpace(req.FirstName)
	if name == "" {
		name = "there"
	}
	apptType := strings.TrimSpace(req.AppointmentType)
	if apptType == "" {
		apptType = "appointment"
	}
	return fmt.Sprintf(
		"Hi %s! To finish booking your %s at %s on %s at %s, use this link: %s",
		name, apptType, valueOrNA(prac.Name), req.Date, req.Time,
		prac.BookingPageURL(),
	)
}

// handoffConfirmation is the outcome message the voice agent relays.
func handoffConfirmation(practiceName string) string {
	if practiceName == "" {
		practiceName = "the practice"
	}
	return fmt.Sprintf(
		"I've texted you a booking link from %s. Tap it to pick your time and confirm the appointment.",
		practiceName,
	)
}

// FormatHandoffSummary generates the plain-text front-desk alert.
func FormatHandoffSummary(prac practice.Config, req Request) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Booking hand-off for %s\n", valueOrNA(prac.Name)))
	b.WriteString(fmt.Sprintf("Patient: %s\n", valueOrNA(req.FullName())))
	b.WriteString(fmt.Sprintf("Phone: %s\n", valueOrNA(phone.Format(req.Phone))))
	if req.Email != "" {
		b.WriteString(fmt.Sprintf("Email: %s\n", req.Email))
	}
	b.WriteString(fmt.Sprintf("Requested: %s on %s at %s\n", valueOrNA(req.AppointmentType), req.Date, req.Time))
	b.WriteString("The patient was texted the booking link.")
	return b.String()
}

// smsRecipient renders a dialable destination: E.164 for ten-digit numbers,
// the raw input otherwise.
func smsRecipient(raw string) string {
	digits := phone.Normalize(raw)
	if len(digits) == 10 {
		return "+1" + digits
	}
	return raw
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
