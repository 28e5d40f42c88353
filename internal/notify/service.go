package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// SMSSender sends SMS messages to front-desk staff.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service sends booking-outcome notifications to a practice's front desk.
type Service struct {
	email  EmailSender
	sms    SMSSender
	logger *logging.Logger
}

// NewService creates a notification service. Either sender may be nil; the
// corresponding channel is skipped.
func NewService(email EmailSender, sms SMSSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

var _ booking.OutcomeNotifier = (*Service)(nil)

// NotifyOutcome tells the front desk how a booking attempt ended. Delivery
// failures are logged, never surfaced; the booking response has already been
// sent by the time notifications go out.
func (s *Service) NotifyOutcome(ctx context.Context, prac practice.Config, req booking.Request, out booking.Outcome) {
	prefs := prac.Notifications

	if out.Strategy == booking.StrategyHandoff {
		if !prefs.NotifyOnHandoff {
			return
		}
		// The hand-off adapter texts the front desk inline; only email goes out here.
		s.sendEmails(ctx, prac, req, out)
		return
	}

	if !prefs.NotifyOnBooking {
		s.logger.Debug("booking notifications disabled for practice", "practice_id", prac.ID)
		return
	}
	s.sendEmails(ctx, prac, req, out)
	s.sendSMS(ctx, prac, req, out)
}

func (s *Service) sendEmails(ctx context.Context, prac practice.Config, req booking.Request, out booking.Outcome) {
	prefs := prac.Notifications
	if !prefs.EmailEnabled || s.email == nil || len(prefs.EmailRecipients) == 0 {
		return
	}

	subject := emailSubject(req, out)
	body := FormatOutcomeSummary(prac, req, out)
	html := formatOutcomeHTML(prac, req, out)

	for _, recipient := range prefs.EmailRecipients {
		msg := EmailMessage{
			To:      recipient,
			Subject: subject,
			Body:    body,
			HTML:    html,
			ReplyTo: req.Email,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send outcome email", "error", err, "to", recipient, "practice_id", prac.ID)
		} else {
			s.logger.Info("outcome email sent", "to", recipient, "practice_id", prac.ID, "status", string(out.Status))
		}
	}
}

func (s *Service) sendSMS(ctx context.Context, prac practice.Config, req booking.Request, out booking.Outcome) {
	prefs := prac.Notifications
	if !prefs.SMSEnabled || s.sms == nil {
		return
	}
	recipients := prefs.Recipients()
	if len(recipients) == 0 && prac.FrontDeskPhone != "" {
		recipients = []string{prac.FrontDeskPhone}
	}
	if len(recipients) == 0 {
		s.logger.Warn("sms notifications enabled but no recipients configured", "practice_id", prac.ID)
		return
	}

	body := smsBody(req, out)
	for _, recipient := range recipients {
		if err := s.sms.SendSMS(ctx, recipient, body); err != nil {
			s.logger.Error("failed to send outcome sms", "error", err, "to", recipient, "practice_id", prac.ID)
		} else {
			s.logger.Info("outcome sms sent", "to", recipient, "practice_id", prac.ID, "status", string(out.Status))
		}
	}
}

func emailSubject(req booking.Request, out booking.Outcome) string {
	name := req.FullName()
	switch {
	case out.Strategy == booking.StrategyHandoff:
		return fmt.Sprintf("📲 Booking Link Sent - %s", name)
	case out.Status == booking.StatusSuccess:
		return fmt.Sprintf("✅ Appointment Booked - %s", name)
	case out.Status == booking.StatusUnverified:
		return fmt.Sprintf("⚠️ Booking Needs Verification - %s", name)
	default:
		return fmt.Sprintf("❌ Booking Failed - %s", name)
	}
}

// FormatOutcomeSummary generates the plain-text notification body.
func FormatOutcomeSummary(prac practice.Config, req booking.Request, out booking.Outcome) string {
	var b strings.Builder
	b.WriteString(statusLine(out))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Patient: %s\n", req.FullName()))
	b.WriteString(fmt.Sprintf("Phone: %s\n", phone.Format(req.Phone)))
	if req.Email != "" {
		b.WriteString(fmt.Sprintf("Email: %s\n", req.Email))
	}
	b.WriteString(fmt.Sprintf("Appointment: %s on %s at %s\n", appointmentLabel(req), req.Date, req.Time))
	if req.Provider != "" {
		b.WriteString(fmt.Sprintf("Provider: %s\n", req.Provider))
	}
	if out.ConfirmationNumber != "" {
		b.WriteString(fmt.Sprintf("Confirmation: %s\n", out.ConfirmationNumber))
	}
	b.WriteString(fmt.Sprintf("Result: %s\n", out.Message))
	b.WriteString(fmt.Sprintf("\n— DentalBridge for %s", prac.Name))
	return b.String()
}

func statusLine(out booking.Outcome) string {
	if out.Strategy == booking.StrategyHandoff {
		return "The booking link was texted to the patient. They will pick their own time."
	}
	switch out.Status {
	case booking.StatusSuccess:
		return "The appointment was booked automatically."
	case booking.StatusUnverified:
		return "The booking form was submitted but no confirmation was detected. Please verify in SmileBook."
	default:
		return "Automatic booking failed. Please book this patient manually."
	}
}

func formatOutcomeHTML(prac practice.Config, req booking.Request, out booking.Outcome) string {
	heading, accent := htmlTheme(out)
	rows := []string{
		htmlRow("Patient", req.FullName()),
		htmlRow("Phone", phone.Format(req.Phone)),
	}
	if req.Email != "" {
		rows = append(rows, htmlRow("Email", req.Email))
	}
	rows = append(rows, htmlRow("Appointment", fmt.Sprintf("%s on %s at %s", appointmentLabel(req), req.Date, req.Time)))
	if req.Provider != "" {
		rows = append(rows, htmlRow("Provider", req.Provider))
	}
	if out.ConfirmationNumber != "" {
		rows = append(rows, htmlRow("Confirmation", out.ConfirmationNumber))
	}

	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: %s;">%s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
%s
</table>
<p style="background: #f9fafb; padding: 12px; border-radius: 8px; border-left: 4px solid %s;">%s</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— DentalBridge for %s</p>
</div>`, accent, heading, strings.Join(rows, "\n"), accent, statusLine(out), prac.Name)
}

func htmlRow(label, value string) string {
	return fmt.Sprintf(`  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, value)
}

func htmlTheme(out booking.Outcome) (heading, accent string) {
	if out.Strategy == booking.StrategyHandoff {
		return "📲 Booking Link Sent", "#3b82f6"
	}
	switch out.Status {
	case booking.StatusSuccess:
		return "✅ Appointment Booked", "#10b981"
	case booking.StatusUnverified:
		return "⚠️ Verify This Booking", "#f59e0b"
	default:
		return "❌ Booking Failed", "#ef4444"
	}
}

// appointmentLabel names the visit type; the field is optional on requests.
func appointmentLabel(req booking.Request) string {
	if t := strings.TrimSpace(req.AppointmentType); t != "" {
		return t
	}
	return "appointment"
}

func smsBody(req booking.Request, out booking.Outcome) string {
	who := fmt.Sprintf("%s (%s)", req.FullName(), phone.Format(req.Phone))
	appointment := fmt.Sprintf("%s %s %s", appointmentLabel(req), req.Date, req.Time)
	switch out.Status {
	case booking.StatusSuccess:
		if out.ConfirmationNumber != "" {
			return fmt.Sprintf("✅ Booked: %s. %s. Conf #%s", who, appointment, out.ConfirmationNumber)
		}
		return fmt.Sprintf("✅ Booked: %s. %s.", who, appointment)
	case booking.StatusUnverified:
		return fmt.Sprintf("⚠️ Verify booking for %s. %s. Form submitted, no confirmation detected.", who, appointment)
	default:
		return fmt.Sprintf("❌ Booking failed for %s. %s. Please book manually.", who, appointment)
	}
}

// StubSMSSender is a no-op sender for testing.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ SMSSender = (*StubSMSSender)(nil)
