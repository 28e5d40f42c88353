package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

var engineTracer = otel.Tracer("dentalbridge.internal.automation.engine")

const defaultSettleDelay = 3 * time.Second

// EngineConfig tunes one engine instance.
type EngineConfig struct {
	// SettleDelay is how long to wait after clicking submit before reading
	// the page's verdict.
	SettleDelay time.Duration
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
}

// Engine fills and submits a booking form over one Session. It owns the
// step order and the fault policy; it knows nothing about selectors or
// playwright.
type Engine struct {
	settle  time.Duration
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewEngine builds an engine with config defaults applied.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Engine{
		settle:  cfg.SettleDelay,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Book runs one booking attempt on an already-acquired session. It never
// returns an error: every fault is converted into a failed Outcome, and the
// session is closed exactly once on every path.
func (e *Engine) Book(ctx context.Context, sess Session, prac practice.Config, req booking.Request) booking.Outcome {
	attemptID := uuid.NewString()
	start := time.Now()

	ctx, span := engineTracer.Start(ctx, "automation.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("dentalbridge.practice_id", prac.ID),
		attribute.String("dentalbridge.attempt_id", attemptID),
		attribute.String("dentalbridge.appointment_date", req.Date),
	)

	defer func() {
		if err := sess.Close(); err != nil {
			e.logger.Warn("session close failed", "attempt_id", attemptID, "error", err)
		}
	}()

	e.logger.Info("automation attempt started",
		"attempt_id", attemptID, "practice_id", prac.ID, "date", req.Date, "time", req.Time)

	out := e.run(ctx, sess, prac, req)

	elapsed := time.Since(start).Seconds()
	e.metrics.ObserveAutomationDuration(string(out.Status), elapsed)
	span.SetAttributes(attribute.String("dentalbridge.outcome", string(out.Status)))
	e.logger.Info("automation attempt finished",
		"attempt_id", attemptID, "practice_id", prac.ID,
		"status", string(out.Status), "duration_s", fmt.Sprintf("%.2f", elapsed))
	return out
}

func (e *Engine) run(ctx context.Context, sess Session, prac practice.Config, req booking.Request) booking.Outcome {
	if err := sess.Navigate(ctx, prac.BookingPageURL()); err != nil {
		return bookingError("open booking page", err)
	}
	loc := sess.Locator()

	e.selectAppointmentType(loc, prac.AppointmentTypeCode(req.AppointmentType))

	if err := e.fillIfPresent(loc, FieldFirstName, req.FirstName); err != nil {
		return bookingError("enter first name", err)
	}
	if err := e.fillIfPresent(loc, FieldLastName, req.LastName); err != nil {
		return bookingError("enter last name", err)
	}
	if err := e.fillPhone(loc, req.Phone); err != nil {
		return bookingError("enter phone number", err)
	}
	if req.Email != "" {
		if err := e.fillIfPresent(loc, FieldEmail, req.Email); err != nil {
			return bookingError("enter email", err)
		}
	}
	if err := e.fillIfPresent(loc, FieldDate, req.Date); err != nil {
		return bookingError("enter date", err)
	}
	if err := e.clickTimeSlot(loc, req.Time); err != nil {
		return bookingError("choose time slot", err)
	}
	if err := e.submit(ctx, loc); err != nil {
		return bookingError("submit form", err)
	}

	text, err := sess.PageText()
	if err != nil {
		return bookingError("read booking result", err)
	}
	return Classify(text)
}

// selectAppointmentType is best-effort: markup variance here is extreme, so
// a dropdown that will not select or fill is skipped rather than failed.
func (e *Engine) selectAppointmentType(loc Locator, code string) {
	h, ok := loc.Field(FieldAppointmentType)
	if !ok {
		e.logger.Debug("appointment type control not on page")
		return
	}
	if err := h.Select(code); err == nil {
		return
	}
	if err := h.Fill(code); err != nil {
		e.logger.Debug("appointment type control unusable, skipping", "error", err)
	}
}

// fillIfPresent fills a field when the page has it. Absence is a skip;
// a fill error on a present field is a fault the caller turns into a
// failed outcome.
func (e *Engine) fillIfPresent(loc Locator, kind FieldKind, value string) error {
	h, ok := loc.Field(kind)
	if !ok {
		e.logger.Debug("field not on page, skipping", "field", string(kind))
		return nil
	}
	if err := h.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", string(kind), err)
	}
	return nil
}

// fillPhone writes the canonical digits, reads the control back, and if the
// form kept fewer characters than were written, rewrites it once with the
// punctuated form. Masked phone inputs on some booking pages swallow bare
// digit strings but accept the formatted rendering. There is no second
// verification: at most one rewrite, ever.
func (e *Engine) fillPhone(loc Locator, raw string) error {
	h, ok := loc.Field(FieldPhone)
	if !ok {
		e.logger.Debug("phone field not on page, skipping")
		return nil
	}

	canonical := phone.Normalize(raw)
	if err := h.Fill(canonical); err != nil {
		return fmt.Errorf("fill phone: %w", err)
	}

	got, err := h.Value()
	if err != nil {
		// Read-back is advisory. If the control will not report its value,
		// assume the fill took.
		e.logger.Debug("phone read-back failed, keeping canonical fill", "error", err)
		return nil
	}
	if len(got) >= len(canonical) {
		return nil
	}

	e.metrics.ObservePhoneRewrite()
	e.logger.Warn("phone field kept fewer characters than written, rewriting formatted",
		"wrote", len(canonical), "kept", len(got))
	if err := h.Fill(phone.Format(raw)); err != nil {
		return fmt.Errorf("rewrite phone: %w", err)
	}
	return nil
}

// clickTimeSlot clicks the first slot whose visible text contains the
// requested time. No match means no click; the form may treat time as free
// text or default it.
func (e *Engine) clickTimeSlot(loc Locator, want string) error {
	if strings.TrimSpace(want) == "" {
		return nil
	}
	handles, err := loc.TimeSlots()
	if err != nil {
		return fmt.Errorf("list time slots: %w", err)
	}
	for _, h := range handles {
		text, err := h.Text()
		if err != nil {
			return fmt.Errorf("read time slot: %w", err)
		}
		if strings.Contains(text, want) {
			if err := h.Click(); err != nil {
				return fmt.Errorf("click time slot %q: %w", strings.TrimSpace(text), err)
			}
			return nil
		}
	}
	e.logger.Debug("no time slot matched, leaving selection to the form", "requested", want)
	return nil
}

// submit clicks the submit control when one exists, then waits the settle
// delay so the platform can render its verdict.
func (e *Engine) submit(ctx context.Context, loc Locator) error {
	h, ok := loc.SubmitControl()
	if !ok {
		e.logger.Debug("no submit control found, skipping submit")
		return nil
	}
	if err := h.Click(); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	e.sleep(ctx, e.settle)
	return nil
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// bookingError renders a step fault as the failed outcome the voice agent
// relays verbatim.
func bookingError(step string, err error) booking.Outcome {
	return booking.Outcome{
		Status:  booking.StatusFailure,
		Message: fmt.Sprintf("Booking error: %s: %v", step, err),
	}
}
