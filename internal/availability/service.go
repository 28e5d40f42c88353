// Package availability answers "what times are open" for a practice on a
// date. It prefers the SmileBook availability API and degrades to a
// deterministic schedule when the remote side misbehaves, so the calling
// voice agent always has something to offer.
package availability

import (
	"context"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/internal/smilebook"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Source tells the caller where a slot list came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"

	defaultFetchTimeout = 10 * time.Second
)

// fallbackTimes is the schedule offered when the remote API cannot be
// reached: half-hour slots through the morning and afternoon with the
// midday block held for lunch and emergencies.
var fallbackTimes = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00",
	"14:00", "14:30", "15:00", "15:30", "16:00",
}

// SlotSource fetches availability from a booking platform.
type SlotSource interface {
	Slots(ctx context.Context, token, date, typeCode, providerCode string) ([]smilebook.Slot, error)
}

// Result is one answered availability query.
type Result struct {
	Date            string
	AppointmentType string
	TypeCode        string
	Slots           []smilebook.Slot
	Source          Source
}

// AvailableTimes returns the time labels of open slots, in order.
func (r Result) AvailableTimes() []string {
	times := make([]string, 0, len(r.Slots))
	for _, s := range r.Slots {
		if s.Available {
			times = append(times, s.Time)
		}
	}
	return times
}

// Service resolves practice config, queries the remote source, and falls
// back to the fixed schedule on any failure.
type Service struct {
	source  SlotSource
	store   practice.Store
	timeout time.Duration
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

func NewService(source SlotSource, store practice.Store, timeout time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		source:  source,
		store:   store,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// GetSlots never fails: any trouble reaching the remote API is logged and
// answered with the fallback schedule instead.
func (s *Service) GetSlots(ctx context.Context, practiceID, date, typeKey, providerKey string) Result {
	cfg := s.practiceConfig(ctx, practiceID)

	result := Result{
		Date:            date,
		AppointmentType: typeKey,
		TypeCode:        cfg.AppointmentTypeCode(typeKey),
	}
	providerCode := cfg.ProviderCode(providerKey)

	if s.source != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		slots, err := s.source.Slots(fetchCtx, cfg.Token, date, result.TypeCode, providerCode)
		if err == nil {
			result.Slots = slots
			result.Source = SourceRemote
			s.observe(result, len(slots))
			return result
		}
		s.logger.Warn("remote availability failed, using fallback schedule",
			"practice_id", cfg.ID, "date", date, "error", err)
	} else {
		s.logger.Warn("no availability source configured, using fallback schedule",
			"practice_id", cfg.ID, "date", date)
	}

	result.Slots = fallbackSlots(date)
	result.Source = SourceFallback
	s.observe(result, len(result.Slots))
	return result
}

func (s *Service) practiceConfig(ctx context.Context, practiceID string) practice.Config {
	if s.store == nil {
		return *practice.DefaultConfig(practiceID)
	}
	cfg, err := s.store.Get(ctx, practiceID)
	if err != nil {
		s.logger.Warn("practice config lookup failed, using defaults", "practice_id", practiceID, "error", err)
		return *practice.DefaultConfig(practiceID)
	}
	return *cfg
}

func (s *Service) observe(r Result, count int) {
	s.metrics.ObserveSlotFetch(string(r.Source))
	s.logger.Info("availability resolved",
		"date", r.Date, "type_code", r.TypeCode, "source", string(r.Source), "count", count)
}

// fallbackSlots builds the deterministic schedule for a date. Slot IDs
// depend only on the date so repeated calls agree with each other.
func fallbackSlots(date string) []smilebook.Slot {
	slots := make([]smilebook.Slot, 0, len(fallbackTimes))
	for _, t := range fallbackTimes {
		slots = append(slots, smilebook.Slot{
			ID:        "fallback-" + date + "-" + strings.ReplaceAll(t, ":", ""),
			Time:      t,
			Available: true,
		})
	}
	return slots
}
