package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// notifyTimeout bounds the async front-desk notification; it must outlive
// the HTTP request but never linger.
const notifyTimeout = 15 * time.Second

// OutcomeNotifier tells the front desk what happened to a booking attempt.
type OutcomeNotifier interface {
	NotifyOutcome(ctx context.Context, prac practice.Config, req Request, out Outcome)
}

// HandlerConfig wires the booking endpoint's collaborators.
type HandlerConfig struct {
	Store           practice.Store
	Adapters        []Adapter
	DefaultStrategy string
	DefaultPractice string
	Notifier        OutcomeNotifier
	Metrics         *metrics.BookingMetrics
	Logger          *logging.Logger
}

// Handler serves the booking endpoint: validate, resolve the practice, pick
// a strategy, relay its outcome.
type Handler struct {
	store           practice.Store
	adapters        map[string]Adapter
	defaultStrategy string
	defaultPractice string
	notifier        OutcomeNotifier
	metrics         *metrics.BookingMetrics
	logger          *logging.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = StrategyAutomation
	}
	adapters := make(map[string]Adapter, len(cfg.Adapters))
	for _, a := range cfg.Adapters {
		if a != nil {
			adapters[a.Name()] = a
		}
	}
	return &Handler{
		store:           cfg.Store,
		adapters:        adapters,
		defaultStrategy: cfg.DefaultStrategy,
		defaultPractice: cfg.DefaultPractice,
		notifier:        cfg.Notifier,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
	}
}

type bookResponse struct {
	Success            bool           `json:"success"`
	Status             string         `json:"status"`
	ConfirmationNumber string         `json:"confirmationNumber,omitempty"`
	Message            string         `json:"message"`
	Patient            patientSummary `json:"patient"`
}

type patientSummary struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Appointment string `json:"appointment"`
}

// BookAppointment places one appointment.
// POST /book-appointment
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if missing := req.MissingFields(); len(missing) > 0 {
		msg := fmt.Sprintf(`{"error":"missing required fields: %s"}`, strings.Join(missing, ", "))
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	practiceID := req.PracticeID
	if practiceID == "" {
		practiceID = h.defaultPractice
	}
	prac, err := h.practiceConfig(r.Context(), practiceID)
	if err != nil {
		h.logger.Error("failed to load practice config", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	adapter, err := h.pickAdapter(prac)
	if err != nil {
		h.logger.Error("no booking strategy available", "practice_id", prac.ID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("booking attempt",
		"practice_id", prac.ID, "strategy", adapter.Name(),
		"date", req.Date, "time", req.Time, "type", req.AppointmentType)

	outcome, err := adapter.Book(r.Context(), prac, req)
	if err != nil {
		if errors.Is(err, ErrPoolSaturated) {
			w.Header().Set("Retry-After", "30")
			http.Error(w, `{"error":"all booking sessions are busy, retry shortly"}`, http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("booking strategy failed before attempting", "strategy", adapter.Name(), "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveAttempt(outcome.Strategy, string(outcome.Status))
	if outcome.RawDiagnostic != "" {
		h.logger.Debug("booking page diagnostic", "practice_id", prac.ID, "page_text", outcome.RawDiagnostic)
	}
	h.notifyAsync(prac, req, outcome)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bookResponse{
		Success:            outcome.Succeeded(),
		Status:             string(outcome.Status),
		ConfirmationNumber: outcome.ConfirmationNumber,
		Message:            outcome.Message,
		Patient: patientSummary{
			Name:        req.FullName(),
			Phone:       phone.Format(req.Phone),
			Appointment: fmt.Sprintf("%s on %s at %s", req.AppointmentType, req.Date, req.Time),
		},
	})
}

func (h *Handler) practiceConfig(ctx context.Context, practiceID string) (practice.Config, error) {
	if h.store == nil {
		return *practice.DefaultConfig(practiceID), nil
	}
	cfg, err := h.store.Get(ctx, practiceID)
	if err != nil {
		return practice.Config{}, err
	}
	return *cfg, nil
}

func (h *Handler) pickAdapter(prac practice.Config) (Adapter, error) {
	strategy := prac.ResolveStrategy(h.defaultStrategy)
	if a, ok := h.adapters[strategy]; ok {
		return a, nil
	}
	h.logger.Warn("configured strategy has no adapter, falling back",
		"practice_id", prac.ID, "strategy", strategy, "fallback", h.defaultStrategy)
	if a, ok := h.adapters[h.defaultStrategy]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("booking: no adapter for strategy %q", strategy)
}

// notifyAsync fires the front-desk notification without holding up the
// response. It gets a fresh context so the notification survives the HTTP
// request ending.
func (h *Handler) notifyAsync(prac practice.Config, req Request, out Outcome) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		h.notifier.NotifyOutcome(ctx, prac, req, out)
	}()
}
