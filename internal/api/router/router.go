package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-booking-bridge/internal/availability"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	httpmiddleware "github.com/wolfman30/dental-booking-bridge/internal/http/middleware"
	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "dental-booking-bridge"

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	BookingHandler      *booking.Handler
	PhoneHandler        *phone.Handler
	PracticeHandler     *practice.Handler
	StatsHandler        *metrics.StatsHandler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string

	// Per-IP throttle on the public booking endpoints. Zero disables.
	RateLimitRPS   int
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Probes and metrics stay outside the rate limiter.
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Voice-agent tool endpoints
	r.Group(func(public chi.Router) {
		if cfg.RateLimitRPS > 0 {
			public.Use(httpmiddleware.RateLimit(float64(cfg.RateLimitRPS), cfg.RateLimitBurst))
		}
		public.Post("/check-availability", cfg.AvailabilityHandler.CheckAvailability)
		public.Post("/book-appointment", cfg.BookingHandler.BookAppointment)
		public.Post("/format-phone", cfg.PhoneHandler.Format)
	})

	// Admin routes (protected by HMAC JWT; without a secret every request
	// is refused rather than the routes disappearing)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.PracticeHandler != nil {
			admin.Mount("/practices", cfg.PracticeHandler.Routes())
		}
		if cfg.StatsHandler != nil {
			admin.Get("/stats", cfg.StatsHandler.GetStats)
		}
	})

	return r
}

// healthCheck reports liveness.
// GET /health
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
