package practice

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Handler provides HTTP endpoints for practice configuration management.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a practice config HTTP handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Routes returns a chi router with practice admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListConfigs)
	r.Get("/{practiceID}", h.GetConfig)
	r.Put("/{practiceID}", h.UpdateConfig)
	r.Post("/{practiceID}", h.UpdateConfig)
	return r
}

// ListConfigs returns all stored practice configurations.
// GET /admin/practices
func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list practice configs", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if configs == nil {
		configs = []*Config{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(configs); err != nil {
		h.logger.Error("failed to encode practice configs", "error", err)
	}
}

// GetConfig returns the configuration for a practice.
// GET /admin/practices/{practiceID}
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	practiceID := chi.URLParam(r, "practiceID")
	if practiceID == "" {
		http.Error(w, `{"error": "practice id required"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context(), practiceID)
	if err != nil {
		h.logger.Error("failed to get practice config", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode practice config", "practice_id", practiceID, "error", err)
	}
}

// UpdateConfigRequest is the request body for updating practice config.
// Absent fields leave the stored value untouched.
type UpdateConfigRequest struct {
	Name             string             `json:"name,omitempty"`
	Token            string             `json:"token,omitempty"`
	BookingURL       string             `json:"booking_url,omitempty"`
	Strategy         string             `json:"strategy,omitempty"`
	Timezone         string             `json:"timezone,omitempty"`
	AppointmentTypes map[string]string  `json:"appointment_types,omitempty"`
	Providers        map[string]string  `json:"providers,omitempty"`
	FrontDeskPhone   string             `json:"front_desk_phone,omitempty"`
	Notifications    *NotificationPrefs `json:"notifications,omitempty"`
}

// UpdateConfig creates or updates the configuration for a practice.
// PUT /admin/practices/{practiceID}
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	practiceID := chi.URLParam(r, "practiceID")
	if practiceID == "" {
		http.Error(w, `{"error": "practice id required"}`, http.StatusBadRequest)
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context(), practiceID)
	if err != nil {
		h.logger.Error("failed to get practice config", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if req.Name != "" {
		cfg.Name = req.Name
	}
	if req.Token != "" {
		cfg.Token = req.Token
	}
	if req.BookingURL != "" {
		cfg.BookingURL = req.BookingURL
	}
	if req.Strategy != "" {
		cfg.Strategy = req.Strategy
	}
	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}
	if req.AppointmentTypes != nil {
		cfg.AppointmentTypes = req.AppointmentTypes
	}
	if req.Providers != nil {
		cfg.Providers = req.Providers
	}
	if req.FrontDeskPhone != "" {
		cfg.FrontDeskPhone = req.FrontDeskPhone
	}
	if req.Notifications != nil {
		cfg.Notifications = *req.Notifications
	}

	if err := h.store.Put(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save practice config", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "failed to save config"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("practice config updated", "practice_id", practiceID, "name", cfg.Name)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode practice config", "practice_id", practiceID, "error", err)
	}
}
