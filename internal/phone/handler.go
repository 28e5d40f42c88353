package phone

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Handler serves the phone-formatting tool endpoint used by the voice agent.
type Handler struct {
	logger *logging.Logger
}

// NewHandler creates a phone handler.
func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{logger: logger}
}

type formatRequest struct {
	Phone string `json:"phone"`
}

type formatResponse struct {
	Formatted  string `json:"formatted"`
	Normalized string `json:"normalized"`
}

// Format handles POST /format-phone.
func (h *Handler) Format(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Phone == "" {
		http.Error(w, "phone is required", http.StatusBadRequest)
		return
	}

	resp := formatResponse{
		Formatted:  Format(req.Phone),
		Normalized: Normalize(req.Phone),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode format-phone response", "error", err)
	}
}
