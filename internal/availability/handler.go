package availability

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Handler serves the availability check endpoint.
type Handler struct {
	service         *Service
	defaultPractice string
	logger          *logging.Logger
}

func NewHandler(service *Service, defaultPractice string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:         service,
		defaultPractice: defaultPractice,
		logger:          logger,
	}
}

type checkRequest struct {
	PracticeID      string `json:"practiceId"`
	Date            string `json:"date"`
	AppointmentType string `json:"appointmentType"`
	Provider        string `json:"provider"`
}

type checkResponse struct {
	Date            string   `json:"date"`
	AppointmentType string   `json:"appointmentType"`
	Slots           []string `json:"slots"`
	Count           int      `json:"count"`
	Source          string   `json:"source"`
}

// CheckAvailability returns open times for a date.
// POST /check-availability
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Date) == "" {
		http.Error(w, `{"error":"date is required"}`, http.StatusBadRequest)
		return
	}

	practiceID := req.PracticeID
	if practiceID == "" {
		practiceID = h.defaultPractice
	}

	result := h.service.GetSlots(r.Context(), practiceID, req.Date, req.AppointmentType, req.Provider)
	times := result.AvailableTimes()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(checkResponse{
		Date:            result.Date,
		AppointmentType: result.AppointmentType,
		Slots:           times,
		Count:           len(times),
		Source:          string(result.Source),
	})
}
