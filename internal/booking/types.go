// Package booking holds the appointment booking domain: the request/outcome
// types, the strategy interface, and the HTTP surface the voice agent calls.
package booking

import "strings"

// Status is the tri-state verdict of a booking attempt. Unverified is a
// first-class state: the form was submitted but the page never said yes or
// no, so the caller should treat the booking as probable and confirm out of
// band.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
	StatusUnverified Status = "unverified"
)

// Request is one appointment booking ask, as the voice agent hands it over.
type Request struct {
	PracticeID      string `json:"practiceId,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // as the booking form labels it, e.g. "10:00"
	AppointmentType string `json:"appointmentType"`
	Provider        string `json:"provider,omitempty"`
}

// FullName joins first and last name for display and form filling.
func (r Request) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// MissingFields returns the names of required fields that are empty, in a
// stable order for error messages.
func (r Request) MissingFields() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("firstName", r.FirstName)
	check("lastName", r.LastName)
	check("phone", r.Phone)
	check("date", r.Date)
	check("time", r.Time)
	return missing
}

// Outcome is the synchronous result of one booking attempt. It is
// request-scoped and never persisted.
type Outcome struct {
	Status             Status `json:"status"`
	ConfirmationNumber string `json:"confirmationNumber,omitempty"`
	Message            string `json:"message"`
	Strategy           string `json:"strategy,omitempty"`

	// RawDiagnostic carries the first 500 characters of the booking page's
	// text for logs. Never returned to callers.
	RawDiagnostic string `json:"-"`
}

// Succeeded maps the tri-state status onto the optimistic boolean callers
// key off: an unverified submission counts as success. The remote form's
// markup is not ours, so silence is read as non-failure.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess || o.Status == StatusUnverified
}
