// Package automation drives third-party booking forms. The engine walks a
// fixed fill-and-submit sequence over small capability interfaces; platform
// packages supply the selector knowledge and the real browser underneath.
package automation

import "context"

// FieldKind names the form controls the engine knows how to fill. Which
// selectors back each kind is the Locator's business.
type FieldKind string

const (
	FieldFirstName       FieldKind = "first_name"
	FieldLastName        FieldKind = "last_name"
	FieldPhone           FieldKind = "phone"
	FieldEmail           FieldKind = "email"
	FieldDate            FieldKind = "date"
	FieldAppointmentType FieldKind = "appointment_type"
)

// Handle is one located form control.
type Handle interface {
	Fill(value string) error
	Value() (string, error)
	Click() error
	Select(value string) error
	Text() (string, error)
}

// Locator carries a booking platform's selector knowledge. Field reports
// absence via the bool; missing controls are normal on third-party markup,
// not errors.
type Locator interface {
	Field(kind FieldKind) (Handle, bool)
	TimeSlots() ([]Handle, error)
	SubmitControl() (Handle, bool)
}

// Session is one browser page scoped to one booking attempt.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Locator() Locator
	PageText() (string, error)
	Close() error
}

// Launcher hands out sessions. The playwright driver implements it; Pool
// wraps one to bound concurrency.
type Launcher interface {
	Acquire(ctx context.Context) (Session, error)
}
