package booking

import (
	"context"
	"errors"

	"github.com/wolfman30/dental-booking-bridge/internal/practice"
)

// ErrPoolSaturated reports that no browser session became free within the
// configured wait. The HTTP layer maps it to 503 so the voice agent can
// offer the caller a human hand-off instead of hanging.
var ErrPoolSaturated = errors.New("booking: session pool saturated")

// Adapter is the interface every booking strategy implements. This lets the
// HTTP layer treat browser automation and SMS hand-off uniformly, and leaves
// room for future platform-API strategies.
//
// Implementations return an error only for faults that happen before an
// attempt is really made (capacity, configuration); once a strategy engages,
// its verdict is an Outcome, even on failure.
type Adapter interface {
	// Name returns the strategy identifier (e.g. "automation", "sms-handoff").
	Name() string

	// Book attempts to place the appointment for the given practice.
	Book(ctx context.Context, prac practice.Config, req Request) (Outcome, error)
}
