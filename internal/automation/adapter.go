package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

// Adapter is the browser-automation booking strategy: acquire a session,
// hand it to the engine, report the outcome.
type Adapter struct {
	launcher Launcher
	engine   *Engine
	logger   *logging.Logger
}

// NewAdapter wires a launcher (normally a Pool) to an engine.
func NewAdapter(launcher Launcher, engine *Engine, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{
		launcher: launcher,
		engine:   engine,
		logger:   logger,
	}
}

var _ booking.Adapter = (*Adapter)(nil)

// Name returns "automation".
func (a *Adapter) Name() string { return booking.StrategyAutomation }

// Book runs one automated attempt. Pool saturation is the one fault
// returned as an error, so the HTTP layer can answer 503; any other launch
// failure is already a booking verdict.
func (a *Adapter) Book(ctx context.Context, prac practice.Config, req booking.Request) (booking.Outcome, error) {
	sess, err := a.launcher.Acquire(ctx)
	if err != nil {
		if errors.Is(err, booking.ErrPoolSaturated) {
			return booking.Outcome{}, err
		}
		a.logger.Error("browser session launch failed", "practice_id", prac.ID, "error", err)
		return booking.Outcome{
			Status:   booking.StatusFailure,
			Message:  fmt.Sprintf("Booking error: launch browser session: %v", err),
			Strategy: a.Name(),
		}, nil
	}

	out := a.engine.Book(ctx, sess, prac, req)
	out.Strategy = a.Name()
	return out, nil
}
