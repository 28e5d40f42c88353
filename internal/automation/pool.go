package automation

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

const (
	defaultPoolSize    = 4
	defaultPoolMaxWait = 15 * time.Second
)

// PoolConfig tunes a session pool.
type PoolConfig struct {
	// Size is the number of sessions allowed to run at once.
	Size int
	// MaxWait bounds how long an acquire may queue for a free slot before
	// the attempt is rejected as saturated.
	MaxWait time.Duration
	Metrics *metrics.BookingMetrics
	Logger  *logging.Logger
}

// Pool bounds how many browser sessions run concurrently. Each session is a
// whole headless page, so an unbounded burst of bookings would take the host
// down; beyond Size, acquires queue up to MaxWait and are then rejected
// with booking.ErrPoolSaturated.
type Pool struct {
	inner   Launcher
	slots   chan struct{}
	maxWait time.Duration
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

var _ Launcher = (*Pool)(nil)

// NewPool wraps a launcher with a concurrency bound.
func NewPool(inner Launcher, cfg PoolConfig) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = defaultPoolSize
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultPoolMaxWait
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Pool{
		inner:   inner,
		slots:   make(chan struct{}, cfg.Size),
		maxWait: cfg.MaxWait,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Acquire blocks for a slot up to MaxWait, then launches a session from the
// wrapped launcher. The returned session gives its slot back when closed.
func (p *Pool) Acquire(ctx context.Context) (Session, error) {
	timer := time.NewTimer(p.maxWait)
	defer timer.Stop()

	select {
	case p.slots <- struct{}{}:
	case <-timer.C:
		p.metrics.ObservePoolSaturated()
		p.logger.Warn("session pool saturated, rejecting booking attempt",
			"size", cap(p.slots), "max_wait", p.maxWait.String())
		return nil, booking.ErrPoolSaturated
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sess, err := p.inner.Acquire(ctx)
	if err != nil {
		<-p.slots
		return nil, err
	}
	return &pooledSession{Session: sess, release: func() { <-p.slots }}, nil
}

// InUse reports how many slots are currently held.
func (p *Pool) InUse() int {
	return len(p.slots)
}

// pooledSession returns its slot on Close. The slot comes back exactly once
// even if Close is called again.
type pooledSession struct {
	Session
	once    sync.Once
	release func()
}

func (s *pooledSession) Close() error {
	err := s.Session.Close()
	s.once.Do(s.release)
	return err
}
