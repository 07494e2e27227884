// Package governor paces remote calls so that consecutive requests to the same
// service are spaced by at least a configured minimum interval.
package governor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Option configures a Governor
type Option func(*Governor)

// WithClock sets the clock used to measure and wait out intervals
func WithClock(c clock.Clock) Option {
	return func(g *Governor) {
		g.clock = c
	}
}

// Governor enforces a minimum spacing between calls per service.
// Each service is an independent lane; waiters on one lane never delay another.
type Governor struct {
	clock clock.Clock
	lanes map[catalog.Service]*lane
}

type lane struct {
	interval time.Duration
	// sem is held for the whole wait so that callers on a lane are released one at a time,
	// in the order they blocked on it
	sem  chan struct{}
	last time.Time
}

// New creates a governor with one lane per entry in intervals
func New(intervals map[catalog.Service]time.Duration, opts ...Option) *Governor {
	g := &Governor{
		clock: clock.RealClock{},
		lanes: make(map[catalog.Service]*lane, len(intervals)),
	}
	for _, opt := range opts {
		opt(g)
	}
	for svc, interval := range intervals {
		if interval < 0 {
			interval = 0
		}
		g.lanes[svc] = &lane{
			interval: interval,
			sem:      make(chan struct{}, 1),
		}
	}
	return g
}

// Throttle blocks until at least the lane's interval has elapsed since the previous
// Throttle on the same service returned. It returns ctx.Err() if the context is
// cancelled first, in which case the caller must not issue the request.
func (g *Governor) Throttle(ctx context.Context, svc catalog.Service) error {
	l, ok := g.lanes[svc]
	if !ok {
		return fmt.Errorf("no pacing configured for service %q", svc)
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !l.last.IsZero() {
		if wait := l.interval - g.clock.Since(l.last); wait > 0 {
			slog.Debug("Throttling request", "service", svc, "wait", wait)
			timer := g.clock.NewTimer(wait)
			select {
			case <-timer.C():
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	l.last = g.clock.Now()
	return nil
}

// Interval returns the configured spacing for a service, or 0 when it has no lane
func (g *Governor) Interval(svc catalog.Service) time.Duration {
	if l, ok := g.lanes[svc]; ok {
		return l.interval
	}
	return 0
}
