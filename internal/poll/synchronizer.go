package poll

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is the supplementary poll cadence. The endpoints behind it
// are already low-frequency; they bypass the event throttle entirely.
const DefaultInterval = 2 * time.Second

// Synchronizer periodically runs a fetch-and-merge function. A failed run is
// swallowed: the view keeps its last known values and the next tick tries
// again. There is no backoff and no escalation; poll failure is never a
// connection-level error.
type Synchronizer struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) error
	logger   *slog.Logger

	runs     atomic.Int64
	failures atomic.Int64
}

// NewSynchronizer creates a Synchronizer. The fetch function both calls the
// endpoint and merges the result into the view model.
func NewSynchronizer(name string, interval time.Duration, logger *slog.Logger, fetch func(ctx context.Context) error) *Synchronizer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Synchronizer{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger,
	}
}

// Run fetches immediately and then on every interval tick until the context
// is cancelled.
func (s *Synchronizer) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Synchronizer) runOnce(ctx context.Context) {
	s.runs.Add(1)
	if err := s.fetch(ctx); err != nil {
		s.failures.Add(1)
		s.logger.Debug("poll_failed", "poll", s.name, "error", err)
	}
}

// Name returns the synchronizer's name.
func (s *Synchronizer) Name() string {
	return s.name
}

// Stats returns the total and failed run counts.
func (s *Synchronizer) Stats() (runs, failures int64) {
	return s.runs.Load(), s.failures.Load()
}
