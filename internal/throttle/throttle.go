// Package throttle rate-limits the raw push-channel event stream before it
// reaches the stabilization layer.
//
// The policy is last-wins-drop, not averaging: at most one event is forwarded
// per fixed window, and an event arriving once the window has elapsed is the
// one forwarded. Events landing inside an open window are discarded with no
// side effects. This bounds the UI update rate under bursty upstream
// frequency while preserving freshness over smoothing.
package throttle

import (
	"sync/atomic"
	"time"
)

// DefaultWindow is the forwarding window applied when none is configured.
const DefaultWindow = 300 * time.Millisecond

// Clock interface for testing with deterministic time.
type Clock interface {
	Now() time.Time
}

// realClock uses time.Now() for production.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Throttler gates events to at most one per window.
//
// Not safe for concurrent use: Offer is expected to be called from the
// single session loop that owns all stream processing.
type Throttler struct {
	window      time.Duration
	clock       Clock
	lastForward time.Time

	// Counters are atomic so metrics readers can poll them from
	// outside the session loop.
	offered   atomic.Int64
	forwarded atomic.Int64
	dropped   atomic.Int64
}

// New creates a Throttler with the real clock.
func New(window time.Duration) *Throttler {
	return NewWithClock(window, realClock{})
}

// NewWithClock creates a Throttler with a custom clock for testing.
func NewWithClock(window time.Duration, clock Clock) *Throttler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttler{
		window: window,
		clock:  clock,
	}
}

// Offer presents an event to the gate. It returns true when the event should
// be forwarded downstream; false means the event fell inside an open window
// and must be discarded.
//
// The first event ever offered is always forwarded.
func (t *Throttler) Offer() bool {
	t.offered.Add(1)

	now := t.clock.Now()
	if !t.lastForward.IsZero() && now.Sub(t.lastForward) < t.window {
		t.dropped.Add(1)
		return false
	}

	t.lastForward = now
	t.forwarded.Add(1)
	return true
}

// Window returns the configured forwarding window.
func (t *Throttler) Window() time.Duration {
	return t.window
}

// Stats returns the offered, forwarded, and dropped event counts.
func (t *Throttler) Stats() (offered, forwarded, dropped int64) {
	return t.offered.Load(), t.forwarded.Load(), t.dropped.Load()
}

// Reset clears the gate so the next offered event forwards immediately.
// Called on session teardown so a reconnected session starts fresh.
func (t *Throttler) Reset() {
	t.lastForward = time.Time{}
}
