// Package view assembles the single structure the rendering layer reads.
//
// Everything the stabilization layer produces (the damped emotion label,
// the visible alert set, the stress timeline, the poll-merged supplementary
// fields) lands in one Model. Writers complete a full tick before the
// updated snapshot becomes visible, so a reader never observes a partially
// merged tick.
package view

import (
	"time"

	"github.com/Abhinav2896/go-analysis-console/internal/alerts"
	"github.com/Abhinav2896/go-analysis-console/internal/hysteresis"
	"github.com/Abhinav2896/go-analysis-console/internal/stream"
	"github.com/Abhinav2896/go-analysis-console/internal/wire"
)

// Model is a point-in-time snapshot of everything displayed.
//
// Slices and pointers inside a snapshot are private copies; holding a Model
// across ticks is safe.
type Model struct {
	// Event-derived fields, written together on each accepted event.
	Emotion       *hysteresis.DisplayedEmotion // nil when no face is shown
	Micro         *wire.MicroSnapshot          // last accepted snapshot, nil before the first
	StressHistory []float64                    // always history.Size values, newest at the tail
	Alerts        []alerts.Record              // oldest first, at most alerts.MaxVisible
	LastEventAt   time.Time

	// Connection state, written by the connection manager callback.
	ConnState stream.State

	// Poll-merged fields. Each retains its last known value across poll
	// failures.
	BlinkCount    int
	BlinkPerMin   *float64 // nil until the backend has a full window
	LipState      string
	LipConfidence float64
	Voice         *wire.VoiceStatus // nil until the first successful voice poll

	// Session stress distribution (display only).
	StressP50     float64
	StressP95     float64
	StressMax     float64
	StressSamples int64

	// Stream accounting.
	EventsReceived  int64
	EventsForwarded int64
	EventsDropped   int64
	EventsMalformed int64
}

// clone returns a deep-enough copy for handing outside the session: shared
// immutable pointers stay shared, mutable slices are copied.
func (m *Model) clone() Model {
	out := *m
	if m.StressHistory != nil {
		out.StressHistory = append([]float64(nil), m.StressHistory...)
	}
	if m.Alerts != nil {
		out.Alerts = append([]alerts.Record(nil), m.Alerts...)
	}
	return out
}
