// Package hysteresis damps flicker in the displayed emotion label.
//
// The upstream classifier can flip between two categories several times a
// second. Showing that raw stream makes the label visibly jitter, so a
// differing candidate must persist for a dwell window before the displayed
// value is allowed to switch. Disappearance is different: losing the face
// clears the label on the very event that reports it, with no damping, so
// the display never claims an emotion for a subject that is not there.
package hysteresis

import (
	"math"
	"time"
)

// DefaultDwell is the minimum time the displayed label holds before a
// differing category may replace it.
const DefaultDwell = 2 * time.Second

// DisplayedEmotion is the stabilized label plus its confidence as an integer
// percentage, ready for rendering.
type DisplayedEmotion struct {
	Name              string
	ConfidencePercent int
}

// Selector holds the displayed label and the single pending candidate.
//
// All state is session-scoped; a Selector is created at session start and
// discarded at teardown. Not safe for concurrent use: Observe runs on the
// session loop only.
type Selector struct {
	dwell time.Duration

	current      *DisplayedEmotion
	lastChangeAt time.Time
	pending      *DisplayedEmotion
}

// NewSelector creates a Selector with the given dwell window.
func NewSelector(dwell time.Duration) *Selector {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Selector{dwell: dwell}
}

// Observe feeds one accepted event into the selector and returns the label
// to display after it.
//
// A lost face clears the label immediately and drops any pending candidate.
// A candidate matching the displayed category commits at once (refreshing
// confidence and the dwell anchor). A differing candidate commits only once
// the dwell window has elapsed since the last commit; until then it parks in
// the single pending slot, each new differing candidate overwriting the
// previous one.
//
// A pending candidate is never committed by elapsed time alone; only the
// next qualifying event can commit it. If the stream pauses while a pending
// candidate is waiting out the dwell window, the display keeps the old
// category until traffic resumes.
func (s *Selector) Observe(faceDetected bool, emotion string, confidence float64, now time.Time) *DisplayedEmotion {
	if !faceDetected {
		s.current = nil
		s.pending = nil
		return nil
	}

	candidate := &DisplayedEmotion{
		Name:              emotion,
		ConfidencePercent: clampPercent(math.Round(confidence * 100)),
	}

	if s.current == nil || candidate.Name == s.current.Name {
		s.commit(candidate, now)
		return s.current
	}

	if now.Sub(s.lastChangeAt) >= s.dwell {
		s.commit(candidate, now)
		return s.current
	}

	// Still inside the dwell window: park the candidate, hold the label.
	s.pending = candidate
	return s.current
}

// Current returns the displayed label, or nil when no face is shown.
func (s *Selector) Current() *DisplayedEmotion {
	return s.current
}

// Pending returns the parked candidate, or nil when none is waiting.
func (s *Selector) Pending() *DisplayedEmotion {
	return s.pending
}

// Reset clears all selector state. Called on session teardown.
func (s *Selector) Reset() {
	s.current = nil
	s.pending = nil
	s.lastChangeAt = time.Time{}
}

func (s *Selector) commit(c *DisplayedEmotion, now time.Time) {
	s.current = c
	s.lastChangeAt = now
	s.pending = nil
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
