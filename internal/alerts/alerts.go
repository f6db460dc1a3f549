// Package alerts tracks ephemeral behavioral alert flags for display.
//
// Upstream reports a ranked flag list on every frame, and a flag raised on
// one frame is often gone on the next. Displaying that raw would make alerts
// blink in and out faster than anyone can read them, so every alert is held
// visible for a minimum duration after it is first seen, whether or not
// upstream keeps reporting it.
package alerts

import (
	"sort"
	"time"
)

const (
	// DefaultMinVisible is how long an alert stays visible after first
	// being reported, even through silence.
	DefaultMinVisible = 3 * time.Second

	// MaxVisible caps the visible alert list. Upstream ranks and
	// truncates its flag list to the same bound.
	MaxVisible = 5
)

// Record is one tracked alert. Text is the identity: re-reports of the same
// text refresh visibility without creating a new record or touching
// FirstSeenAt.
type Record struct {
	Text        string
	FirstSeenAt time.Time
}

// Manager owns the tracked alert set for one session.
//
// Not safe for concurrent use: Update runs on the session loop only.
type Manager struct {
	minVisible time.Duration
	tracked    []Record // insertion order, used as the sort tie-break
}

// NewManager creates a Manager with the given minimum visible duration.
func NewManager(minVisible time.Duration) *Manager {
	if minVisible <= 0 {
		minVisible = DefaultMinVisible
	}
	return &Manager{minVisible: minVisible}
}

// Update feeds one tick's incoming flag list and returns the visible set:
// every alert either still being reported or younger than the minimum
// visible duration, oldest first, at most MaxVisible entries.
//
// Update must run on every tick: an empty incoming list still advances
// expiry, which is what lets stale alerts clear during upstream silence.
func (m *Manager) Update(incoming []string, now time.Time) []Record {
	for _, text := range incoming {
		if !m.isTracked(text) {
			m.tracked = append(m.tracked, Record{Text: text, FirstSeenAt: now})
		}
	}

	visible := m.tracked[:0]
	for _, rec := range m.tracked {
		if contains(incoming, rec.Text) || now.Sub(rec.FirstSeenAt) < m.minVisible {
			visible = append(visible, rec)
		}
	}
	m.tracked = visible

	// Stable sort keeps insertion order for records first seen on the
	// same tick, so the UI list never reshuffles.
	sort.SliceStable(m.tracked, func(i, j int) bool {
		return m.tracked[i].FirstSeenAt.Before(m.tracked[j].FirstSeenAt)
	})

	return m.capped()
}

// Visible returns a copy of the current visible set without advancing expiry.
func (m *Manager) Visible() []Record {
	return m.capped()
}

// capped copies out at most MaxVisible records. The cap applies to the
// returned set only; over-cap records stay tracked so a re-report keeps its
// original FirstSeenAt instead of starting a new record.
func (m *Manager) capped() []Record {
	n := len(m.tracked)
	if n > MaxVisible {
		n = MaxVisible
	}
	out := make([]Record, n)
	copy(out, m.tracked[:n])
	return out
}

// Reset drops all tracked alerts. Called on session teardown.
func (m *Manager) Reset() {
	m.tracked = nil
}

func (m *Manager) isTracked(text string) bool {
	for _, rec := range m.tracked {
		if rec.Text == text {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
