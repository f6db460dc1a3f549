package alerts

import (
	"fmt"
	"testing"
	"time"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return base.Add(time.Duration(ms) * time.Millisecond)
}

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text
	}
	return out
}

func equal(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestManager_MinimumVisibleDuration(t *testing.T) {
	m := NewManager(3 * time.Second)

	// A and B reported once, then silence.
	m.Update([]string{"A", "B"}, at(0))

	got := m.Update(nil, at(2000))
	if !equal(names(got), []string{"A", "B"}) {
		t.Errorf("t=2000: visible %v, want [A B] still held", names(got))
	}

	got = m.Update(nil, at(3100))
	if len(got) != 0 {
		t.Errorf("t=3100: visible %v, want empty after min-visible elapsed", names(got))
	}
}

func TestManager_ReReportExtendsVisibility(t *testing.T) {
	m := NewManager(3 * time.Second)

	m.Update([]string{"A"}, at(0))
	// A re-reported well past its minimum window: still visible, and
	// FirstSeenAt is not refreshed.
	got := m.Update([]string{"A"}, at(5000))
	if len(got) != 1 || got[0].Text != "A" {
		t.Fatalf("t=5000: visible %v, want [A]", names(got))
	}
	if !got[0].FirstSeenAt.Equal(at(0)) {
		t.Errorf("FirstSeenAt = %v, want original t=0", got[0].FirstSeenAt)
	}

	// Once reporting stops it expires relative to first sight, which has
	// long passed, so the next silent tick drops it.
	got = m.Update(nil, at(5100))
	if len(got) != 0 {
		t.Errorf("t=5100: visible %v, want empty", names(got))
	}
}

func TestManager_FIFOOrder(t *testing.T) {
	m := NewManager(3 * time.Second)

	m.Update([]string{"B"}, at(0))
	m.Update([]string{"B", "A"}, at(100))
	got := m.Update([]string{"B", "A", "C"}, at(200))

	if !equal(names(got), []string{"B", "A", "C"}) {
		t.Errorf("visible %v, want oldest-first [B A C]", names(got))
	}
}

func TestManager_SameTickKeepsReportedOrder(t *testing.T) {
	m := NewManager(3 * time.Second)

	got := m.Update([]string{"X", "Y", "Z"}, at(0))
	if !equal(names(got), []string{"X", "Y", "Z"}) {
		t.Errorf("visible %v, want stable [X Y Z]", names(got))
	}
}

func TestManager_CapNeverExceeded(t *testing.T) {
	m := NewManager(3 * time.Second)

	// Seven distinct alerts across two ticks; cap must hold at every tick.
	var flags []string
	for i := 0; i < 7; i++ {
		flags = append(flags, fmt.Sprintf("alert-%d", i))
		got := m.Update(flags, at(i*100))
		if len(got) > MaxVisible {
			t.Fatalf("tick %d: %d visible, cap is %d", i, len(got), MaxVisible)
		}
	}

	got := m.Visible()
	if len(got) != MaxVisible {
		t.Errorf("visible %d, want exactly %d", len(got), MaxVisible)
	}
	// Oldest survive truncation.
	if got[0].Text != "alert-0" {
		t.Errorf("head = %s, want alert-0", got[0].Text)
	}
}

// An alert pushed past the cap is hidden, not forgotten: when it is
// re-reported it keeps its original FirstSeenAt rather than starting over.
func TestManager_OverCapRecordKeepsIdentity(t *testing.T) {
	m := NewManager(3 * time.Second)

	// Six alerts on one tick; only five fit on screen, F is hidden.
	got := m.Update([]string{"A", "B", "C", "D", "E", "F"}, at(0))
	if len(got) != MaxVisible {
		t.Fatalf("visible %d, want %d", len(got), MaxVisible)
	}

	// F re-reported after the others expired: it surfaces with its
	// first-sighting timestamp intact.
	got = m.Update([]string{"F"}, at(3100))
	if !equal(names(got), []string{"F"}) {
		t.Fatalf("t=3100: visible %v, want [F]", names(got))
	}
	if !got[0].FirstSeenAt.Equal(at(0)) {
		t.Errorf("FirstSeenAt = %v, want original t=0", got[0].FirstSeenAt)
	}
}

func TestManager_DuplicateTextIsOneRecord(t *testing.T) {
	m := NewManager(3 * time.Second)

	got := m.Update([]string{"A", "A", "A"}, at(0))
	if len(got) != 1 {
		t.Errorf("visible %v, want single record for repeated text", names(got))
	}
}

func TestManager_EmptyTickAdvancesExpiry(t *testing.T) {
	m := NewManager(3 * time.Second)

	m.Update([]string{"A"}, at(0))
	// Ticks with a present-but-empty flag list still progress expiry.
	for ms := 300; ms <= 3300; ms += 300 {
		m.Update([]string{}, at(ms))
	}
	if got := m.Visible(); len(got) != 0 {
		t.Errorf("visible %v, want empty after silent expiry", names(got))
	}
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(3 * time.Second)
	m.Update([]string{"A", "B"}, at(0))
	m.Reset()
	if got := m.Visible(); len(got) != 0 {
		t.Errorf("visible %v after Reset, want empty", names(got))
	}
}
