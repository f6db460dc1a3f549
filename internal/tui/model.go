package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Abhinav2896/go-analysis-console/internal/view"
)

// refreshInterval is the dashboard redraw cadence. Faster than the throttle
// window so alert expiry and connection changes never look laggy, but the
// displayed values themselves only move when a tick lands.
const refreshInterval = 200 * time.Millisecond

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh the display.
type TickMsg time.Time

// =============================================================================
// Model
// =============================================================================

// SnapshotSource hands out consistent view-model snapshots.
type SnapshotSource interface {
	Snapshot() view.Model
}

// Config holds TUI configuration.
type Config struct {
	BackendURL  string
	MetricsAddr string
	Source      SnapshotSource
}

// Model represents the TUI state.
type Model struct {
	backendURL  string
	metricsAddr string
	source      SnapshotSource

	snap      view.Model
	startTime time.Time

	width  int
	height int

	quitting bool
}

// New creates a new TUI model.
func New(cfg Config) Model {
	return Model{
		backendURL:  cfg.BackendURL,
		metricsAddr: cfg.MetricsAddr,
		source:      cfg.Source,
		startTime:   time.Now(),
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.source != nil {
			m.snap = m.source.Snapshot()
		}
		return m, tickCmd()
	}

	return m, nil
}

// tickCmd returns a command that sends a tick after the refresh interval.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Elapsed returns the time since the dashboard started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, min, s)
}

// formatScore formats a 0-100 score with one decimal.
func formatScore(v float64) string {
	return fmt.Sprintf("%5.1f", v)
}

// formatUnit formats a 0-1 dimensional score.
func formatUnit(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
