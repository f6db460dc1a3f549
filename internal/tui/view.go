package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Abhinav2896/go-analysis-console/internal/stream"
)

// sparkRunes maps a normalized value to a block glyph, lowest to highest.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderEmotionPanel(),
		m.renderMicroPanel(),
		m.renderVoicePanel(),
	))
	b.WriteString("\n")
	b.WriteString(m.renderStressPanel())
	b.WriteString("\n")
	b.WriteString(m.renderAlertsPanel())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	state := m.snap.ConnState
	status := stateStyle(state.IsOpen(), state == stream.StateProcessing).Render(strings.ToUpper(state.String()))

	left := titleStyle.Render("go-analysis-console")
	right := fmt.Sprintf("%s  %s  %s",
		status,
		labelStyle.Render("backend"),
		valueStyle.Render(m.backendURL),
	)
	return left + "  " + right
}

func (m Model) renderEmotionPanel() string {
	var lines []string
	lines = append(lines, panelTitleStyle.Render("Emotion"))

	if m.snap.Emotion == nil {
		lines = append(lines, mutedStyle.Render("no face detected"))
		lines = append(lines, "")
	} else {
		lines = append(lines, valueStyle.Render(m.snap.Emotion.Name))
		lines = append(lines, labelStyle.Render("confidence ")+
			valueStyle.Render(fmt.Sprintf("%d%%", m.snap.Emotion.ConfidencePercent)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderMicroPanel() string {
	var lines []string
	lines = append(lines, panelTitleStyle.Render("Micro / Blink"))

	micro := m.snap.Micro
	if micro == nil {
		lines = append(lines, mutedStyle.Render("awaiting events"))
	} else {
		lines = append(lines, labelStyle.Render("gaze       ")+valueStyle.Render(micro.Gaze))
		blink := fmt.Sprintf("%d total", m.snap.BlinkCount)
		if m.snap.BlinkPerMin != nil {
			blink += fmt.Sprintf(", %.0f/min", *m.snap.BlinkPerMin)
		}
		lines = append(lines, labelStyle.Render("blinks     ")+valueStyle.Render(blink))
		if micro.BlinkStressLevel != nil {
			style := okStyle
			if *micro.BlinkStressLevel != "Normal" {
				style = warnStyle
			}
			lines = append(lines, labelStyle.Render("blink level ")+style.Render(*micro.BlinkStressLevel))
		}
	}

	lip := m.snap.LipState
	lipStyle := okStyle
	if lip == "lip_compression" {
		lipStyle = warnStyle
	}
	lines = append(lines, labelStyle.Render("lip        ")+
		lipStyle.Render(fmt.Sprintf("%s (%.0f%%)", strings.TrimPrefix(lip, "lip_"), m.snap.LipConfidence*100)))

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderVoicePanel() string {
	var lines []string
	lines = append(lines, panelTitleStyle.Render("Voice"))

	voice := m.snap.Voice
	if voice == nil {
		lines = append(lines, mutedStyle.Render("no voice data"))
	} else {
		levelStyle := okStyle
		if voice.StressLevel != "CALM" {
			levelStyle = errStyle
		}
		lines = append(lines, labelStyle.Render("stress   ")+
			levelStyle.Render(fmt.Sprintf("%s (%.2f)", voice.StressLevel, voice.StressScore)))
		lines = append(lines, labelStyle.Render("arousal  ")+valueStyle.Render(formatUnit(voice.Arousal))+
			labelStyle.Render("  dominance ")+valueStyle.Render(formatUnit(voice.Dominance)))
		lines = append(lines, labelStyle.Render("valence  ")+valueStyle.Render(formatUnit(voice.Valence)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStressPanel() string {
	var lines []string
	title := panelTitleStyle.Render("Stress Timeline") +
		mutedStyle.Render(fmt.Sprintf("  (last %d samples)", len(m.snap.StressHistory)))
	lines = append(lines, title)
	lines = append(lines, sparkline(m.snap.StressHistory))

	current := 0.0
	if n := len(m.snap.StressHistory); n > 0 {
		current = m.snap.StressHistory[n-1]
	}
	lines = append(lines, fmt.Sprintf("%s%s   %s%s   %s%s   %s%s",
		labelStyle.Render("now "), valueStyle.Render(formatScore(current)),
		labelStyle.Render("p50 "), valueStyle.Render(formatScore(m.snap.StressP50)),
		labelStyle.Render("p95 "), valueStyle.Render(formatScore(m.snap.StressP95)),
		labelStyle.Render("max "), valueStyle.Render(formatScore(m.snap.StressMax)),
	))

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderAlertsPanel() string {
	var lines []string
	lines = append(lines, panelTitleStyle.Render("Alerts"))

	if len(m.snap.Alerts) == 0 {
		lines = append(lines, mutedStyle.Render("none"))
	} else {
		for _, rec := range m.snap.Alerts {
			lines = append(lines, alertStyle.Render("▲ "+rec.Text))
		}
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	stats := fmt.Sprintf("events %d recv / %d shown / %d throttled",
		m.snap.EventsReceived, m.snap.EventsForwarded, m.snap.EventsDropped)
	if m.snap.EventsMalformed > 0 {
		stats += fmt.Sprintf(" / %d malformed", m.snap.EventsMalformed)
	}

	parts := []string{
		labelStyle.Render("uptime ") + valueStyle.Render(formatDuration(m.Elapsed())),
		mutedStyle.Render(stats),
	}
	if m.metricsAddr != "" {
		parts = append(parts, mutedStyle.Render("metrics http://"+m.metricsAddr+"/metrics"))
	}
	parts = append(parts, mutedStyle.Render("q to quit"))
	return strings.Join(parts, "  ")
}

// sparkline renders values in [0,100] as one row of block glyphs.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
