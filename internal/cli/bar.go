package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Renders XP and boss HP gauges: [████████████░░░░░░░░]  42%

const barWidth = 20 // Characters for the bar

// renderBar draws pct (0-100) as a fixed-width bar with the filled part in
// style.
func renderBar(pct float64, style lipgloss.Style) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	return "[" + style.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", empty)) + "]"
}
