package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconLevel   = "🏋️"
	IconSparkle = "✨"
	IconBoss    = "👹"
	IconStreak  = "🔥"
	IconTrophy  = "🏆"
	IconMeal    = "🍱"
	IconBody    = "📏"
	IconDone    = "✅"
	IconLock    = "🔒"
	IconScroll  = "📜"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	h2Style    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	mutedStyle = lipgloss.NewStyle().Foreground(cMuted)
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	goldStyle  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	panelStyle = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	badgeLevelUp = goldStyle.Render("LEVEL UP")
)

func heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return titleStyle.Render(icon + title)
}

func labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", keyStyle.Render(label+":"), value)
}

// hpStyle colors boss HP by how much is left.
func hpStyle(pct float64) lipgloss.Style {
	switch {
	case pct > 50:
		return goodStyle
	case pct > 20:
		return warnStyle
	default:
		return badStyle
	}
}
