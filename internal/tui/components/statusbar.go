package components

import (
	"strings"

	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar: key hints on the left, info and
// an optional status message on the right.
func RenderStatusBar(width int, info, message string, isError bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)
	if isError {
		msgStyle = msgStyle.Foreground(t.Loss)
	}

	left := base.Render(" [?]help  [r]eload  [q]uit")
	right := ""
	if message != "" {
		right = msgStyle.Render(message) + base.Render("  ")
	}
	if info != "" {
		right += base.Render(info + " ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
