package components

import (
	"fmt"

	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct shades a usage fraction from green to red.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Loss
	case pct >= 0.8:
		return t.Strain
	case pct >= 0.5:
		return t.Caution
	default:
		return t.Gain
	}
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// UsageBar renders "label  [bar] 42%  detail". pct above 1 is drawn full
// and colored as exhausted.
func UsageBar(label string, pct float64, detail string, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForPct(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	out := labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space.Render(" ") +
		bar.ViewAs(clampPct(pct)) +
		space.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", pct*100))
	if detail != "" {
		out += space.Render("  ") + detailStyle.Render(detail)
	}
	return out
}
