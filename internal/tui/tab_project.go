package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/tui/components"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// yearLabels labels yearly points "now", "y1", "y2"... and a trailing
// partial year by its month count.
func yearLabels(points []plan.Point) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		switch {
		case p.MonthIndex == 0:
			labels[i] = "now"
		case p.MonthIndex%plan.MonthsPerYear == 0:
			labels[i] = fmt.Sprintf("y%d", p.MonthIndex/plan.MonthsPerYear)
		default:
			labels[i] = cli.FormatMonths(p.MonthIndex)
		}
	}
	return labels
}

func (a App) renderProjectTab(cw, contentH int) string {
	t := theme.Active
	cur := a.opts.Currency
	in := a.opts.Projection
	series := a.dash.Projected
	start := a.dash.Holdings.TotalBalance
	final := series.Final()

	var b strings.Builder

	metrics := []components.Metric{
		{Label: "Current balance", Value: formatMoney(start, cur),
			Note: fmt.Sprintf("%d account(s)", a.dash.Holdings.TotalAccounts)},
		{Label: "Projected", Value: formatMoney(final.Value, cur),
			Note: "in " + cli.FormatMonths(final.MonthIndex), Color: t.Gain},
		{Label: "Contribution", Value: formatMoney(in.MonthlyContribution, cur) + "/mo",
			Note: formatMoney(in.MonthlyContribution.Mul(decimal.NewFromInt(plan.MonthsPerYear)), cur) + "/yr"},
		{Label: "Growth", Value: cli.FormatRate(in.AnnualGrowthRate), Note: "annual, compounded monthly"},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	yearly := series.Yearly()
	chartH := max(contentH-16, 6)
	chart := components.BarChart(plan.Floats(yearly), yearLabels(yearly), t.Accent,
		components.CardInnerWidth(cw), chartH)
	if chart == "" {
		chart = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No projection.")
	}
	b.WriteString(components.ContentCard("Projected value by year", chart, cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Balance history", a.renderHistory(cw), cw))
	return b.String()
}

func (a App) renderHistory(cw int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	snaps := a.dash.Actual
	if len(snaps) == 0 {
		return dimStyle.Render("No snapshots yet. Run `roomwise snapshot record` or `roomwise serve`.")
	}

	values := make([]float64, len(snaps))
	for i, s := range snaps {
		values[i] = s.Total.InexactFloat64()
	}
	// Keep the most recent points that fit on one line.
	if width := components.CardInnerWidth(cw); len(values) > width {
		values = values[len(values)-width:]
	}

	first, last := snaps[0], snaps[len(snaps)-1]
	return components.Sparkline(values, t.Trend) + "\n" +
		labelStyle.Render(first.TakenAt.Format("2006-01-02")+" → "+last.TakenAt.Format("2006-01-02")+"  ") +
		valueStyle.Render(cli.FormatDelta(last.Total, first.Total, a.opts.Currency)) +
		dimStyle.Render(fmt.Sprintf("  over %d snapshot(s)", len(snaps)))
}
