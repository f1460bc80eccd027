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

func formatMoney(d decimal.Decimal, currency string) string {
	return cli.FormatMoney(d, currency)
}

func categoryColor(c plan.Category) lipgloss.Color {
	t := theme.Active
	switch c {
	case plan.RESP:
		return t.Matched
	case plan.TFSA:
		return t.Sheltered
	case plan.RRSP:
		return t.Deferred
	default:
		return t.Taxable
	}
}

// roomUsage is the fraction of a year's remaining room the plan would use
// if the monthly amount were contributed for twelve months.
func roomUsage(monthly, annualRoom decimal.Decimal) float64 {
	if !annualRoom.IsPositive() {
		return 0
	}
	return monthly.Mul(decimal.NewFromInt(plan.MonthsPerYear)).Div(annualRoom).InexactFloat64()
}

func (a App) renderAllocateTab(cw int) string {
	t := theme.Active
	cur := a.opts.Currency
	req := a.plan.Request
	res := a.plan.Result

	var b strings.Builder

	// Row 1: one card per category
	metrics := make([]components.Metric, 0, len(plan.Categories))
	for _, c := range plan.Categories {
		amt := res.AllocationByCategory[c]
		note := ""
		switch {
		case c == plan.RESP:
			note = fmt.Sprintf("%d eligible dependent(s)", req.DependentCount)
		case c.IsRoomLimited():
			note = formatMoney(req.RoomByCategory[c], cur) + " room"
		default:
			note = "no limit"
		}
		metrics = append(metrics, components.Metric{
			Label: c.Label(),
			Value: formatMoney(amt, cur) + "/mo",
			Note:  note,
			Color: categoryColor(c),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	// Row 2 left: budget input and totals
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var budget strings.Builder
	budget.WriteString(labelStyle.Render("Monthly budget  "))
	if a.editingBudget {
		budget.WriteString(a.budgetIn.View())
	} else {
		budget.WriteString(valueStyle.Render(formatMoney(req.MonthlyBudget, cur)))
	}
	budget.WriteString("\n")
	budget.WriteString(labelStyle.Render("Allocated       ") + valueStyle.Render(formatMoney(res.Total(), cur)))
	budget.WriteString("\n")
	budget.WriteString(labelStyle.Render("Per year        ") +
		valueStyle.Render(formatMoney(req.MonthlyBudget.Mul(decimal.NewFromInt(plan.MonthsPerYear)), cur)))
	budget.WriteString("\n\n")
	if a.editingBudget {
		budget.WriteString(hintStyle.Render("[Enter] apply  [Esc] cancel"))
	} else {
		budget.WriteString(hintStyle.Render("[b] edit budget  [ ] change year"))
	}
	budgetCard := components.ContentCard(fmt.Sprintf("Budget · %d", a.plan.Year), budget.String(), halves[0])

	// Row 2 right: how much of each room the plan uses over a year
	innerW := components.CardInnerWidth(halves[1])
	labelW := 16
	barW := max(innerW-labelW-8-16, 8)
	var room strings.Builder
	for i, c := range plan.RoomLimited {
		annual := req.RoomByCategory[c]
		detail := "no room"
		if annual.IsPositive() {
			detail = cli.FormatMoneyCompact(annual, cur) + " left"
		}
		room.WriteString(components.UsageBar(c.Label(), roomUsage(res.AllocationByCategory[c], annual), detail, labelW, barW))
		if i < len(plan.RoomLimited)-1 {
			room.WriteString("\n")
		}
	}
	roomCard := components.ContentCard("Room used by this plan", room.String(), halves[1])

	b.WriteString(components.CardRow([]string{budgetCard, roomCard}))
	b.WriteString("\n")

	// Row 3: rationale
	var why strings.Builder
	if len(res.Rationale) == 0 {
		why.WriteString(hintStyle.Render("Nothing to allocate."))
	}
	for i, line := range res.Rationale {
		why.WriteString(labelStyle.Render(fmt.Sprintf("%d. ", i+1)))
		why.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
			Render(truncStr(line, components.CardInnerWidth(cw)-3)))
		if i < len(res.Rationale)-1 {
			why.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Why", why.String(), cw))

	return b.String()
}
