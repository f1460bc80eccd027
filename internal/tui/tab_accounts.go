package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/tui/components"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAccountsTab(cw int) string {
	t := theme.Active
	cur := a.opts.Currency

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.accounts) == 0 {
		body := dimStyle.Render("No accounts yet. Add one with `roomwise accounts add`.")
		return components.ContentCard("Accounts", body, cw)
	}

	innerW := components.CardInnerWidth(cw)
	const catW, balW, dateW = 16, 16, 10
	compact := a.isCompactLayout()
	instW := 0
	if !compact {
		instW = 20
	}
	nameW := max(innerW-catW-balW-dateW-instW-4, 10)

	formatRow := func(name, category, inst, balance, updated string) string {
		row := fmt.Sprintf("%-*s %-*s ", nameW, truncStr(name, nameW), catW, category)
		if !compact {
			row += fmt.Sprintf("%-*s ", instW, truncStr(inst, instW))
		}
		return row + fmt.Sprintf("%*s %*s", balW, balance, dateW, updated)
	}

	var table strings.Builder
	table.WriteString(headerStyle.Render(formatRow("Name", "Category", "Institution", "Balance", "Updated")))
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	for i, acct := range a.accounts {
		line := formatRow(acct.Name, acct.Category.Label(), acct.Institution,
			formatMoney(acct.Balance, cur), acct.UpdatedAt.Format("2006-01-02"))
		style := rowStyle
		if i == a.accountCursor {
			style = selectedStyle
			line = fmt.Sprintf("%-*s", innerW, line)
		}
		table.WriteString("\n")
		table.WriteString(style.Render(line))
	}

	h := a.dash.Holdings
	title := fmt.Sprintf("Accounts  %s across %d", formatMoney(h.TotalBalance, cur), h.TotalAccounts)

	var b strings.Builder
	b.WriteString(components.ContentCard(title, table.String(), cw))
	b.WriteString("\n")

	// Share of the total per category
	var mix strings.Builder
	barW := max(innerW-16-2-12-8, 10)
	for i, cs := range h.ByCategory {
		filled := max(0, min(barW, int(cs.SharePercent/100*float64(barW))))
		bar := lipgloss.NewStyle().Foreground(categoryColor(cs.Category)).Background(t.Surface).
			Render(strings.Repeat("█", filled))
		rest := dimStyle.Render(strings.Repeat("░", barW-filled))
		mix.WriteString(mutedStyle.Render(fmt.Sprintf("%-16s  ", cs.Category.Label())))
		mix.WriteString(bar + rest)
		mix.WriteString(rowStyle.Render(fmt.Sprintf(" %6.1f%% ", cs.SharePercent)))
		mix.WriteString(dimStyle.Render(cli.FormatMoneyCompact(cs.Balance, cur)))
		if i < len(h.ByCategory)-1 {
			mix.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Mix", mix.String(), cw))
	return b.String()
}
