package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/tui/components"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldBudget
	settingsFieldContribution
	settingsFieldGrowth
	settingsFieldHorizon
	settingsFieldLookback
	settingsFieldCount // sentinel
)

var settingsLabels = [settingsFieldCount]string{
	"Theme",
	"Currency",
	"Monthly budget",
	"Contribution",
	"Growth rate",
	"Horizon (years)",
	"History (days)",
}

// settingsState tracks the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// settingValue renders field from cfg for display and as the edit seed.
func settingValue(cfg config.Config, field int) string {
	switch field {
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldCurrency:
		return cfg.General.Currency
	case settingsFieldBudget:
		return strconv.FormatFloat(cfg.TUI.MonthlyBudget, 'f', 2, 64)
	case settingsFieldContribution:
		return strconv.FormatFloat(cfg.Projection.MonthlyContribution, 'f', 2, 64)
	case settingsFieldGrowth:
		return strconv.FormatFloat(cfg.Projection.AnnualGrowthRate, 'f', -1, 64)
	case settingsFieldHorizon:
		return strconv.Itoa(cfg.Projection.HorizonYears)
	case settingsFieldLookback:
		return strconv.Itoa(cfg.TUI.LookbackDays)
	}
	return ""
}

func settingPlaceholder(field int) string {
	switch field {
	case settingsFieldTheme:
		return strings.Join(theme.Names(), ", ")
	case settingsFieldCurrency:
		return "ISO code, e.g. CAD"
	case settingsFieldGrowth:
		return "fraction, e.g. 0.05"
	}
	return ""
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	ti.Placeholder = settingPlaceholder(a.settings.cursor)
	ti.SetValue(settingValue(cfg, a.settings.cursor))
	cmd := ti.Focus()
	a.settings.input = ti
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		cfg := loadConfigOrDefault()
		if err := applySetting(&cfg, a.settings.cursor, a.settings.input.Value()); err != nil {
			a.settings.saveErr = err
			return a, nil
		}
		if err := config.Save(cfg); err != nil {
			a.settings.saveErr = err
			return a, nil
		}
		a.settings.saved = true
		if err := a.applyConfig(cfg); err != nil {
			a.settings.saveErr = err
			return a, nil
		}
		a.reloading = true
		return a, tea.Batch(loadDataCmd(a.src, a.opts), a.spinner.Tick)
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// applySetting parses raw into the config field, rejecting values the
// planner would refuse.
func applySetting(cfg *config.Config, field int, raw string) error {
	val := strings.TrimSpace(raw)
	label := settingsLabels[field]

	parseAmount := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", label, val)
		}
		d, err := plan.FromFloat(label, f)
		if err != nil {
			return 0, err
		}
		if d.IsNegative() {
			return 0, fmt.Errorf("%s must not be negative", label)
		}
		return f, nil
	}
	parseCount := func() (int, error) {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s must be a positive whole number", label)
		}
		return n, nil
	}

	switch field {
	case settingsFieldTheme:
		if !theme.Known(val) {
			return fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldCurrency:
		if len(val) != 3 {
			return fmt.Errorf("currency must be a 3-letter code")
		}
		cfg.General.Currency = strings.ToUpper(val)
	case settingsFieldBudget:
		f, err := parseAmount()
		if err != nil {
			return err
		}
		cfg.TUI.MonthlyBudget = f
	case settingsFieldContribution:
		f, err := parseAmount()
		if err != nil {
			return err
		}
		cfg.Projection.MonthlyContribution = f
	case settingsFieldGrowth:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", label, val)
		}
		if _, err := plan.FromFloat(label, f); err != nil {
			return err
		}
		cfg.Projection.AnnualGrowthRate = f
	case settingsFieldHorizon:
		n, err := parseCount()
		if err != nil {
			return err
		}
		cfg.Projection.HorizonYears = n
	case settingsFieldLookback:
		n, err := parseCount()
		if err != nil {
			return err
		}
		cfg.TUI.LookbackDays = n
	}
	return nil
}

// applyConfig copies the dashboard-facing settings from cfg into the app.
func (a *App) applyConfig(cfg config.Config) error {
	theme.SetActive(cfg.Appearance.Theme)
	in, err := cfg.ProjectionInput()
	if err != nil {
		return err
	}
	budget, err := cfg.MonthlyBudget()
	if err != nil {
		return err
	}
	a.opts.Currency = cfg.General.Currency
	a.opts.Budget = budget
	a.opts.Projection = in
	a.opts.Lookback = cfg.Lookback()
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	innerW := components.CardInnerWidth(cw)

	var form strings.Builder
	for i := range settingsFieldCount {
		label := settingsLabels[i]
		value := settingValue(cfg, i)
		switch i {
		case settingsFieldBudget, settingsFieldContribution:
			if d, err := decimal.NewFromString(value); err == nil {
				value = formatMoney(d, cfg.General.Currency)
			}
		case settingsFieldGrowth:
			if d, err := decimal.NewFromString(value); err == nil {
				value = cli.FormatRate(d)
			}
		}

		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			row := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":")) +
				selectedStyle.Render(value)
			form.WriteString(row)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(labelStyle.Render("  " + fmt.Sprintf("%-18s ", label+":")))
			form.WriteString(valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Strain).Background(t.Surface).
			Render("Not saved: " + a.settings.saveErr.Error()))
	case a.settings.saved:
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface).Render("Saved."))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	policy := cfg.Policy
	var info strings.Builder
	info.WriteString(labelStyle.Render("User:            ") + valueStyle.Render(a.opts.UserID) + "\n")
	info.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(cfg.General.DBDriver) + "\n")
	info.WriteString(labelStyle.Render("Room order:      ") + valueStyle.Render(strings.Join(policy.RoomOrder, " → ")) + "\n")
	info.WriteString(labelStyle.Render("Matched ceiling: ") +
		valueStyle.Render(fmt.Sprintf("%.2f/yr per dependent (age ≤ %d)", policy.MatchedAnnualCeiling, cfg.MaxDependentAge())) + "\n")
	info.WriteString(labelStyle.Render("Precision:       ") + valueStyle.Render(cfg.Projection.Precision) + "\n")
	info.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.Path()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Plan policy", info.String(), cw))
	return b.String()
}
