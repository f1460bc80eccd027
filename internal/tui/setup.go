package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues backs the first-run form fields.
type setupValues struct {
	User     string
	Currency string
	Budget   string
	Theme    string
}

var setupCurrencies = []string{"CAD", "USD", "EUR", "GBP", "AUD"}

func newSetupValues(cfg config.Config) setupValues {
	return setupValues{
		User:     cfg.General.User,
		Currency: cfg.General.Currency,
		Budget:   strconv.FormatFloat(cfg.TUI.MonthlyBudget, 'f', -1, 64),
		Theme:    cfg.Appearance.Theme,
	}
}

func validateBudget(s string) error {
	_, err := parseBudget(s)
	return err
}

func validateUser(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("user id is required")
	}
	return nil
}

// newSetupForm builds the first-run wizard. Values are written into vals.
func newSetupForm(vals *setupValues) *huh.Form {
	currencies := make([]huh.Option[string], len(setupCurrencies))
	for i, c := range setupCurrencies {
		currencies[i] = huh.NewOption(c, c)
	}
	themes := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themes[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to roomwise").
				Description("A few questions before the dashboard opens.\nEverything can be changed later in Settings or with `roomwise setup`."),
			huh.NewInput().
				Title("User id").
				Description("Accounts, room and dependents are stored under this id.").
				Value(&vals.User).
				Validate(validateUser),
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencies...).
				Value(&vals.Currency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly savings budget").
				Description("The amount the Allocate tab splits across accounts.").
				Value(&vals.Budget).
				Validate(validateBudget),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// applySetupValues copies the form answers into cfg.
func applySetupValues(cfg *config.Config, vals setupValues) error {
	budget, err := parseBudget(vals.Budget)
	if err != nil {
		return err
	}
	cfg.General.User = strings.TrimSpace(vals.User)
	cfg.General.Currency = vals.Currency
	cfg.TUI.MonthlyBudget = budget.InexactFloat64()
	if theme.Known(vals.Theme) {
		cfg.Appearance.Theme = vals.Theme
	}
	return nil
}

func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	if err := applySetupValues(&cfg, a.setupVals); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	a.opts.UserID = cfg.General.User
	return a.applyConfig(cfg)
}
