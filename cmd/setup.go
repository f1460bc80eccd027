package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers holds the wizard's fields as the form edits them.
type setupAnswers struct {
	User         string
	Currency     string
	Driver       string
	DSN          string
	Budget       string
	Contribution string
	Growth       string
	Horizon      string
	Precision    string
	Theme        string
}

func answersFrom(cfg config.Config) setupAnswers {
	return setupAnswers{
		User:         cfg.General.User,
		Currency:     cfg.General.Currency,
		Driver:       cfg.General.DBDriver,
		DSN:          cfg.General.DBDSN,
		Budget:       strconv.FormatFloat(cfg.TUI.MonthlyBudget, 'f', -1, 64),
		Contribution: strconv.FormatFloat(cfg.Projection.MonthlyContribution, 'f', -1, 64),
		Growth:       strconv.FormatFloat(cfg.Projection.AnnualGrowthRate, 'f', -1, 64),
		Horizon:      strconv.Itoa(cfg.Projection.HorizonYears),
		Precision:    cfg.Projection.Precision,
		Theme:        cfg.Appearance.Theme,
	}
}

func validateMoney(s string) error {
	_, err := parseAmount("value", s)
	return err
}

func validateRate(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a fraction such as 0.05")
	}
	_, err = plan.FromFloat("growth rate", f)
	return err
}

func validateYears(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of years")
	}
	return nil
}

// apply writes the answers into cfg. Answers are validated by the form, but
// apply checks again since it is also the path taken by tests.
func (a setupAnswers) apply(cfg *config.Config) error {
	budget, err := parseAmount("budget", a.Budget)
	if err != nil {
		return err
	}
	contribution, err := parseAmount("contribution", a.Contribution)
	if err != nil {
		return err
	}
	if err := validateRate(a.Growth); err != nil {
		return err
	}
	growth, _ := strconv.ParseFloat(strings.TrimSpace(a.Growth), 64)
	if err := validateYears(a.Horizon); err != nil {
		return err
	}
	horizon, _ := strconv.Atoi(strings.TrimSpace(a.Horizon))
	mode, err := plan.ParsePrecisionMode(a.Precision)
	if err != nil {
		return err
	}

	cfg.General.User = strings.TrimSpace(a.User)
	if cfg.General.User == "" {
		return errors.New("user id is required")
	}
	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	cfg.General.DBDriver = a.Driver
	cfg.General.DBDSN = strings.TrimSpace(a.DSN)
	if cfg.General.DBDriver == "postgres" && cfg.General.DBDSN == "" {
		return errors.New("postgres needs a connection string")
	}
	cfg.TUI.MonthlyBudget = budget.InexactFloat64()
	cfg.Projection.MonthlyContribution = contribution.InexactFloat64()
	cfg.Projection.AnnualGrowthRate = growth
	cfg.Projection.HorizonYears = horizon
	cfg.Projection.Precision = string(mode)
	if theme.Known(a.Theme) {
		cfg.Appearance.Theme = a.Theme
	}
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("existing config unreadable, starting from defaults")
		cfg = config.DefaultConfig()
	}
	ans := answersFrom(cfg)

	themes := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themes[i] = huh.NewOption(t.Name, t.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to roomwise").
				Description("Accounts, contribution room and dependents are stored per user id."),
			huh.NewInput().Title("User id").Value(&ans.User).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("user id is required")
					}
					return nil
				}),
			huh.NewInput().Title("Currency").Description("ISO code used for display only").
				CharLimit(3).Value(&ans.Currency),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Database").
				Options(huh.NewOption("SQLite file", "sqlite"), huh.NewOption("PostgreSQL", "postgres")).
				Value(&ans.Driver),
			huh.NewInput().Title("Database path or DSN").
				Description("Leave empty for "+config.DefaultDBPath()).
				Value(&ans.DSN),
		),
		huh.NewGroup(
			huh.NewInput().Title("Monthly savings budget").Value(&ans.Budget).Validate(validateMoney),
			huh.NewInput().Title("Monthly contribution for projections").Value(&ans.Contribution).Validate(validateMoney),
			huh.NewInput().Title("Annual growth rate").Description("Fraction, e.g. 0.05 for 5%").
				Value(&ans.Growth).Validate(validateRate),
			huh.NewInput().Title("Projection horizon (years)").Value(&ans.Horizon).Validate(validateYears),
			huh.NewSelect[string]().Title("Rounding").
				Options(
					huh.NewOption("Round every month", string(plan.RoundPerStep)),
					huh.NewOption("Round only what is shown", string(plan.RoundAtOutput)),
				).
				Value(&ans.Precision),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Color theme").Options(themes...).Value(&ans.Theme),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := ans.apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `roomwise setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
