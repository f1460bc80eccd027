package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/roomwise/internal/planner"
	"github.com/theirongolddev/roomwise/internal/store"
	"github.com/theirongolddev/roomwise/internal/tui"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiSource feeds the dashboard from the planner and the store.
type tuiSource struct {
	*planner.Planner
	*store.Store
}

func runTUI(_ *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	theme.SetActive(e.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	in, err := e.cfg.ProjectionInput()
	if err != nil {
		return err
	}
	budget, err := e.cfg.MonthlyBudget()
	if err != nil {
		return err
	}

	app := tui.NewApp(tuiSource{e.planner, e.store}, tui.Options{
		UserID:     e.user,
		Currency:   e.currency(),
		Year:       currentYear(),
		Budget:     budget,
		Projection: in,
		Lookback:   e.cfg.Lookback(),
		Now:        time.Now,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
