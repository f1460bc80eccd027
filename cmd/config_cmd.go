package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/roomwise/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    User:       %s\n", cfg.General.User)
	fmt.Printf("    Currency:   %s\n", cfg.General.Currency)
	fmt.Printf("    Database:   %s %s\n", cfg.General.DBDriver, maskDSN(cfg.DSN()))
	fmt.Println()

	fmt.Println("  [Policy]")
	fmt.Printf("    Matched ceiling:   %.2f/yr per dependent\n", cfg.Policy.MatchedAnnualCeiling)
	fmt.Printf("    Room order:        %s\n", strings.Join(cfg.Policy.RoomOrder, ", "))
	fmt.Printf("    Max dependent age: %d\n", cfg.MaxDependentAge())
	fmt.Println()

	fmt.Println("  [Projection]")
	fmt.Printf("    Growth rate:  %.2f%%\n", cfg.Projection.AnnualGrowthRate*100)
	fmt.Printf("    Horizon:      %d years\n", cfg.Projection.HorizonYears)
	fmt.Printf("    Contribution: %.2f/mo\n", cfg.Projection.MonthlyContribution)
	fmt.Printf("    Precision:    %s\n", cfg.Projection.Precision)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:   %s\n", cfg.Server.Addr)
	if cfg.Server.SnapshotSchedule != "" {
		fmt.Printf("    Snapshots: %s\n", cfg.Server.SnapshotSchedule)
	} else {
		fmt.Println("    Snapshots: disabled")
	}
	fmt.Printf("    Events:    %d buffered\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Monthly budget: %.2f\n", cfg.TUI.MonthlyBudget)
	fmt.Printf("    History:        %d days\n", cfg.TUI.LookbackDays)
	fmt.Println()

	fmt.Println("  Run `roomwise setup` to reconfigure.")
	return nil
}

// maskDSN hides a password in a postgres URL.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}
