// Package cmd implements the roomwise CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
	"github.com/theirongolddev/roomwise/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagUser     string
	flagDBDriver string
	flagDB       string
	flagQuiet    bool
	flagVerbose  bool
)

// logger is the CLI's stderr logger, configured before every command.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "roomwise",
	Short: "Plan savings across contribution room",
	Long: "Track accounts and contribution room, split a monthly savings budget\n" +
		"across matched, tax-sheltered and taxable accounts, and project growth.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User id (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBDriver, "db-driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (sqlite) or DSN (postgres)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	switch {
	case flagQuiet:
		level = zerolog.WarnLevel
	case flagVerbose:
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagUser != "" {
		cfg.General.User = flagUser
	}
	if flagDBDriver != "" {
		cfg.General.DBDriver = flagDBDriver
	}
	if flagDB != "" {
		cfg.General.DBDSN = flagDB
	}
	return cfg, nil
}

// env is the state most commands need: config, an open store and a
// planner over it.
type env struct {
	cfg     config.Config
	store   *store.Store
	planner *planner.Planner
	user    string
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.General.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	opts, err := cfg.PlannerOptions()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	p, err := planner.New(st, opts)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Debug().
		Str("driver", cfg.General.DBDriver).
		Str("user", cfg.General.User).
		Str("precision", string(opts.Precision)).
		Msg("store opened")
	return &env{cfg: cfg, store: st, planner: p, user: cfg.General.User}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		logger.Warn().Err(err).Msg("closing store")
	}
}

func (e *env) currency() string { return e.cfg.General.Currency }

// parseAmount parses a non-negative money flag.
func parseAmount(name, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s: must not be negative", name)
	}
	return d, nil
}

// budgetFlag returns --budget, or the configured monthly budget when unset.
func budgetFlag(cmd *cobra.Command, raw string, cfg config.Config) (decimal.Decimal, error) {
	if cmd.Flags().Changed("budget") {
		return parseAmount("budget", raw)
	}
	return cfg.MonthlyBudget()
}

func currentYear() int {
	return time.Now().Year()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseCategory(s string) (plan.Category, error) {
	return plan.ParseCategory(strings.ToLower(strings.TrimSpace(s)))
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
