package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
)

// Config holds all roomwise configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Policy     PolicyConfig     `toml:"policy"`
	Projection ProjectionConfig `toml:"projection"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds identity and storage settings.
type GeneralConfig struct {
	User     string `toml:"user"`
	Currency string `toml:"currency"`
	DBDriver string `toml:"db_driver"`
	DBDSN    string `toml:"db_dsn,omitempty"`
}

// PolicyConfig overrides the allocation policy.
type PolicyConfig struct {
	MatchedAnnualCeiling float64  `toml:"matched_annual_ceiling"`
	RoomOrder            []string `toml:"room_order"`
	MaxDependentAge      int      `toml:"max_dependent_age"`
}

// ProjectionConfig holds projection defaults.
type ProjectionConfig struct {
	AnnualGrowthRate    float64 `toml:"annual_growth_rate"`
	HorizonYears        int     `toml:"horizon_years"`
	MonthlyContribution float64 `toml:"monthly_contribution"`
	Precision           string  `toml:"precision"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Addr             string `toml:"addr"`
	SnapshotSchedule string `toml:"snapshot_schedule"`
	EventsBuffer     int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard preferences.
type TUIConfig struct {
	MonthlyBudget float64 `toml:"monthly_budget"`
	LookbackDays  int     `toml:"lookback_days"`
}

// Environment variables that override the config file.
const (
	EnvUser     = "ROOMWISE_USER"
	EnvDBDriver = "ROOMWISE_DB_DRIVER"
	EnvDBDSN    = "ROOMWISE_DB_DSN"
	EnvAddr     = "ROOMWISE_ADDR"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			User:     "default",
			Currency: "CAD",
			DBDriver: "sqlite",
		},
		Policy: PolicyConfig{
			MatchedAnnualCeiling: 2500,
			RoomOrder:            []string{string(plan.TFSA), string(plan.RRSP)},
			MaxDependentAge:      model.DefaultMaxDependentAge,
		},
		Projection: ProjectionConfig{
			AnnualGrowthRate:    0.05,
			HorizonYears:        30,
			MonthlyContribution: 500,
			Precision:           string(plan.RoundPerStep),
		},
		Server: ServerConfig{
			Addr:             "127.0.0.1:8742",
			SnapshotSchedule: "@daily",
			EventsBuffer:     200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			MonthlyBudget: 1000,
			LookbackDays:  365,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "roomwise")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "roomwise")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "roomwise")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "roomwise")
}

// DefaultDBPath is where the sqlite database lives when no DSN is set.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "roomwise.db")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies .env and environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A missing .env is normal; variables already set win.
	_ = godotenv.Load()
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvUser); v != "" {
		cfg.General.User = v
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.General.DBDriver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		cfg.General.DBDSN = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DSN returns the configured DSN, or the default sqlite path.
func (c Config) DSN() string {
	if c.General.DBDSN != "" {
		return c.General.DBDSN
	}
	if c.General.DBDriver == "" || c.General.DBDriver == "sqlite" {
		return DefaultDBPath()
	}
	return ""
}

// AllocationPolicy translates the [policy] section.
func (c Config) AllocationPolicy() (plan.Policy, error) {
	ceiling, err := plan.FromFloat("matched_annual_ceiling", c.Policy.MatchedAnnualCeiling)
	if err != nil {
		return plan.Policy{}, err
	}
	p := plan.Policy{MatchedAnnualCeiling: ceiling}
	if len(c.Policy.RoomOrder) == 0 {
		p.RoomOrder = plan.DefaultPolicy().RoomOrder
	} else {
		for _, name := range c.Policy.RoomOrder {
			cat, err := plan.ParseCategory(name)
			if err != nil {
				return plan.Policy{}, err
			}
			p.RoomOrder = append(p.RoomOrder, cat)
		}
	}
	if err := p.Validate(); err != nil {
		return plan.Policy{}, err
	}
	return p, nil
}

// MaxDependentAge returns the configured age cap, falling back to the default.
func (c Config) MaxDependentAge() int {
	if c.Policy.MaxDependentAge <= 0 {
		return model.DefaultMaxDependentAge
	}
	return c.Policy.MaxDependentAge
}

// Precision returns the configured projection precision mode.
func (c Config) Precision() (plan.PrecisionMode, error) {
	return plan.ParsePrecisionMode(strings.TrimSpace(c.Projection.Precision))
}

// GrowthRate returns the configured annual growth rate as a decimal.
func (c Config) GrowthRate() (decimal.Decimal, error) {
	return plan.FromFloat("annual_growth_rate", c.Projection.AnnualGrowthRate)
}

// MonthlyContribution returns the configured default contribution.
func (c Config) MonthlyContribution() (decimal.Decimal, error) {
	return plan.FromFloat("monthly_contribution", c.Projection.MonthlyContribution)
}

// ProjectionInput returns the default projection assumptions.
func (c Config) ProjectionInput() (planner.ProjectionInput, error) {
	rate, err := c.GrowthRate()
	if err != nil {
		return planner.ProjectionInput{}, err
	}
	contribution, err := c.MonthlyContribution()
	if err != nil {
		return planner.ProjectionInput{}, err
	}
	years := c.Projection.HorizonYears
	if years <= 0 {
		years = DefaultConfig().Projection.HorizonYears
	}
	return planner.ProjectionInput{
		MonthlyContribution: contribution,
		HorizonMonths:       plan.YearsToMonths(years),
		AnnualGrowthRate:    rate,
	}, nil
}

// PlannerOptions translates policy and precision into planner options.
func (c Config) PlannerOptions() (planner.Options, error) {
	policy, err := c.AllocationPolicy()
	if err != nil {
		return planner.Options{}, err
	}
	mode, err := c.Precision()
	if err != nil {
		return planner.Options{}, err
	}
	return planner.Options{
		Policy:          &policy,
		Precision:       mode,
		MaxDependentAge: c.MaxDependentAge(),
	}, nil
}

// MonthlyBudget returns the dashboard's default budget.
func (c Config) MonthlyBudget() (decimal.Decimal, error) {
	return plan.FromFloat("monthly_budget", c.TUI.MonthlyBudget)
}

// Lookback returns how far back the dashboard reads snapshots.
func (c Config) Lookback() time.Duration {
	days := c.TUI.LookbackDays
	if days <= 0 {
		days = DefaultConfig().TUI.LookbackDays
	}
	return time.Duration(days) * 24 * time.Hour
}
