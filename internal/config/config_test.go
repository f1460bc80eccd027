package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/plan"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvUser, "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.User != "default" {
		t.Errorf("User = %q, want default", cfg.General.User)
	}
	if cfg.Projection.HorizonYears != 30 {
		t.Errorf("HorizonYears = %d, want 30", cfg.Projection.HorizonYears)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvUser, "")
	t.Chdir(t.TempDir())

	cfg := DefaultConfig()
	cfg.General.User = "alice"
	cfg.Policy.RoomOrder = []string{"rrsp", "tfsa"}
	cfg.Projection.Precision = string(plan.RoundAtOutput)
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}
	info, err := os.Stat(Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.User != "alice" {
		t.Errorf("User = %q, want alice", got.General.User)
	}
	p, err := got.AllocationPolicy()
	if err != nil {
		t.Fatalf("AllocationPolicy: %v", err)
	}
	if p.RoomOrder[0] != plan.RRSP {
		t.Errorf("RoomOrder = %v, want rrsp first", p.RoomOrder)
	}
	if mode, _ := got.Precision(); mode != plan.RoundAtOutput {
		t.Errorf("Precision = %q, want %q", mode, plan.RoundAtOutput)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvUser, "")
	t.Setenv(EnvAddr, ":9999")
	// godotenv does not override variables that are already set.
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ROOMWISE_DB_DRIVER=postgres\nROOMWISE_ADDR=:1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv(EnvDBDriver) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres from .env", cfg.General.DBDriver)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999 from env", cfg.Server.Addr)
	}
}

func TestAllocationPolicy_Rejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.MatchedAnnualCeiling = math.NaN()
	if _, err := cfg.AllocationPolicy(); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("NaN ceiling err = %v, want ErrInvalidInput", err)
	}

	cfg = DefaultConfig()
	cfg.Policy.RoomOrder = []string{"tfsa", "resp"}
	if _, err := cfg.AllocationPolicy(); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("bad order err = %v, want ErrInvalidInput", err)
	}

	cfg = DefaultConfig()
	cfg.Policy.RoomOrder = nil
	p, err := cfg.AllocationPolicy()
	if err != nil {
		t.Fatalf("empty order: %v", err)
	}
	if len(p.RoomOrder) != 2 || p.RoomOrder[0] != plan.TFSA {
		t.Errorf("empty order fell back to %v", p.RoomOrder)
	}
}

func TestDSN(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got := cfg.DSN(); got != filepath.Join("/data", "roomwise", "roomwise.db") {
		t.Errorf("DSN = %q", got)
	}
	cfg.General.DBDSN = "postgres://x"
	if got := cfg.DSN(); got != "postgres://x" {
		t.Errorf("DSN = %q", got)
	}
}

func TestLookupAnnualLimit_UsesEffectiveYear(t *testing.T) {
	tests := []struct {
		cat  plan.Category
		year int
		want int64
		ok   bool
	}{
		{plan.TFSA, 2009, 5000, true},
		{plan.TFSA, 2014, 5500, true},
		{plan.TFSA, 2015, 10000, true},
		{plan.TFSA, 2018, 5500, true},
		{plan.TFSA, 2030, 7000, true},
		{plan.TFSA, 2008, 0, false},
		{plan.RRSP, 2026, 33810, true},
		{plan.RESP, 2026, 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupAnnualLimit(tt.cat, tt.year)
		if ok != tt.ok || got.IntPart() != tt.want {
			t.Errorf("LookupAnnualLimit(%s, %d) = %s, %v; want %d, %v", tt.cat, tt.year, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProjectionInputAndOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Projection.HorizonYears = 0
	cfg.Projection.Precision = string(plan.RoundAtOutput)
	cfg.TUI.LookbackDays = 0

	in, err := cfg.ProjectionInput()
	if err != nil {
		t.Fatal(err)
	}
	if in.HorizonMonths != 360 {
		t.Errorf("HorizonMonths = %d, want 360 (default 30 years)", in.HorizonMonths)
	}
	if !in.MonthlyContribution.Equal(decimal.NewFromInt(500)) {
		t.Errorf("MonthlyContribution = %s, want 500", in.MonthlyContribution)
	}

	opts, err := cfg.PlannerOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Precision != plan.RoundAtOutput {
		t.Errorf("Precision = %q, want %q", opts.Precision, plan.RoundAtOutput)
	}
	if opts.Policy == nil || len(opts.Policy.RoomOrder) != 2 {
		t.Errorf("Policy = %+v", opts.Policy)
	}

	if got, want := cfg.Lookback(), 365*24*time.Hour; got != want {
		t.Errorf("Lookback() = %v, want %v", got, want)
	}

	cfg.Projection.Precision = "bogus"
	if _, err := cfg.PlannerOptions(); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("bogus precision error = %v, want ErrInvalidInput", err)
	}
	cfg.Projection.AnnualGrowthRate = math.Inf(1)
	if _, err := cfg.ProjectionInput(); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("infinite rate error = %v, want ErrInvalidInput", err)
	}
}
