package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/plan"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1000", "1000", false},
		{" 1,250.50 ", "1250.5", false},
		{"0", "0", false},
		{"-5", "", true},
		{"ten", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := parseAmount("budget", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, err := parseCategory(" TFSA ")
	if err != nil || c != plan.TFSA {
		t.Fatalf("parseCategory = %q, %v; want tfsa", c, err)
	}
	if _, err := parseCategory("pension"); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("parseCategory(pension) error = %v, want ErrInvalidInput", err)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomwised.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v; want 4242", pid, err)
	}

	if err := os.WriteFile(path, []byte("garbage\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("readPID accepted a non-numeric pid")
	}
}

func TestEnsureServerNotRunning_RemovesStalePID(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "roomwised.pid")
	if err := ensureServerNotRunning(pidFile); err != nil {
		t.Fatalf("missing pid file: %v", err)
	}

	// Our own pid is alive, so it must be reported as running.
	if err := writePID(pidFile, os.Getpid()); err != nil {
		t.Fatal(err)
	}
	if err := ensureServerNotRunning(pidFile); err == nil {
		t.Error("expected running-server error for a live pid")
	}
}

func TestMaskDSN(t *testing.T) {
	tests := map[string]string{
		"postgres://app:secret@db:5432/roomwise": "postgres://app:****@db:5432/roomwise",
		"postgres://app@db/roomwise":             "postgres://app@db/roomwise",
		"/home/me/.local/share/roomwise/db":      "/home/me/.local/share/roomwise/db",
	}
	for in, want := range tests {
		if got := maskDSN(in); got != want {
			t.Errorf("maskDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetupAnswersApply(t *testing.T) {
	cfg := config.DefaultConfig()
	ans := answersFrom(cfg)
	ans.User = "  alice "
	ans.Currency = "usd"
	ans.Budget = "1,500"
	ans.Growth = "0.07"
	ans.Horizon = "20"
	ans.Precision = string(plan.RoundAtOutput)
	ans.Theme = "no-such-theme"

	if err := ans.apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.General.User != "alice" {
		t.Errorf("User = %q, want alice", cfg.General.User)
	}
	if cfg.General.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", cfg.General.Currency)
	}
	if cfg.TUI.MonthlyBudget != 1500 {
		t.Errorf("MonthlyBudget = %v, want 1500", cfg.TUI.MonthlyBudget)
	}
	if cfg.Projection.HorizonYears != 20 || cfg.Projection.AnnualGrowthRate != 0.07 {
		t.Errorf("projection = %+v", cfg.Projection)
	}
	if cfg.Projection.Precision != string(plan.RoundAtOutput) {
		t.Errorf("Precision = %q", cfg.Projection.Precision)
	}
	if cfg.Appearance.Theme != config.DefaultConfig().Appearance.Theme {
		t.Errorf("unknown theme was applied: %q", cfg.Appearance.Theme)
	}
}

func TestSetupAnswersApply_Rejects(t *testing.T) {
	base := answersFrom(config.DefaultConfig())
	cases := map[string]func(*setupAnswers){
		"negative budget": func(a *setupAnswers) { a.Budget = "-1" },
		"bad growth":      func(a *setupAnswers) { a.Growth = "fast" },
		"nan growth":      func(a *setupAnswers) { a.Growth = "NaN" },
		"zero horizon":    func(a *setupAnswers) { a.Horizon = "0" },
		"empty user":      func(a *setupAnswers) { a.User = " " },
		"bad precision":   func(a *setupAnswers) { a.Precision = "sometimes" },
		"postgres no dsn": func(a *setupAnswers) { a.Driver = "postgres"; a.DSN = "" },
	}
	for name, mutate := range cases {
		ans := base
		mutate(&ans)
		cfg := config.DefaultConfig()
		if err := ans.apply(&cfg); err == nil {
			t.Errorf("%s: apply succeeded, want error", name)
		}
	}
}

func TestAllocationRequestFromFlags(t *testing.T) {
	defer func() {
		flagAllocDependents, flagAllocTFSARoom, flagAllocRRSPRoom = 0, "0", "0"
	}()
	flagAllocDependents = 2
	flagAllocTFSARoom = "7000"
	flagAllocRRSPRoom = "1200"

	req, err := allocationRequestFromFlags(decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if req.DependentCount != 2 {
		t.Errorf("DependentCount = %d, want 2", req.DependentCount)
	}
	if !req.RoomByCategory[plan.RRSP].Equal(decimal.NewFromInt(1200)) {
		t.Errorf("RRSP room = %s, want 1200", req.RoomByCategory[plan.RRSP])
	}

	res, err := plan.Allocate(req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Total().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total = %s, want 1000", res.Total())
	}

	flagAllocDependents = -1
	if _, err := allocationRequestFromFlags(decimal.NewFromInt(1000)); err == nil {
		t.Error("negative dependents accepted")
	}
}

func TestRoomLimitLines(t *testing.T) {
	room := map[plan.Category]decimal.Decimal{
		plan.TFSA: decimal.NewFromInt(3500),
		plan.RRSP: decimal.NewFromInt(40000),
	}
	lines := roomLimitLines(room, 2024, "CAD")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "$3,500.00/$7,000.00") {
		t.Errorf("TFSA line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "$40,000.00/$31,560.00") {
		t.Errorf("RRSP line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "carried-forward") {
		t.Errorf("over-limit warning = %q", lines[2])
	}

	if got := roomLimitLines(room, 1990, "CAD"); len(got) != 0 {
		t.Errorf("year without limits = %q, want none", got)
	}
}
