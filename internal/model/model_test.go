package model

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/plan"
)

func TestDependentEligible(t *testing.T) {
	tests := []struct {
		birth int
		year  int
		want  bool
	}{
		{0, 2026, true},
		{2026, 2026, true},
		{2009, 2026, true},
		{2008, 2026, false},
		{2027, 2026, false},
	}
	for _, tt := range tests {
		d := Dependent{BirthYear: tt.birth}
		if got := d.Eligible(tt.year, DefaultMaxDependentAge); got != tt.want {
			t.Errorf("Eligible(birth=%d, year=%d) = %v, want %v", tt.birth, tt.year, got, tt.want)
		}
	}
}

func TestEligibleCount(t *testing.T) {
	deps := []Dependent{{BirthYear: 2015}, {BirthYear: 2000}, {}}
	if got := EligibleCount(deps, 2026, DefaultMaxDependentAge); got != 2 {
		t.Errorf("EligibleCount = %d, want 2", got)
	}
}

func TestSummarize(t *testing.T) {
	accounts := []Account{
		{Category: plan.TFSA, Balance: decimal.NewFromInt(3000)},
		{Category: plan.RRSP, Balance: decimal.NewFromInt(5000)},
		{Category: plan.TFSA, Balance: decimal.NewFromInt(2000)},
	}
	s := Summarize(accounts)
	if s.TotalAccounts != 3 {
		t.Errorf("TotalAccounts = %d, want 3", s.TotalAccounts)
	}
	if !s.TotalBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("TotalBalance = %s, want 10000", s.TotalBalance)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("ByCategory len = %d, want 2", len(s.ByCategory))
	}
	// TFSA and RRSP tie at 5000; ties break on category name.
	if s.ByCategory[0].Category != plan.RRSP || s.ByCategory[0].SharePercent != 50 {
		t.Errorf("ByCategory[0] = %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].Accounts != 2 {
		t.Errorf("TFSA accounts = %d, want 2", s.ByCategory[1].Accounts)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if !s.TotalBalance.IsZero() || len(s.ByCategory) != 0 {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}
