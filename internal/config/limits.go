package config

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/plan"
)

// annualLimit is the new room a category grants from a given year onward.
type annualLimit struct {
	FromYear int
	Amount   decimal.Decimal
}

// defaultLimitHistory holds published yearly dollar limits. Entries must be
// sorted by FromYear ascending. These seed new room records; actual room
// depends on the user's history and is always entered explicitly.
var defaultLimitHistory = map[plan.Category][]annualLimit{
	plan.TFSA: {
		{2009, decimal.NewFromInt(5000)},
		{2013, decimal.NewFromInt(5500)},
		{2015, decimal.NewFromInt(10000)},
		{2016, decimal.NewFromInt(5500)},
		{2019, decimal.NewFromInt(6000)},
		{2023, decimal.NewFromInt(6500)},
		{2024, decimal.NewFromInt(7000)},
	},
	plan.RRSP: {
		{2020, decimal.NewFromInt(27230)},
		{2021, decimal.NewFromInt(27830)},
		{2022, decimal.NewFromInt(29210)},
		{2023, decimal.NewFromInt(30780)},
		{2024, decimal.NewFromInt(31560)},
		{2025, decimal.NewFromInt(32490)},
		{2026, decimal.NewFromInt(33810)},
	},
}

// LookupAnnualLimit returns the yearly dollar limit in effect for c in year.
// Returns false for categories without a limit or years before the first entry.
func LookupAnnualLimit(c plan.Category, year int) (decimal.Decimal, bool) {
	versions, ok := defaultLimitHistory[c]
	if !ok || len(versions) == 0 || year < versions[0].FromYear {
		return decimal.Zero, false
	}

	selected := versions[0].Amount
	for _, v := range versions[1:] {
		if year < v.FromYear {
			break
		}
		selected = v.Amount
	}
	return selected, true
}
