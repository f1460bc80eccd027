package model

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/plan"
)

// CategoryStats aggregates balances for one category.
type CategoryStats struct {
	Category     plan.Category   `json:"category"`
	Accounts     int             `json:"accounts"`
	Balance      decimal.Decimal `json:"balance"`
	SharePercent float64         `json:"share_percent"`
}

// HoldingsSummary is the top-level view across a user's accounts.
type HoldingsSummary struct {
	TotalAccounts int             `json:"total_accounts"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	ByCategory    []CategoryStats `json:"by_category"`
}

// Summarize groups accounts by category, largest balance first. Categories
// without accounts are omitted.
func Summarize(accounts []Account) HoldingsSummary {
	byCat := make(map[plan.Category]*CategoryStats)
	total := decimal.Zero
	for _, a := range accounts {
		cs, ok := byCat[a.Category]
		if !ok {
			cs = &CategoryStats{Category: a.Category, Balance: decimal.Zero}
			byCat[a.Category] = cs
		}
		cs.Accounts++
		cs.Balance = cs.Balance.Add(a.Balance)
		total = total.Add(a.Balance)
	}

	out := HoldingsSummary{
		TotalAccounts: len(accounts),
		TotalBalance:  total,
		ByCategory:    make([]CategoryStats, 0, len(byCat)),
	}
	for _, cs := range byCat {
		if total.IsPositive() {
			cs.SharePercent = cs.Balance.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out.ByCategory = append(out.ByCategory, *cs)
	}
	sort.Slice(out.ByCategory, func(i, j int) bool {
		if c := out.ByCategory[i].Balance.Cmp(out.ByCategory[j].Balance); c != 0 {
			return c > 0
		}
		return out.ByCategory[i].Category < out.ByCategory[j].Category
	})
	return out
}
