package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagSeedSeed       int64
	flagSeedAccounts   int
	flagSeedDependents int
	flagSeedMonths     int
	flagSeedReset      bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo accounts, room, dependents and history",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().Int64Var(&flagSeedSeed, "seed", 0, "Random seed (0 picks one)")
	seedCmd.Flags().IntVar(&flagSeedAccounts, "accounts", 5, "Accounts to create")
	seedCmd.Flags().IntVar(&flagSeedDependents, "dependents", 2, "Dependents to create")
	seedCmd.Flags().IntVar(&flagSeedMonths, "months", 12, "Months of monthly snapshots to backfill")
	seedCmd.Flags().BoolVar(&flagSeedReset, "reset", false, "Delete the user's existing accounts and dependents first")
	rootCmd.AddCommand(seedCmd)
}

// seedBalanceRange is the [min, max] starting balance per category.
var seedBalanceRange = map[plan.Category][2]float64{
	plan.RESP:    {2_000, 25_000},
	plan.TFSA:    {5_000, 60_000},
	plan.RRSP:    {10_000, 150_000},
	plan.Taxable: {500, 40_000},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if flagSeedAccounts < 0 || flagSeedDependents < 0 || flagSeedMonths < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	if flagSeedReset {
		if err := resetUser(ctx, e.store, e.user); err != nil {
			return err
		}
	}

	f := gofakeit.New(flagSeedSeed)
	now := time.Now()
	year := now.Year()

	accounts, err := seedAccounts(ctx, e.store, f, e.user)
	if err != nil {
		return err
	}
	for _, c := range plan.RoomLimited {
		limit, ok := config.LookupAnnualLimit(c, year)
		if !ok {
			continue
		}
		// Some of this year's room already used.
		used := decimal.NewFromFloat(f.Float64Range(0, 0.6)).Mul(limit)
		room := plan.RoundCurrency(limit.Sub(used))
		if err := e.store.SetRoom(ctx, model.RoomRecord{UserID: e.user, Year: year, Category: c, Amount: room}); err != nil {
			return err
		}
	}
	for range flagSeedDependents {
		d := model.Dependent{UserID: e.user, Name: f.FirstName(), BirthYear: f.Number(year-16, year)}
		if err := e.store.SaveDependent(ctx, &d); err != nil {
			return err
		}
	}
	snaps, err := seedHistory(ctx, e.store, f, e.user, accounts, now)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	logger.Info().Int64("seed", flagSeedSeed).Str("user", e.user).Msg("seeded")
	fmt.Printf("  Seeded %s: %d account(s), %d dependent(s), %d snapshot(s)\n",
		e.user, len(accounts), flagSeedDependents, snaps)
	fmt.Printf("  Total balance %s\n", cli.FormatMoney(total, e.currency()))
	return nil
}

func seedAccounts(ctx context.Context, st *store.Store, f *gofakeit.Faker, user string) ([]model.Account, error) {
	out := make([]model.Account, 0, flagSeedAccounts)
	for i := range flagSeedAccounts {
		// Cover every category before repeating one.
		c := plan.Categories[i%len(plan.Categories)]
		if i >= len(plan.Categories) {
			c = plan.Categories[f.Number(0, len(plan.Categories)-1)]
		}
		r := seedBalanceRange[c]
		a := model.Account{
			UserID:      user,
			Name:        fmt.Sprintf("%s %s", f.Company(), c.Label()),
			Category:    c,
			Institution: f.Company(),
			Balance:     plan.RoundCurrency(decimal.NewFromFloat(f.Price(r[0], r[1]))),
		}
		if err := st.SaveAccount(ctx, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// seedHistory walks balances back month by month, recording a snapshot at
// each point, then restores the current balances and records today.
func seedHistory(ctx context.Context, st *store.Store, f *gofakeit.Faker, user string, accounts []model.Account, now time.Time) (int, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	count := 0
	for back := flagSeedMonths; back >= 1; back-- {
		// Roughly 1.5% lower per month back, with some noise.
		factor := 1 - 0.015*float64(back) + f.Float64Range(-0.01, 0.01)
		factor = max(factor, 0.2)
		for _, a := range accounts {
			past := a
			past.Balance = plan.RoundCurrency(a.Balance.Mul(decimal.NewFromFloat(factor)))
			if err := st.SaveAccount(ctx, &past); err != nil {
				return count, err
			}
		}
		if _, err := st.RecordSnapshot(ctx, user, now.AddDate(0, -back, 0)); err != nil {
			return count, err
		}
		count++
	}
	for i := range accounts {
		if err := st.SaveAccount(ctx, &accounts[i]); err != nil {
			return count, err
		}
	}
	if _, err := st.RecordSnapshot(ctx, user, now); err != nil {
		return count, err
	}
	return count + 1, nil
}

func resetUser(ctx context.Context, st *store.Store, user string) error {
	accounts, err := st.ListAccounts(ctx, user)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if err := st.DeleteAccount(ctx, user, a.ID); err != nil {
			return err
		}
	}
	deps, err := st.ListDependents(ctx, user)
	if err != nil {
		return err
	}
	for _, d := range deps {
		if err := st.DeleteDependent(ctx, user, d.ID); err != nil {
			return err
		}
	}
	return nil
}
