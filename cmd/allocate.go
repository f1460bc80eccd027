package cmd

import (
	"fmt"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagAllocBudget     string
	flagAllocYear       int
	flagAllocDependents int
	flagAllocTFSARoom   string
	flagAllocRRSPRoom   string
	flagAllocJSON       bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split a monthly budget across account categories",
	Long: "Split a monthly budget using the stored room and dependents for a year.\n" +
		"Passing --dependents, --tfsa-room or --rrsp-room skips the database and\n" +
		"allocates from the flags alone.",
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&flagAllocBudget, "budget", "b", "", "Monthly budget (default from config)")
	allocateCmd.Flags().IntVar(&flagAllocYear, "year", 0, "Contribution year (default current year)")
	allocateCmd.Flags().IntVar(&flagAllocDependents, "dependents", 0, "Eligible dependents")
	allocateCmd.Flags().StringVar(&flagAllocTFSARoom, "tfsa-room", "0", "Remaining annual TFSA room")
	allocateCmd.Flags().StringVar(&flagAllocRRSPRoom, "rrsp-room", "0", "Remaining annual RRSP room")
	allocateCmd.Flags().BoolVar(&flagAllocJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(allocateCmd)
}

func explicitAllocation(cmd *cobra.Command) bool {
	for _, name := range []string{"dependents", "tfsa-room", "rrsp-room"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runAllocate(cmd *cobra.Command, _ []string) error {
	year := flagAllocYear
	if year == 0 {
		year = currentYear()
	}

	var result planner.AllocationPlan
	var currency string
	if explicitAllocation(cmd) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		currency = cfg.General.Currency
		budget, err := budgetFlag(cmd, flagAllocBudget, cfg)
		if err != nil {
			return err
		}
		req, err := allocationRequestFromFlags(budget)
		if err != nil {
			return err
		}
		policy, err := cfg.AllocationPolicy()
		if err != nil {
			return err
		}
		alloc, err := plan.NewAllocator(policy)
		if err != nil {
			return err
		}
		res, err := alloc.Allocate(req)
		if err != nil {
			return err
		}
		result = planner.AllocationPlan{UserID: cfg.General.User, Year: year, Request: req, Result: res}
	} else {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		currency = e.currency()
		budget, err := budgetFlag(cmd, flagAllocBudget, e.cfg)
		if err != nil {
			return err
		}
		result, err = e.planner.Allocation(ctxOf(cmd), e.user, year, budget)
		if err != nil {
			return err
		}
	}

	logger.Debug().Str("budget", result.Request.MonthlyBudget.String()).Int("year", year).
		Int("dependents", result.Request.DependentCount).Msg("allocated")

	if flagAllocJSON {
		return printJSON(result)
	}
	printAllocation(result, currency)
	return nil
}

func allocationRequestFromFlags(budget decimal.Decimal) (plan.AllocationRequest, error) {
	if flagAllocDependents < 0 {
		return plan.AllocationRequest{}, fmt.Errorf("--dependents must not be negative")
	}
	tfsa, err := parseAmount("tfsa-room", flagAllocTFSARoom)
	if err != nil {
		return plan.AllocationRequest{}, err
	}
	rrsp, err := parseAmount("rrsp-room", flagAllocRRSPRoom)
	if err != nil {
		return plan.AllocationRequest{}, err
	}
	return plan.AllocationRequest{
		MonthlyBudget:  budget,
		DependentCount: flagAllocDependents,
		RoomByCategory: map[plan.Category]decimal.Decimal{plan.TFSA: tfsa, plan.RRSP: rrsp},
	}, nil
}

func printAllocation(p planner.AllocationPlan, currency string) {
	twelve := decimal.NewFromInt(plan.MonthsPerYear)
	res := p.Result

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ALLOCATION  %s/mo  %d",
		cli.FormatMoney(p.Request.MonthlyBudget, currency), p.Year)))
	fmt.Println()

	rows := make([][]string, 0, len(plan.Categories)+2)
	for _, c := range plan.Categories {
		amt := res.AllocationByCategory[c]
		room := "-"
		if c.IsRoomLimited() {
			room = cli.FormatMoney(p.Request.RoomByCategory[c], currency)
		}
		rows = append(rows, []string{
			c.Label(),
			cli.FormatMoney(amt, currency),
			cli.FormatMoney(amt.Mul(twelve), currency),
			room,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", cli.FormatMoney(res.Total(), currency), cli.FormatMoney(res.Total().Mul(twelve), currency), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Monthly", "Annual", "Room left"},
		Rows:    rows,
	}))

	if len(res.Rationale) > 0 {
		fmt.Println()
		for _, line := range res.Rationale {
			fmt.Printf("  %s %s\n", cli.RenderMuted("·"), line)
		}
	}
	if p.Request.DependentCount > 0 {
		fmt.Println()
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d eligible dependent(s) in %d", p.Request.DependentCount, p.Year)))
	}
	fmt.Println()
}
