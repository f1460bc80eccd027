package cmd

import (
	"fmt"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagRoomYear  int
	flagRoomLimit bool
	flagRoomJSON  bool
)

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Show or record remaining contribution room",
	Long: "Room is the remaining annual amount a room-limited category (tfsa, rrsp)\n" +
		"can still accept in a year. The allocator spreads it evenly over 12 months.",
	RunE: runRoomShow,
}

var roomShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show room for a year",
	RunE:  runRoomShow,
}

var roomSetCmd = &cobra.Command{
	Use:   "set <category> [amount]",
	Short: "Record remaining room for a category",
	Example: `  roomwise room set tfsa 7000
  roomwise room set rrsp --limit --year 2025`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRoomSet,
}

var roomClearCmd = &cobra.Command{
	Use:   "clear <category>",
	Short: "Forget the recorded room for a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomClear,
}

func init() {
	roomCmd.PersistentFlags().IntVar(&flagRoomYear, "year", 0, "Contribution year (default current year)")
	roomCmd.Flags().BoolVar(&flagRoomJSON, "json", false, "Print JSON")
	roomShowCmd.Flags().BoolVar(&flagRoomJSON, "json", false, "Print JSON")
	roomSetCmd.Flags().BoolVar(&flagRoomLimit, "limit", false, "Use the published annual limit for the year")
	roomCmd.AddCommand(roomShowCmd, roomSetCmd, roomClearCmd)
	rootCmd.AddCommand(roomCmd)
}

func roomYear() int {
	if flagRoomYear != 0 {
		return flagRoomYear
	}
	return currentYear()
}

func runRoomShow(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	year := roomYear()
	room, err := e.store.RoomForYear(ctxOf(cmd), e.user, year)
	if err != nil {
		return err
	}
	if flagRoomJSON {
		return printJSON(struct {
			Year int                              `json:"year"`
			Room map[plan.Category]decimal.Decimal `json:"room"`
		}{year, room})
	}

	cur := e.currency()
	rows := make([][]string, 0, len(plan.RoomLimited))
	for _, c := range plan.RoomLimited {
		recorded := cli.RenderMuted("not set")
		monthly := "-"
		if amt, ok := room[c]; ok {
			recorded = cli.FormatMoney(amt, cur)
			monthly = cli.FormatMoney(plan.RoundCurrency(plan.MonthlyFromAnnual(amt)), cur)
		}
		limit := "-"
		if l, ok := config.LookupAnnualLimit(c, year); ok {
			limit = cli.FormatMoney(l, cur)
		}
		rows = append(rows, []string{c.Label(), recorded, monthly, limit})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Contribution room %d", year),
		Headers: []string{"Category", "Remaining", "Per month", "Annual limit"},
		Rows:    rows,
	}))
	fmt.Println()
	for _, line := range roomLimitLines(room, year, cur) {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println()
	return nil
}

// roomLimitLines draws recorded room against the published annual limit,
// one line per category that has both.
func roomLimitLines(room map[plan.Category]decimal.Decimal, year int, currency string) []string {
	var out []string
	for _, c := range plan.RoomLimited {
		amt, ok := room[c]
		if !ok {
			continue
		}
		limit, ok := config.LookupAnnualLimit(c, year)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%-6s %s", c.Label(), cli.RenderProgressBar(amt, limit, 20, currency)))
		if amt.GreaterThan(limit) {
			out = append(out, cli.RenderWarning(fmt.Sprintf("%-6s above the %d limit, includes carried-forward room", "", year)))
		}
	}
	return out
}

func runRoomSet(cmd *cobra.Command, args []string) error {
	c, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	year := roomYear()

	var amount decimal.Decimal
	switch {
	case len(args) == 2:
		if amount, err = parseAmount("amount", args[1]); err != nil {
			return err
		}
	case flagRoomLimit:
		l, ok := config.LookupAnnualLimit(c, year)
		if !ok {
			return fmt.Errorf("no published %s limit for %d", c.Label(), year)
		}
		amount = l
	default:
		return fmt.Errorf("give an amount or --limit")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	rec := model.RoomRecord{UserID: e.user, Year: year, Category: c, Amount: amount}
	if err := e.store.SetRoom(ctxOf(cmd), rec); err != nil {
		return err
	}
	fmt.Printf("  %s room for %d set to %s\n", c.Label(), year, cli.FormatMoney(amount, e.currency()))
	return nil
}

func runRoomClear(cmd *cobra.Command, args []string) error {
	c, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	year := roomYear()
	if err := e.store.ClearRoom(ctxOf(cmd), e.user, year, c); err != nil {
		return err
	}
	fmt.Printf("  %s room for %d cleared\n", c.Label(), year)
	return nil
}
