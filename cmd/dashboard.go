package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"

	"github.com/spf13/cobra"
)

var flagDashJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Recorded balances against the forward projection",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&flagDashJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	in, err := e.cfg.ProjectionInput()
	if err != nil {
		return err
	}
	dash, err := e.planner.Dashboard(ctxOf(cmd), e.user, time.Now(), in, e.cfg.Lookback())
	if err != nil {
		return err
	}
	if flagDashJSON {
		return printJSON(dash)
	}
	printDashboard(dash, in, e.currency())
	return nil
}

func printDashboard(d planner.Dashboard, in planner.ProjectionInput, currency string) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DASHBOARD  %s  %s", d.UserID, d.AsOf.Format("2006-01-02"))))
	fmt.Println()

	fmt.Printf("  Balance      %s across %d account(s)\n",
		cli.FormatMoney(d.Holdings.TotalBalance, currency), d.Holdings.TotalAccounts)
	for _, cs := range d.Holdings.ByCategory {
		fmt.Printf("  %s  %s\n",
			cli.RenderHorizontalBar(fmt.Sprintf("%-10s", cs.Category.Label()), cs.SharePercent, 100, 24),
			cli.FormatMoney(cs.Balance, currency))
	}
	fmt.Println()

	if len(d.Actual) > 1 {
		values := make([]float64, len(d.Actual))
		for i, s := range d.Actual {
			values[i] = s.Total.InexactFloat64()
		}
		first, last := d.Actual[0], d.Actual[len(d.Actual)-1]
		fmt.Printf("  Recorded     %s  %s (%d snapshots since %s)\n",
			cli.RenderSparkline(values),
			cli.FormatDelta(last.Total, first.Total, currency),
			len(d.Actual), first.TakenAt.Format("Jan 2"))
	} else {
		fmt.Printf("  Recorded     %s\n", cli.RenderMuted("not enough snapshots yet, run `roomwise snapshot record`"))
	}

	yearly := d.Projected.Yearly()
	final := d.Projected.Final()
	fmt.Printf("  Projected    %s  %s in %s\n",
		cli.RenderSparkline(plan.Floats(yearly)),
		cli.FormatMoney(final.Value, currency),
		cli.FormatMonths(final.MonthIndex))
	fmt.Printf("  %s\n", cli.RenderMuted(fmt.Sprintf("%s/mo at %s/yr",
		cli.FormatMoney(in.MonthlyContribution, currency), cli.FormatRate(in.AnnualGrowthRate))))
	fmt.Println()
}
