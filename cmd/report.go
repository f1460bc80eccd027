package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/report"

	"github.com/spf13/cobra"
	"github.com/charmbracelet/x/term"
)

var (
	flagReportBudget string
	flagReportYear   int
	flagReportHTML   bool
	flagReportRaw    bool
	flagReportWidth  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a plan report: allocation, room, holdings and projection",
	Long: "Write the plan report. By default it is rendered for the terminal;\n" +
		"--raw prints the Markdown source and --html a standalone HTML page.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportBudget, "budget", "b", "", "Monthly budget (default from config)")
	reportCmd.Flags().IntVar(&flagReportYear, "year", 0, "Contribution year (default current year)")
	reportCmd.Flags().BoolVar(&flagReportHTML, "html", false, "Print an HTML page")
	reportCmd.Flags().BoolVar(&flagReportRaw, "raw", false, "Print Markdown")
	reportCmd.Flags().IntVar(&flagReportWidth, "width", 0, "Wrap width for terminal output (default terminal width)")
	reportCmd.MarkFlagsMutuallyExclusive("html", "raw")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	budget, err := budgetFlag(cmd, flagReportBudget, e.cfg)
	if err != nil {
		return err
	}
	year := flagReportYear
	if year == 0 {
		year = currentYear()
	}
	alloc, err := e.planner.Allocation(ctx, e.user, year, budget)
	if err != nil {
		return err
	}
	in, err := e.cfg.ProjectionInput()
	if err != nil {
		return err
	}
	series, _, err := e.planner.Projection(ctx, e.user, in)
	if err != nil {
		return err
	}
	accounts, err := e.store.ListAccounts(ctx, e.user)
	if err != nil {
		return err
	}

	doc := report.Markdown(report.Input{
		UserID:     e.user,
		Currency:   e.currency(),
		AsOf:       time.Now(),
		Allocation: alloc,
		Holdings:   model.Summarize(accounts),
		Projection: series,
		Assumption: in,
	})

	switch {
	case flagReportRaw:
		fmt.Print(doc)
	case flagReportHTML:
		page, err := report.HTMLPage(fmt.Sprintf("Savings plan for %s", e.user), doc)
		if err != nil {
			return err
		}
		fmt.Print(page)
	default:
		out, err := report.Terminal(doc, reportWidth())
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

func reportWidth() int {
	if flagReportWidth > 0 {
		return flagReportWidth
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return min(w, 100)
	}
	return 80
}
