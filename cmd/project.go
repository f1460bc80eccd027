package cmd

import (
	"fmt"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/plan"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagProjStart        string
	flagProjContribution string
	flagProjYears        int
	flagProjMonths       int
	flagProjRate         string
	flagProjPrecision    string
	flagProjJSON         bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project portfolio value under monthly compounding",
	Long: "Project portfolio value month by month. The start value defaults to the\n" +
		"current total of all recorded account balances.",
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVar(&flagProjStart, "start", "", "Start value (default stored total balance)")
	projectCmd.Flags().StringVarP(&flagProjContribution, "contribution", "c", "", "Monthly contribution (default from config)")
	projectCmd.Flags().IntVarP(&flagProjYears, "years", "y", 0, "Horizon in years")
	projectCmd.Flags().IntVarP(&flagProjMonths, "months", "m", 0, "Horizon in months")
	projectCmd.Flags().StringVarP(&flagProjRate, "rate", "r", "", "Annual growth rate as a fraction, e.g. 0.05")
	projectCmd.Flags().StringVar(&flagProjPrecision, "precision", "", "round-per-step or round-at-output (default from config)")
	projectCmd.Flags().BoolVar(&flagProjJSON, "json", false, "Print JSON")
	projectCmd.MarkFlagsMutuallyExclusive("years", "months")
	rootCmd.AddCommand(projectCmd)
}

type projectionOutput struct {
	Precision plan.PrecisionMode     `json:"precision"`
	Request   plan.ProjectionRequest `json:"request"`
	plan.Series
}

func runProject(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := cfg.ProjectionInput()
	if err != nil {
		return err
	}
	req := plan.ProjectionRequest{
		MonthlyContribution: in.MonthlyContribution,
		HorizonMonths:       in.HorizonMonths,
		AnnualGrowthRate:    in.AnnualGrowthRate,
	}

	if cmd.Flags().Changed("contribution") {
		if req.MonthlyContribution, err = parseAmount("contribution", flagProjContribution); err != nil {
			return err
		}
	}
	switch {
	case cmd.Flags().Changed("months"):
		req.HorizonMonths = flagProjMonths
	case cmd.Flags().Changed("years"):
		req.HorizonMonths = plan.YearsToMonths(flagProjYears)
	}
	if cmd.Flags().Changed("rate") {
		if req.AnnualGrowthRate, err = decimal.NewFromString(flagProjRate); err != nil {
			return fmt.Errorf("--rate: %q is not a number", flagProjRate)
		}
	}

	mode, err := cfg.Precision()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("precision") {
		if mode, err = plan.ParsePrecisionMode(flagProjPrecision); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("start") {
		if req.StartValue, err = parseAmount("start", flagProjStart); err != nil {
			return err
		}
	} else {
		e, err := openEnv()
		if err != nil {
			return err
		}
		total, err := e.store.TotalBalance(ctxOf(cmd), e.user)
		e.Close()
		if err != nil {
			return err
		}
		req.StartValue = total
	}

	proj, err := plan.NewProjector(mode)
	if err != nil {
		return err
	}
	series, err := proj.Project(req)
	if err != nil {
		return err
	}
	logger.Debug().Stringer("request", req).Str("precision", string(mode)).Msg("projected")

	if flagProjJSON {
		return printJSON(projectionOutput{Precision: mode, Request: req, Series: series})
	}
	printProjection(req, series, cfg.General.Currency)
	return nil
}

func printProjection(req plan.ProjectionRequest, s plan.Series, currency string) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTION  %s over %s",
		cli.FormatMoney(req.StartValue, currency), cli.FormatMonths(req.HorizonMonths))))
	fmt.Println()
	fmt.Printf("  Contribution  %s/mo\n", cli.FormatMoney(req.MonthlyContribution, currency))
	fmt.Printf("  Growth        %s/yr\n", cli.FormatRate(req.AnnualGrowthRate))
	fmt.Println()

	yearly := s.Yearly()
	contributed := req.StartValue
	rows := make([][]string, 0, len(yearly))
	prev := req.StartValue
	for _, p := range yearly {
		contributed = req.StartValue.Add(req.MonthlyContribution.Mul(decimal.NewFromInt(int64(p.MonthIndex))))
		rows = append(rows, []string{
			cli.FormatMonths(p.MonthIndex),
			cli.FormatMoney(p.Value, currency),
			cli.FormatMoney(contributed, currency),
			cli.FormatDelta(p.Value, prev, currency),
		})
		prev = p.Value
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"After", "Value", "Paid in", "Change"},
		Rows:    rows,
	}))

	final := s.Final()
	fmt.Println()
	fmt.Printf("  %s  %s\n", cli.RenderSparkline(plan.Floats(yearly)), cli.FormatMoney(final.Value, currency))
	if growth := final.Value.Sub(contributed); growth.IsPositive() {
		fmt.Printf("  %s\n", cli.RenderPositive("growth "+cli.FormatMoney(growth, currency)))
	}
	fmt.Println()
}
