// Package report renders a savings plan as Markdown, HTML or styled
// terminal text.
package report

import (
	"bytes"
	"fmt"
	"time"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
)

// Input is everything a plan report shows.
type Input struct {
	UserID     string
	Currency   string
	AsOf       time.Time
	Allocation planner.AllocationPlan
	Holdings   model.HoldingsSummary
	Projection plan.Series
	Assumption planner.ProjectionInput
}

// Markdown builds the plan report.
func Markdown(in Input) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	money := func(d decimal.Decimal) string { return cli.FormatMoney(d, in.Currency) }

	doc.H1(fmt.Sprintf("Savings plan for %s", in.UserID))
	doc.PlainText(fmt.Sprintf("Prepared %s for contribution year %d. Monthly budget %s.",
		in.AsOf.Format("2006-01-02"), in.Allocation.Year, money(in.Allocation.Request.MonthlyBudget)))

	doc.H2("Monthly allocation")
	rows := make([][]string, 0, len(plan.Categories)+1)
	for _, c := range plan.Categories {
		amt := in.Allocation.Result.AllocationByCategory[c]
		rows = append(rows, []string{
			c.Label(),
			money(amt),
			money(amt.Mul(decimal.NewFromInt(plan.MonthsPerYear))),
		})
	}
	total := in.Allocation.Result.Total()
	rows = append(rows, []string{"Total", money(total), money(total.Mul(decimal.NewFromInt(plan.MonthsPerYear)))})
	doc.Table(md.TableSet{
		Header: []string{"Category", "Monthly", "Annualized"},
		Rows:   rows,
	})

	if len(in.Allocation.Result.Rationale) > 0 {
		doc.H2("Why")
		doc.BulletList(in.Allocation.Result.Rationale...)
	}

	doc.H2("Contribution room")
	roomRows := make([][]string, 0, len(plan.RoomLimited))
	for _, c := range plan.RoomLimited {
		room := in.Allocation.Request.RoomByCategory[c]
		planned := in.Allocation.Result.AllocationByCategory[c].Mul(decimal.NewFromInt(plan.MonthsPerYear))
		roomRows = append(roomRows, []string{
			c.Label(),
			money(room),
			money(planned),
			money(decimal.Max(room.Sub(planned), decimal.Zero)),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Category", "Room", "Planned this year", "Left over"},
		Rows:   roomRows,
	})
	doc.PlainText(fmt.Sprintf("%d dependent(s) eligible for matched savings in %d.",
		in.Allocation.Request.DependentCount, in.Allocation.Year))

	if in.Holdings.TotalAccounts > 0 {
		doc.H2("Holdings")
		hRows := make([][]string, 0, len(in.Holdings.ByCategory))
		for _, cs := range in.Holdings.ByCategory {
			hRows = append(hRows, []string{
				cs.Category.Label(),
				fmt.Sprintf("%d", cs.Accounts),
				money(cs.Balance),
				fmt.Sprintf("%.1f%%", cs.SharePercent),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Category", "Accounts", "Balance", "Share"},
			Rows:   hRows,
		})
	}

	if len(in.Projection.Points) > 0 {
		doc.H2("Projection")
		doc.PlainText(fmt.Sprintf("%s/month at %s a year over %s.",
			money(in.Assumption.MonthlyContribution),
			cli.FormatRate(in.Assumption.AnnualGrowthRate),
			cli.FormatMonths(in.Assumption.HorizonMonths)))
		yearly := in.Projection.Yearly()
		pRows := make([][]string, 0, len(yearly))
		for _, p := range yearly {
			pRows = append(pRows, []string{cli.FormatMonths(p.MonthIndex), money(p.Value)})
		}
		doc.Table(md.TableSet{
			Header: []string{"After", "Value"},
			Rows:   pRows,
		})
	}

	return doc.String()
}
