package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
)

func sampleInput(t *testing.T) Input {
	t.Helper()
	req := plan.AllocationRequest{
		MonthlyBudget:  decimal.NewFromInt(1000),
		DependentCount: 1,
		RoomByCategory: map[plan.Category]decimal.Decimal{
			plan.TFSA: decimal.NewFromInt(6000),
			plan.RRSP: decimal.NewFromInt(18000),
		},
	}
	res, err := plan.Allocate(req)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	series, err := plan.Project(plan.ProjectionRequest{
		StartValue:          decimal.NewFromInt(5000),
		MonthlyContribution: decimal.NewFromInt(1000),
		HorizonMonths:       24,
		AnnualGrowthRate:    decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return Input{
		UserID:     "alice",
		Currency:   "CAD",
		AsOf:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Allocation: planner.AllocationPlan{UserID: "alice", Year: 2026, Request: req, Result: res},
		Holdings: model.Summarize([]model.Account{
			{Category: plan.TFSA, Balance: decimal.NewFromInt(5000)},
		}),
		Projection: series,
		Assumption: planner.ProjectionInput{
			MonthlyContribution: decimal.NewFromInt(1000),
			HorizonMonths:       24,
			AnnualGrowthRate:    decimal.RequireFromString("0.05"),
		},
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleInput(t))
	for _, want := range []string{
		"# Savings plan for alice",
		"## Monthly allocation",
		"$208.33",
		"$291.67",
		"Non-registered",
		"## Why",
		"## Contribution room",
		"1 dependent(s) eligible",
		"## Holdings",
		"## Projection",
		"2y",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdown_NoHoldingsNoProjection(t *testing.T) {
	in := sampleInput(t)
	in.Holdings = model.HoldingsSummary{}
	in.Projection = plan.Series{}
	out := Markdown(in)
	if strings.Contains(out, "## Holdings") || strings.Contains(out, "## Projection") {
		t.Errorf("empty sections rendered:\n%s", out)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(Markdown(sampleInput(t)))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{"<h1>", "<table>", "<li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}

	page, err := HTMLPage("plan <alice>", "# hi")
	if err != nil {
		t.Fatalf("HTMLPage: %v", err)
	}
	if !strings.Contains(page, "plan &lt;alice&gt;") {
		t.Errorf("title not escaped: %s", page)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Plan\n\nSome text.", 60)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(out, "Some text.") {
		t.Errorf("terminal output missing body: %q", out)
	}
}
