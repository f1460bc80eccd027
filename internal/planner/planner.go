// Package planner resolves a user's stored state into core planning inputs.
// It is the only caller of the allocator and projector outside the core.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
)

// Reader is the read side of the persistence collaborator.
type Reader interface {
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	RoomForYear(ctx context.Context, userID string, year int) (map[plan.Category]decimal.Decimal, error)
	ListDependents(ctx context.Context, userID string) ([]model.Dependent, error)
	ListSnapshots(ctx context.Context, userID string, since time.Time) ([]model.Snapshot, error)
}

// Planner combines stored state with the allocator and projector.
type Planner struct {
	src             Reader
	alloc           *plan.Allocator
	proj            *plan.Projector
	maxDependentAge int
}

// Options configure a Planner. Zero values select the defaults.
type Options struct {
	Policy          *plan.Policy
	Precision       plan.PrecisionMode
	MaxDependentAge int
}

// New builds a Planner reading from src.
func New(src Reader, opts Options) (*Planner, error) {
	policy := plan.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	alloc, err := plan.NewAllocator(policy)
	if err != nil {
		return nil, fmt.Errorf("allocation policy: %w", err)
	}
	proj, err := plan.NewProjector(opts.Precision)
	if err != nil {
		return nil, fmt.Errorf("projection precision: %w", err)
	}
	maxAge := opts.MaxDependentAge
	if maxAge <= 0 {
		maxAge = model.DefaultMaxDependentAge
	}
	return &Planner{src: src, alloc: alloc, proj: proj, maxDependentAge: maxAge}, nil
}

// Allocator exposes the configured allocator for raw requests.
func (p *Planner) Allocator() *plan.Allocator { return p.alloc }

// Projector exposes the configured projector for raw requests.
func (p *Planner) Projector() *plan.Projector { return p.proj }

// AllocationPlan is an allocation together with the inputs it was built from.
type AllocationPlan struct {
	UserID  string                 `json:"user_id"`
	Year    int                    `json:"year"`
	Request plan.AllocationRequest `json:"request"`
	Result  plan.AllocationResult  `json:"result"`
}

// Allocation splits budget using the user's room for year and the
// dependents eligible in that year.
func (p *Planner) Allocation(ctx context.Context, userID string, year int, budget decimal.Decimal) (AllocationPlan, error) {
	req, err := p.AllocationRequest(ctx, userID, year, budget)
	if err != nil {
		return AllocationPlan{}, err
	}
	res, err := p.alloc.Allocate(req)
	if err != nil {
		return AllocationPlan{}, err
	}
	return AllocationPlan{UserID: userID, Year: year, Request: req, Result: res}, nil
}

// AllocationRequest resolves the core request without running it.
func (p *Planner) AllocationRequest(ctx context.Context, userID string, year int, budget decimal.Decimal) (plan.AllocationRequest, error) {
	room, err := p.src.RoomForYear(ctx, userID, year)
	if err != nil {
		return plan.AllocationRequest{}, fmt.Errorf("loading room: %w", err)
	}
	deps, err := p.src.ListDependents(ctx, userID)
	if err != nil {
		return plan.AllocationRequest{}, fmt.Errorf("loading dependents: %w", err)
	}

	limited := make(map[plan.Category]decimal.Decimal, len(plan.RoomLimited))
	for _, c := range plan.RoomLimited {
		limited[c] = decimal.Zero
		if amt, ok := room[c]; ok {
			limited[c] = amt
		}
	}
	return plan.AllocationRequest{
		MonthlyBudget:  budget,
		DependentCount: model.EligibleCount(deps, year, p.maxDependentAge),
		RoomByCategory: limited,
	}, nil
}

// ProjectionInput is everything a projection needs besides the start value.
type ProjectionInput struct {
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	HorizonMonths       int             `json:"horizon_months"`
	AnnualGrowthRate    decimal.Decimal `json:"annual_growth_rate"`
}

// Projection projects forward from the user's current total balance.
func (p *Planner) Projection(ctx context.Context, userID string, in ProjectionInput) (plan.Series, decimal.Decimal, error) {
	start, err := p.currentBalance(ctx, userID)
	if err != nil {
		return plan.Series{}, decimal.Zero, err
	}
	s, err := p.proj.Project(plan.ProjectionRequest{
		StartValue:          start,
		MonthlyContribution: in.MonthlyContribution,
		HorizonMonths:       in.HorizonMonths,
		AnnualGrowthRate:    in.AnnualGrowthRate,
	})
	if err != nil {
		return plan.Series{}, decimal.Zero, err
	}
	return s, start, nil
}

func (p *Planner) currentBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	accounts, err := p.src.ListAccounts(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading accounts: %w", err)
	}
	return model.Summarize(accounts).TotalBalance, nil
}

// Dashboard is actual history and projected future around asOf.
type Dashboard struct {
	UserID    string                `json:"user_id"`
	AsOf      time.Time             `json:"as_of"`
	Holdings  model.HoldingsSummary `json:"holdings"`
	Actual    []model.Snapshot      `json:"actual"`
	Projected plan.Series           `json:"projected"`
}

// Dashboard loads snapshots taken within lookback of asOf and projects
// forward from the current balance.
func (p *Planner) Dashboard(ctx context.Context, userID string, asOf time.Time, in ProjectionInput, lookback time.Duration) (Dashboard, error) {
	accounts, err := p.src.ListAccounts(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("loading accounts: %w", err)
	}
	holdings := model.Summarize(accounts)

	snaps, err := p.src.ListSnapshots(ctx, userID, asOf.Add(-lookback))
	if err != nil {
		return Dashboard{}, fmt.Errorf("loading snapshots: %w", err)
	}
	actual := make([]model.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if !s.TakenAt.After(asOf) {
			actual = append(actual, s)
		}
	}

	series, err := p.proj.Project(plan.ProjectionRequest{
		StartValue:          holdings.TotalBalance,
		MonthlyContribution: in.MonthlyContribution,
		HorizonMonths:       in.HorizonMonths,
		AnnualGrowthRate:    in.AnnualGrowthRate,
	})
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		UserID:    userID,
		AsOf:      asOf,
		Holdings:  holdings,
		Actual:    actual,
		Projected: series,
	}, nil
}
