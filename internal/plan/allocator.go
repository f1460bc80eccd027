package plan

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllocationRequest is the input to Allocate.
type AllocationRequest struct {
	MonthlyBudget  decimal.Decimal              `json:"monthly_budget"`
	DependentCount int                          `json:"dependent_count"`
	RoomByCategory map[Category]decimal.Decimal `json:"room_by_category"`
}

// AllocationResult splits the budget across every category.
type AllocationResult struct {
	AllocationByCategory map[Category]decimal.Decimal `json:"allocation_by_category"`
	Rationale            []string                     `json:"rationale"`
}

// Total sums every category's allocation.
func (r AllocationResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range r.AllocationByCategory {
		total = total.Add(amt)
	}
	return total
}

// Allocator applies a fixed-priority greedy split under a Policy.
type Allocator struct {
	policy Policy
}

// NewAllocator validates p and returns an Allocator using it.
func NewAllocator(p Policy) (*Allocator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	order := make([]Category, len(p.RoomOrder))
	copy(order, p.RoomOrder)
	p.RoomOrder = order
	return &Allocator{policy: p}, nil
}

// Policy returns a copy of the allocator's policy.
func (a *Allocator) Policy() Policy {
	p := a.policy
	p.RoomOrder = append([]Category(nil), a.policy.RoomOrder...)
	return p
}

// Allocate splits req.MonthlyBudget under DefaultPolicy.
func Allocate(req AllocationRequest) (AllocationResult, error) {
	a := &Allocator{policy: DefaultPolicy()}
	return a.Allocate(req)
}

// step is one greedy decision, kept unrounded until the output boundary.
type step struct {
	category Category
	amount   decimal.Decimal
	reason   func(amount decimal.Decimal) string
}

// Allocate fills the matched-savings category first, then each room-limited
// category in policy order, and sends the remainder to Taxable.
func (a *Allocator) Allocate(req AllocationRequest) (AllocationResult, error) {
	if err := validateAllocation(req); err != nil {
		return AllocationResult{}, err
	}

	remaining := req.MonthlyBudget
	steps := make([]step, 0, len(Categories))

	matched := decimal.Zero
	if req.DependentCount > 0 && remaining.IsPositive() {
		perDependent := a.policy.MatchedMonthlyCeiling()
		target := perDependent.Mul(decimal.NewFromInt(int64(req.DependentCount)))
		matched = decimal.Min(remaining, target)
		remaining = remaining.Sub(matched)
	}
	deps := req.DependentCount
	steps = append(steps, step{
		category: RESP,
		amount:   matched,
		reason: func(amt decimal.Decimal) string {
			return fmt.Sprintf("%s: %s/month across %d dependent(s) toward the %s/year matching ceiling each",
				RESP.Label(), amt.StringFixed(CurrencyPlaces), deps,
				a.policy.MatchedAnnualCeiling.StringFixed(CurrencyPlaces))
		},
	})

	for _, c := range a.policy.RoomOrder {
		room := req.RoomByCategory[c]
		amt := decimal.Zero
		monthlyRoom := MonthlyFromAnnual(room)
		if remaining.IsPositive() && room.IsPositive() {
			amt = decimal.Min(remaining, monthlyRoom)
			remaining = remaining.Sub(amt)
		}
		steps = append(steps, step{
			category: c,
			amount:   amt,
			reason: func(amt decimal.Decimal) string {
				return fmt.Sprintf("%s: %s/month of %s/month available (%s annual room)",
					c.Label(), amt.StringFixed(CurrencyPlaces),
					RoundCurrency(monthlyRoom).StringFixed(CurrencyPlaces),
					room.StringFixed(CurrencyPlaces))
			},
		})
	}

	steps = append(steps, step{
		category: Taxable,
		amount:   remaining,
		reason: func(amt decimal.Decimal) string {
			return fmt.Sprintf("%s: %s/month remains after sheltered room is used",
				Taxable.Label(), amt.StringFixed(CurrencyPlaces))
		},
	})

	return roundSteps(req.MonthlyBudget, steps), nil
}

// roundSteps rounds cumulative sums to cents so the amounts stay
// non-negative and add up to budget exactly. The last step takes the
// unrounded remainder. A rounded amount can exceed its step's unrounded
// ceiling by less than one cent, e.g. 0.06 of annual room (0.005/month)
// receives 0.01.
func roundSteps(budget decimal.Decimal, steps []step) AllocationResult {
	result := AllocationResult{
		AllocationByCategory: make(map[Category]decimal.Decimal, len(Categories)),
		Rationale:            []string{},
	}
	for _, c := range Categories {
		result.AllocationByCategory[c] = decimal.Zero
	}

	cum := decimal.Zero
	prev := decimal.Zero
	for i, s := range steps {
		cum = cum.Add(s.amount)
		var edge decimal.Decimal
		if i == len(steps)-1 {
			edge = budget
		} else {
			edge = decimal.Min(RoundCurrency(cum), budget)
		}
		amt := edge.Sub(prev)
		prev = edge

		result.AllocationByCategory[s.category] = amt
		if amt.IsPositive() {
			result.Rationale = append(result.Rationale, s.reason(amt))
		}
	}
	return result
}

func validateAllocation(req AllocationRequest) error {
	if err := requireNonNegative("monthly budget", req.MonthlyBudget); err != nil {
		return err
	}
	if req.DependentCount < 0 {
		return invalid("dependent count", "must not be negative, got %d", req.DependentCount)
	}
	for c, room := range req.RoomByCategory {
		if !c.Valid() {
			return invalid("room category", "%q is unknown", c)
		}
		if err := requireNonNegative(fmt.Sprintf("%s room", c), room); err != nil {
			return err
		}
	}
	return nil
}
