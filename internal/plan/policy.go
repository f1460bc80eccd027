package plan

import "github.com/shopspring/decimal"

// DefaultMatchedAnnualCeiling is the yearly contribution per dependent that
// captures the full matching grant.
var DefaultMatchedAnnualCeiling = decimal.NewFromInt(2500)

// Policy holds the allocation constants that are fixed per deployment but
// overridable for testing and configuration.
type Policy struct {
	// MatchedAnnualCeiling is the yearly matched-savings target per dependent.
	MatchedAnnualCeiling decimal.Decimal
	// RoomOrder is the order in which room-limited categories are filled.
	RoomOrder []Category
}

// DefaultPolicy fills TFSA before RRSP and targets 2500/year per dependent.
func DefaultPolicy() Policy {
	return Policy{
		MatchedAnnualCeiling: DefaultMatchedAnnualCeiling,
		RoomOrder:            []Category{TFSA, RRSP},
	}
}

// MatchedMonthlyCeiling is the per-dependent monthly target, unrounded.
func (p Policy) MatchedMonthlyCeiling() decimal.Decimal {
	return MonthlyFromAnnual(p.MatchedAnnualCeiling)
}

// Validate checks the ceiling and that RoomOrder is a permutation of RoomLimited.
func (p Policy) Validate() error {
	if err := requireNonNegative("matched annual ceiling", p.MatchedAnnualCeiling); err != nil {
		return err
	}
	if len(p.RoomOrder) != len(RoomLimited) {
		return invalid("room order", "must list each of %v exactly once, got %v", RoomLimited, p.RoomOrder)
	}
	seen := make(map[Category]bool, len(p.RoomOrder))
	for _, c := range p.RoomOrder {
		if !c.IsRoomLimited() {
			return invalid("room order", "%q is not a room-limited category", c)
		}
		if seen[c] {
			return invalid("room order", "%q listed twice", c)
		}
		seen[c] = true
	}
	return nil
}
