package plan

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MonthsPerYear converts annual room and rates to monthly equivalents.
	MonthsPerYear = 12

	// CurrencyPlaces is the number of fractional digits on output amounts.
	CurrencyPlaces = 2

	// workingPlaces bounds intermediate precision in round-at-output mode.
	workingPlaces = 16

	// MaxHorizonMonths is the longest projection accepted: 100 years.
	MaxHorizonMonths = 100 * MonthsPerYear
)

var monthsPerYear = decimal.NewFromInt(MonthsPerYear)

// MonthlyFromAnnual paces an annual amount evenly across the year.
// The result is not rounded.
func MonthlyFromAnnual(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(monthsPerYear)
}

// RoundCurrency rounds half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// YearsToMonths converts a horizon expressed in years. Results that would
// overflow saturate at the int bounds, which Project then rejects.
func YearsToMonths(years int) int {
	switch {
	case years > math.MaxInt/MonthsPerYear:
		return math.MaxInt
	case years < math.MinInt/MonthsPerYear:
		return math.MinInt
	}
	return years * MonthsPerYear
}

// FromFloat converts a float coming from flags, config or JSON numbers into
// a decimal, rejecting NaN and infinities.
func FromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid(field, "must be finite, got %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

func requireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(field, "must not be negative, got %s", d)
	}
	return nil
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
