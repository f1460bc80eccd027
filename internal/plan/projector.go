package plan

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PrecisionMode selects when projection values are rounded to cents.
type PrecisionMode string

const (
	// RoundPerStep rounds every month before it feeds the next one. This
	// accumulates rounding error over long horizons.
	RoundPerStep PrecisionMode = "round-per-step"
	// RoundAtOutput carries working precision through the recurrence and
	// rounds only the emitted points.
	RoundAtOutput PrecisionMode = "round-at-output"
)

// ParsePrecisionMode accepts the two mode names; empty means RoundPerStep.
func ParsePrecisionMode(s string) (PrecisionMode, error) {
	switch PrecisionMode(s) {
	case "", RoundPerStep:
		return RoundPerStep, nil
	case RoundAtOutput:
		return RoundAtOutput, nil
	}
	return "", invalid("precision", "%q is not %s or %s", s, RoundPerStep, RoundAtOutput)
}

// ProjectionRequest is the input to Project.
type ProjectionRequest struct {
	StartValue          decimal.Decimal `json:"start_value"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	HorizonMonths       int             `json:"horizon_months"`
	AnnualGrowthRate    decimal.Decimal `json:"annual_growth_rate"`
}

// Point is the portfolio value at the end of a month.
type Point struct {
	MonthIndex int             `json:"month_index"`
	Value      decimal.Decimal `json:"value"`
}

// Series is a projection from month 0 through the horizon.
type Series struct {
	Points []Point `json:"points"`
}

// Final returns the last point, or the zero Point for an empty series.
func (s Series) Final() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)-1]
}

// Yearly returns month 0, every twelfth month, and the final month.
func (s Series) Yearly() []Point {
	var out []Point
	for _, p := range s.Points {
		if p.MonthIndex%MonthsPerYear == 0 {
			out = append(out, p)
		}
	}
	if last := s.Final(); len(s.Points) > 0 && last.MonthIndex%MonthsPerYear != 0 {
		out = append(out, last)
	}
	return out
}

// Floats returns point values for charting.
func Floats(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value.InexactFloat64()
	}
	return out
}

// Projector runs the monthly compounding recurrence.
type Projector struct {
	mode PrecisionMode
}

// NewProjector returns a Projector for mode.
func NewProjector(mode PrecisionMode) (*Projector, error) {
	m, err := ParsePrecisionMode(string(mode))
	if err != nil {
		return nil, err
	}
	return &Projector{mode: m}, nil
}

// Mode reports the projector's precision mode.
func (p *Projector) Mode() PrecisionMode { return p.mode }

// Project runs req with RoundPerStep.
func Project(req ProjectionRequest) (Series, error) {
	p := &Projector{mode: RoundPerStep}
	return p.Project(req)
}

// Project computes value[m] = max(0, value[m-1]*(1+rate/12) + contribution)
// for m in 1..HorizonMonths. Month 0 is the start value unchanged.
// HorizonMonths must be in 1..MaxHorizonMonths.
func (p *Projector) Project(req ProjectionRequest) (Series, error) {
	if req.HorizonMonths <= 0 {
		return Series{}, invalid("horizon", "must be positive, got %d months", req.HorizonMonths)
	}
	if req.HorizonMonths > MaxHorizonMonths {
		return Series{}, invalid("horizon", "must be at most %d months, got %d", MaxHorizonMonths, req.HorizonMonths)
	}
	if err := requireNonNegative("start value", req.StartValue); err != nil {
		return Series{}, err
	}

	growth := decimal.NewFromInt(1).Add(MonthlyFromAnnual(req.AnnualGrowthRate))

	points := make([]Point, 0, req.HorizonMonths+1)
	points = append(points, Point{MonthIndex: 0, Value: req.StartValue})

	value := req.StartValue
	for m := 1; m <= req.HorizonMonths; m++ {
		value = maxZero(value.Mul(growth).Add(req.MonthlyContribution))
		switch p.mode {
		case RoundAtOutput:
			value = value.Round(workingPlaces)
		default:
			value = RoundCurrency(value)
		}
		points = append(points, Point{MonthIndex: m, Value: RoundCurrency(value)})
	}
	return Series{Points: points}, nil
}

// String renders a short description, used in logs.
func (r ProjectionRequest) String() string {
	return fmt.Sprintf("start=%s contribution=%s months=%d rate=%s",
		r.StartValue, r.MonthlyContribution, r.HorizonMonths, r.AnnualGrowthRate)
}
