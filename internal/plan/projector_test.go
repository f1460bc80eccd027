package plan

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

var monthlyReference = []string{
	"0", "100.00", "201.00", "303.01", "406.04", "510.10", "615.20",
	"721.35", "828.56", "936.85", "1046.22", "1156.68", "1268.25",
}

func TestProject_MonthlyCompounding(t *testing.T) {
	s, err := Project(ProjectionRequest{
		StartValue:          decimal.Zero,
		MonthlyContribution: d("100"),
		HorizonMonths:       12,
		AnnualGrowthRate:    d("0.12"),
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(s.Points) != len(monthlyReference) {
		t.Fatalf("points = %d, want %d", len(s.Points), len(monthlyReference))
	}
	for i, want := range monthlyReference {
		p := s.Points[i]
		if p.MonthIndex != i {
			t.Errorf("points[%d].MonthIndex = %d", i, p.MonthIndex)
		}
		if !p.Value.Equal(d(want)) {
			t.Errorf("month %d = %s, want %s", i, p.Value, want)
		}
	}
	if got := s.Final().Value.StringFixed(2); got != "1268.25" {
		t.Errorf("Final = %s, want 1268.25", got)
	}
}

func TestProject_FloorAtZero(t *testing.T) {
	s, err := Project(ProjectionRequest{
		StartValue:          d("1000"),
		MonthlyContribution: d("-2000"),
		HorizonMonths:       1,
		AnnualGrowthRate:    decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !s.Points[1].Value.IsZero() {
		t.Errorf("month 1 = %s, want 0", s.Points[1].Value)
	}
}

func TestProject_NegativeGrowthNeverBelowZero(t *testing.T) {
	for _, mode := range []PrecisionMode{RoundPerStep, RoundAtOutput} {
		p, err := NewProjector(mode)
		if err != nil {
			t.Fatalf("NewProjector(%s): %v", mode, err)
		}
		s, err := p.Project(ProjectionRequest{
			StartValue:          d("5000"),
			MonthlyContribution: d("-300"),
			HorizonMonths:       60,
			AnnualGrowthRate:    d("-0.5"),
		})
		if err != nil {
			t.Fatalf("Project: %v", err)
		}
		for _, pt := range s.Points {
			if pt.Value.IsNegative() {
				t.Fatalf("%s month %d = %s, want >= 0", mode, pt.MonthIndex, pt.Value)
			}
		}
		if !s.Final().Value.IsZero() {
			t.Errorf("%s final = %s, want 0 after draining", mode, s.Final().Value)
		}
	}
}

func TestProject_LengthAndStart(t *testing.T) {
	start := d("1234.5678")
	s, err := Project(ProjectionRequest{
		StartValue:          start,
		MonthlyContribution: d("10"),
		HorizonMonths:       37,
		AnnualGrowthRate:    d("0.05"),
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(s.Points) != 38 {
		t.Errorf("len = %d, want 38", len(s.Points))
	}
	if !s.Points[0].Value.Equal(start) {
		t.Errorf("points[0] = %s, want %s", s.Points[0].Value, start)
	}
}

func TestProject_MonotoneWithNonNegativeInputs(t *testing.T) {
	s, err := Project(ProjectionRequest{
		StartValue:          d("250"),
		MonthlyContribution: d("75.5"),
		HorizonMonths:       240,
		AnnualGrowthRate:    d("0.07"),
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Value.LessThan(s.Points[i-1].Value) {
			t.Fatalf("month %d = %s < month %d = %s", i, s.Points[i].Value, i-1, s.Points[i-1].Value)
		}
	}
}

func TestProject_RejectsInvalidInput(t *testing.T) {
	cases := map[string]ProjectionRequest{
		"zero horizon":     {HorizonMonths: 0},
		"negative horizon": {HorizonMonths: -3},
		"negative start":   {StartValue: d("-1"), HorizonMonths: 12},
		"past max horizon": {StartValue: d("1"), HorizonMonths: MaxHorizonMonths + 1},
		"max int horizon":  {StartValue: d("1"), HorizonMonths: math.MaxInt},
	}
	for name, req := range cases {
		if _, err := Project(req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestProject_PrecisionModesDiverge(t *testing.T) {
	req := ProjectionRequest{
		MonthlyContribution: d("100"),
		HorizonMonths:       12,
		AnnualGrowthRate:    d("0.12"),
	}
	perStep, _ := NewProjector(RoundPerStep)
	atOutput, _ := NewProjector(RoundAtOutput)

	a, err := perStep.Project(req)
	if err != nil {
		t.Fatalf("per-step: %v", err)
	}
	b, err := atOutput.Project(req)
	if err != nil {
		t.Fatalf("at-output: %v", err)
	}

	// 828.567056... carried exactly vs 828.5635 from the rounded month 7.
	if got := a.Points[8].Value.StringFixed(2); got != "828.56" {
		t.Errorf("per-step month 8 = %s, want 828.56", got)
	}
	if got := b.Points[8].Value.StringFixed(2); got != "828.57" {
		t.Errorf("at-output month 8 = %s, want 828.57", got)
	}
	if !a.Final().Value.Equal(b.Final().Value) {
		t.Errorf("month 12 per-step %s != at-output %s", a.Final().Value, b.Final().Value)
	}
	for _, p := range b.Points[1:] {
		if !p.Value.Equal(RoundCurrency(p.Value)) {
			t.Errorf("at-output month %d = %s, not rounded to cents", p.MonthIndex, p.Value)
		}
	}
}

func TestParsePrecisionMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PrecisionMode
		wantErr bool
	}{
		{"", RoundPerStep, false},
		{"round-per-step", RoundPerStep, false},
		{"round-at-output", RoundAtOutput, false},
		{"banker", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePrecisionMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePrecisionMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrecisionMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeries_Yearly(t *testing.T) {
	s, err := Project(ProjectionRequest{
		MonthlyContribution: d("1"),
		HorizonMonths:       30,
		AnnualGrowthRate:    decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	yearly := s.Yearly()
	want := []int{0, 12, 24, 30}
	if len(yearly) != len(want) {
		t.Fatalf("Yearly len = %d, want %d", len(yearly), len(want))
	}
	for i, m := range want {
		if yearly[i].MonthIndex != m {
			t.Errorf("Yearly[%d].MonthIndex = %d, want %d", i, yearly[i].MonthIndex, m)
		}
	}
	if got := Floats(yearly); got[3] != 30 {
		t.Errorf("Floats last = %v, want 30", got[3])
	}
}

func TestProject_MaxHorizonAccepted(t *testing.T) {
	s, err := Project(ProjectionRequest{StartValue: d("1"), HorizonMonths: MaxHorizonMonths})
	if err != nil {
		t.Fatalf("Project at MaxHorizonMonths: %v", err)
	}
	if got := s.Final().MonthIndex; got != MaxHorizonMonths {
		t.Errorf("final month = %d, want %d", got, MaxHorizonMonths)
	}
}
