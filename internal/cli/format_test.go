package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "CAD", "$1,234.50"},
		{"0", "cad", "$0.00"},
		{"208.333", "USD", "$208.33"},
		{"-42.1", "CAD", "-$42.10"},
		{"12.5", "XXZ", "12.50 XXZ"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatMoneyCompact(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"950", "$950.00"},
		{"1234", "$1.2K"},
		{"45600", "$46K"},
		{"2500000", "$2.5M"},
	}
	for _, tt := range tests {
		if got := FormatMoneyCompact(decimal.RequireFromString(tt.amount), "CAD"); got != tt.want {
			t.Errorf("FormatMoneyCompact(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := map[int]string{0: "0m", 5: "5m", 12: "1y", 30: "2y 6m", 480: "40y"}
	for in, want := range tests {
		if got := FormatMonths(in); got != want {
			t.Errorf("FormatMonths(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRateAndDelta(t *testing.T) {
	if got := FormatRate(decimal.RequireFromString("0.05")); got != "5.00%" {
		t.Errorf("FormatRate = %q", got)
	}
	got := FormatDelta(decimal.NewFromInt(90), decimal.NewFromInt(100), "CAD")
	if got != "-$10.00" {
		t.Errorf("FormatDelta = %q, want -$10.00", got)
	}
}

func TestRenderTable_AlignsUnicodeCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows:    [][]string{{"TFSA", "€1.00"}, {"Non-registered", "$20.00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Non-registered") {
		t.Error("row missing from output")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
	got := []rune(RenderSparkline([]float64{0, 50, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("RenderSparkline = %q", string(got))
	}
}

func TestRenderProgressBar(t *testing.T) {
	got := RenderProgressBar(decimal.NewFromInt(3500), decimal.NewFromInt(7000), 10, "CAD")
	if !strings.Contains(got, "█████░░░░░") {
		t.Errorf("bar = %q, want half filled", got)
	}
	if !strings.HasSuffix(got, "$3,500.00/$7,000.00") {
		t.Errorf("bar = %q, want amounts suffix", got)
	}

	over := RenderProgressBar(decimal.NewFromInt(9000), decimal.NewFromInt(7000), 4, "CAD")
	if !strings.Contains(over, "████") || strings.Contains(over, "░") {
		t.Errorf("over-limit bar = %q, want full", over)
	}
	if got := RenderProgressBar(decimal.NewFromInt(1), decimal.Zero, 10, "CAD"); got != "no room recorded" {
		t.Errorf("zero total = %q", got)
	}
}
