// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount in the currency's conventional style,
// e.g. 1234.5 CAD -> "$1,234.50". Unknown currencies fall back to
// "1234.50 XYZ".
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatMoneyCompact abbreviates large amounts for narrow cells.
// e.g. 1234 -> "$1.2K", 2500000 -> "$2.5M"
func FormatMoneyCompact(amount decimal.Decimal, currency string) string {
	f := amount.InexactFloat64()
	abs := f
	if abs < 0 {
		abs = -abs
	}
	symbol := "$"
	if cur := money.GetCurrency(strings.ToUpper(currency)); cur != nil {
		symbol = cur.Grapheme
	}

	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%s%.1fM", symbol, f/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%s%.0fK", symbol, f/1_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s%.1fK", symbol, f/1_000)
	default:
		return FormatMoney(amount, currency)
	}
}

// FormatMonths formats a month count as years and months.
// e.g., 30 -> "2y 6m", 24 -> "2y", 5 -> "5m"
func FormatMonths(months int) string {
	if months <= 0 {
		return "0m"
	}
	years := months / 12
	rest := months % 12
	switch {
	case years > 0 && rest > 0:
		return fmt.Sprintf("%dy %dm", years, rest)
	case years > 0:
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dm", rest)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatRate formats an annual rate held as a decimal fraction.
func FormatRate(rate decimal.Decimal) string {
	return rate.Shift(2).StringFixed(2) + "%"
}

// FormatDelta formats the change between two amounts with a sign.
func FormatDelta(current, previous decimal.Decimal, currency string) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg(), currency)
	}
	return "+" + FormatMoney(delta, currency)
}
