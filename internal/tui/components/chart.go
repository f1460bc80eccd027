package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a single row of block characters scaled to
// the largest value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders vertical bars with a labelled y axis and optional
// x labels. When there are more values than fit, values are sampled evenly
// keeping the first and last. Falls back to a sparkline when the area is
// too small for bars.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	step, ceiling := axisScale(maxOf(values), max(2, height/2))
	intervals := max(1, int(math.Round(ceiling/step)))
	rowsPerTick := max(2, height/intervals)
	chartH := rowsPerTick * intervals

	yLabelW := max(4, len(FormatAxisValue(ceiling))+1)
	chartW := max(5, width-yLabelW-1)

	if len(labels) != len(values) {
		labels = nil
	}
	barW, gap := 6, 1
	if n := len(values); n == 1 {
		barW, gap = min(chartW, 6), 0
	} else if fit := (chartW - (n - 1)) / n; fit >= 2 {
		barW = min(fit, 6)
	} else {
		values, labels = sample(values, labels, max(2, (chartW+1)/3))
		barW = 2
	}
	n := len(values)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	partials := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		barColor := t.Accent
		switch frac := float64(row) / float64(chartH); {
		case frac > 0.8:
			barColor = t.AccentBright
		case frac > 0.5:
			barColor = color
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		tick := ""
		if row%rowsPerTick == 0 {
			tick = FormatAxisValue(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, tick)))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := max(1, min(8, int((v-bottom)/(top-bottom)*8)))
				b.WriteString(barStyle.Render(strings.Repeat(string(partials[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if labels != nil {
		line := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			if pos <= lastEnd {
				continue
			}
			end := min(pos+len(lbl), axisLen)
			if end-pos < len(lbl) && end-pos < 3 {
				continue
			}
			copy(line[pos:end], lbl)
			lastEnd = end
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(line), " ")))
	}
	return b.String()
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// axisScale picks a round tick step so that at most maxTicks intervals
// cover peak, and returns the step and the resulting axis ceiling.
func axisScale(peak float64, maxTicks int) (step, ceiling float64) {
	if peak <= 0 {
		peak = 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		step = base
	case frac < 3.5:
		step = 2 * base
	default:
		step = 5 * base
	}
	for math.Ceil(peak/step) > float64(maxTicks) {
		step *= 2
	}
	return step, math.Ceil(peak/step) * step
}

func sample(values []float64, labels []string, n int) ([]float64, []string) {
	if n >= len(values) {
		return values, labels
	}
	outV := make([]float64, n)
	var outL []string
	if labels != nil {
		outL = make([]string, n)
	}
	for i := range outV {
		src := i * (len(values) - 1) / (n - 1)
		outV[i] = values[src]
		if outL != nil {
			outL[i] = labels[src]
		}
	}
	return outV, outL
}

// FormatAxisValue abbreviates v with k/M/B suffixes.
func FormatAxisValue(v float64) string {
	suffixed := func(div float64, suffix string) string {
		if v == math.Trunc(v/div)*div {
			return fmt.Sprintf("%.0f%s", v/div, suffix)
		}
		return fmt.Sprintf("%.1f%s", v/div, suffix)
	}
	switch {
	case v >= 1e9:
		return suffixed(1e9, "B")
	case v >= 1e6:
		return suffixed(1e6, "M")
	case v >= 1e3:
		return suffixed(1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
