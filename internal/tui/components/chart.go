package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// Sparkline renders a unicode sparkline scaled between the series extremes.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		buf.WriteRune(blocks[min(max(idx, 0), len(blocks)-1)])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// WeightChart draws the plan curve and logged weights with a tick-labelled
// weight axis. Each column covers an equal slice of the points.
func WeightChart(points []model.ChartPoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 4 {
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.PlannedKg
		}
		return Sparkline(values, t.Plan)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo, hi = math.Min(lo, p.PlannedKg), math.Max(hi, p.PlannedKg)
		if p.ActualKg != nil {
			lo, hi = math.Min(lo, *p.ActualKg), math.Max(hi, *p.ActualKg)
		}
	}

	step := chartTickStep(hi - lo)
	floor := math.Floor(lo/step) * step
	ceiling := math.Ceil(hi/step) * step
	if ceiling <= floor {
		ceiling = floor + step
	}

	yLabelW := len(formatChartLabel(ceiling)) + 1
	chartW := max(width-yLabelW-1, 5)

	rowOf := func(v float64) int {
		r := int(math.Round((ceiling - v) / (ceiling - floor) * float64(height-1)))
		return min(max(r, 0), height-1)
	}

	const (
		cellEmpty = iota
		cellPlan
		cellActual
	)
	cells := make([][]int, height)
	for r := range cells {
		cells[r] = make([]int, chartW)
	}
	for c := 0; c < chartW; c++ {
		from := c * len(points) / chartW
		to := max((c+1)*len(points)/chartW, from+1)
		if from >= len(points) {
			break
		}
		to = min(to, len(points))

		cells[rowOf(points[from].PlannedKg)][c] = cellPlan
		for _, p := range points[from:to] {
			if p.ActualKg != nil {
				cells[rowOf(*p.ActualKg)][c] = cellActual
			}
		}
	}

	tickLabels := make(map[int]string)
	for v := floor; v <= ceiling+step/2; v += step {
		tickLabels[rowOf(v)] = formatChartLabel(v)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	planStyle := lipgloss.NewStyle().Foreground(t.Plan)
	actualStyle := lipgloss.NewStyle().Foreground(t.Actual).Bold(true)

	var b strings.Builder
	for r := 0; r < height; r++ {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[r])))
		b.WriteString(axisStyle.Render("┤"))
		for _, cell := range cells[r] {
			switch cell {
			case cellPlan:
				b.WriteString(planStyle.Render("·"))
			case cellActual:
				b.WriteString(actualStyle.Render("●"))
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", yLabelW))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", chartW)))
	b.WriteString("\n")

	first := points[0].Date.Format("02.01.06")
	last := points[len(points)-1].Date.Format("02.01.06")
	gap := max(chartW-len(first)-len(last), 1)
	b.WriteString(strings.Repeat(" ", yLabelW+1))
	b.WriteString(axisStyle.Render(first + strings.Repeat(" ", gap) + last))

	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks over span.
func chartTickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
