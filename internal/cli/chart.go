package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/scalelog/internal/model"
)

// Chart glyphs.
const (
	planGlyph   = '·'
	actualGlyph = '●'
)

// RenderLineChart plots the plan curve and logged weights on a width x height
// character grid with a weight axis on the left and the date range below.
func RenderLineChart(points []model.ChartPoint, width, height int, planLabel, actualLabel string) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.PlannedKg)
		hi = math.Max(hi, p.PlannedKg)
		if p.ActualKg != nil {
			lo = math.Min(lo, *p.ActualKg)
			hi = math.Max(hi, *p.ActualKg)
		}
	}
	if hi-lo < 1 {
		hi = lo + 1
	}

	grid := make([][]rune, height)
	kind := make([][]byte, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
		kind[r] = make([]byte, width)
	}

	rowOf := func(v float64) int {
		r := int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
		return min(max(r, 0), height-1)
	}

	// Each column covers a contiguous slice of days; the plan is sampled at
	// the slice start and any weight logged inside the slice is plotted.
	for c := 0; c < width; c++ {
		from := c * len(points) / width
		to := (c + 1) * len(points) / width
		if to <= from {
			to = from + 1
		}
		if from >= len(points) {
			break
		}
		to = min(to, len(points))

		r := rowOf(points[from].PlannedKg)
		grid[r][c] = planGlyph
		kind[r][c] = 'p'

		for _, p := range points[from:to] {
			if p.ActualKg != nil {
				r := rowOf(*p.ActualKg)
				grid[r][c] = actualGlyph
				kind[r][c] = 'a'
			}
		}
	}

	var b strings.Builder
	for r := 0; r < height; r++ {
		label := "      "
		switch r {
		case 0:
			label = fmt.Sprintf("%6.1f", hi)
		case height - 1:
			label = fmt.Sprintf("%6.1f", lo)
		case (height - 1) / 2:
			label = fmt.Sprintf("%6.1f", (hi+lo)/2)
		}
		b.WriteString(mutedStyle.Render(label))
		b.WriteString(dimStyle.Render(" ┤"))
		for c, ch := range grid[r] {
			switch kind[r][c] {
			case 'p':
				b.WriteString(planStyle.Render(string(ch)))
			case 'a':
				b.WriteString(actualStyle.Render(string(ch)))
			default:
				b.WriteRune(ch)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("        ")
	b.WriteString(dimStyle.Render("└" + strings.Repeat("─", width)))
	b.WriteString("\n")

	first := points[0].Date.Format(model.DateLayout)
	last := points[len(points)-1].Date.Format(model.DateLayout)
	gap := max(width-len(first)-len(last)+1, 1)
	b.WriteString("         ")
	b.WriteString(mutedStyle.Render(first + strings.Repeat(" ", gap) + last))
	b.WriteString("\n")

	b.WriteString("         ")
	b.WriteString(planStyle.Render(string(planGlyph) + " " + planLabel))
	b.WriteString("   ")
	b.WriteString(actualStyle.Render(string(actualGlyph) + " " + actualLabel))
	b.WriteString("\n")

	return b.String()
}
