package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// ColorForProgress returns the bar color for a fraction of the target loss.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.AccentBright
	case pct >= 0.5:
		return t.Good
	case pct > 0:
		return t.Accent
	default:
		return t.Warn
	}
}

// GoalBar renders a labeled progress bar toward the target loss.
// pct is clamped to [0, 1] for drawing; the percentage shows the raw value.
func GoalBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active

	drawn := min(max(pct, 0), 1)
	color := ColorForProgress(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(drawn) + " " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct*100))
}
