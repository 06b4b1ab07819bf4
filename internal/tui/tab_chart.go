package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/tui/components"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// summaryMetrics builds the five headline cards.
func summaryMetrics(s model.Summary, labels rateLabels) []components.Metric {
	loss := cli.Placeholder
	if s.TotalLossKg != nil {
		loss = cli.FormatKg(*s.TotalLossKg) + " kg"
	}
	current := cli.FormatOptionalKg(s.CurrentKg)
	if s.CurrentKg != nil {
		current += " kg"
	}
	return []components.Metric{
		{Label: labels.current, Value: current},
		{Label: labels.loss, Value: loss},
		{Label: labels.progress, Value: cli.FormatOptionalPercent(s.Progress)},
		{Label: labels.goal, Value: cli.FormatKg(s.GoalKg) + " kg"},
		{Label: labels.rate, Value: cli.FormatRate(s.WeeklyLossKg, labels.unit)},
	}
}

type rateLabels struct {
	current, loss, progress, goal, rate, unit string
}

func (a App) rateLabels() rateLabels {
	return rateLabels{
		current:  a.labels.CurrentWeight,
		loss:     a.labels.TotalLoss,
		progress: a.labels.Progress,
		goal:     a.labels.GoalWeight,
		rate:     a.labels.WeeklyRate,
		unit:     a.labels.RateUnit,
	}
}

func (a App) renderChartTab(cw, h int) string {
	t := theme.Active
	if a.result == nil {
		return ""
	}
	s := a.result.Summary

	var b strings.Builder
	b.WriteString(components.MetricCardRow(summaryMetrics(s, a.rateLabels()), cw))
	b.WriteString("\n")

	progress := 0.0
	if s.Progress != nil {
		progress = *s.Progress
	}
	barW := max(cw-lipgloss.Width(a.labels.Progress)-20, 10)
	b.WriteString(" ")
	b.WriteString(components.GoalBar(a.labels.Progress, progress, lipgloss.Width(a.labels.Progress), barW))
	b.WriteString("\n")

	chartH := max(h-14, 6)
	chart := components.WeightChart(a.result.Chart, components.CardInnerWidth(cw), chartH)
	legend := lipgloss.NewStyle().Foreground(t.Plan).Render("· "+a.labels.Plan) + "   " +
		lipgloss.NewStyle().Foreground(t.Actual).Render("● "+a.labels.Actual)
	b.WriteString(components.ContentCard(a.labels.TabChart, chart+"\n"+legend, cw))

	if weeks := pipeline.AggregateWeeks(a.result.Records); len(weeks) > 1 {
		var avgs []float64
		for _, w := range weeks {
			if w.AvgWeightKg != nil {
				avgs = append(avgs, *w.AvgWeightKg)
			}
		}
		if len(avgs) > 1 {
			b.WriteString("\n ")
			b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render("⌀/week "))
			b.WriteString(components.Sparkline(avgs, t.Actual))
		}
	}

	return b.String()
}
