package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/scalelog/internal/forecast"
	"github.com/theirongolddev/scalelog/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestFormatters(t *testing.T) {
	kg := 82.46
	pct := 0.1
	cases := []struct{ got, want string }{
		{FormatKg(83), "83.0"},
		{FormatOptionalKg(nil), Placeholder},
		{FormatOptionalKg(&kg), "82.5"},
		{FormatRate(0.75, ""), "0.75 kg/wk"},
		{FormatRate(0.5, "kg/sem"), "0.50 kg/sem"},
		{FormatNumber(1234567), "1,234,567"},
		{FormatNumberSep(12000, ' '), "12 000"},
		{FormatNumber(-1500), "-1,500"},
		{FormatCount(0), ""},
		{FormatCount(8000), "8,000"},
		{FormatOptionalPercent(&pct), "10.0%"},
		{FormatOptionalPercent(nil), Placeholder},
		{FormatDelta(82.0, 82.47), "-0.5"},
		{FormatDelta(83.0, 82.0), "+1.0"},
		{FormatDelta(82.0, 82.0), "0.0"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestRenderTable_AlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Done"},
		Rows: [][]string{
			{"2025-07-27", "✅"},
			{"2025-07-28", ""},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != w {
			t.Errorf("line %d width %d, want %d: %q", i, lipgloss.Width(l), w, l)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{83, 82, 81}); got != "█▄▁" {
		t.Fatalf("got %q", got)
	}
	if got := RenderSparkline([]float64{80, 80}); got != "▁▁" {
		t.Fatalf("flat got %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("nil should render empty")
	}
}

func TestRenderProgressBar(t *testing.T) {
	got := RenderProgressBar(0.5, 10)
	if got != "[█████░░░░░] 50.0%" {
		t.Fatalf("got %q", got)
	}
	if got := RenderProgressBar(1.7, 4); got != "[████] 100.0%" {
		t.Fatalf("clamped got %q", got)
	}
}

func TestRenderLineChart(t *testing.T) {
	start := time.Date(2025, 7, 27, 0, 0, 0, 0, time.UTC)
	plan := forecast.Series(start, 83, 0.75, 60, nil)
	points := make([]model.ChartPoint, len(plan))
	for i, p := range plan {
		points[i] = model.ChartPoint{Date: p.Date, PlannedKg: p.ProjectedKg}
	}
	w := 82.0
	points[10].ActualKg = &w

	out := RenderLineChart(points, 30, 8, "Plan", "Actual")
	if !strings.Contains(out, "●") {
		t.Error("actual weight not plotted")
	}
	if !strings.Contains(out, "·") {
		t.Error("plan not plotted")
	}
	if !strings.Contains(out, "2025-07-27") || !strings.Contains(out, "2025-09-24") {
		t.Errorf("date range missing:\n%s", out)
	}
	if !strings.Contains(out, "  83.0") {
		t.Errorf("top axis label missing:\n%s", out)
	}

	if RenderLineChart(nil, 30, 8, "", "") != "" {
		t.Error("empty input should render nothing")
	}
}
