package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	if len(got) != 3 || got[0] != 4 || got[1] != 3 || got[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v", got)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("n=0 should be nil")
	}
}

func TestMetricCardRow_Width(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "Current weight", Value: "82.0"},
		{Label: "Total loss", Value: "1.0", Hint: "kg"},
		{Label: "Progress", Value: "3.3%"},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestCardRow_HeightMatchesTallest(t *testing.T) {
	short := ContentCard("Short", "A", 30)
	tall := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tall, short})
	want := len(strings.Split(tall, "\n"))
	if got := len(strings.Split(joined, "\n")); got != want {
		t.Fatalf("joined height = %d, want %d", got, want)
	}
}

func TestErrorCard(t *testing.T) {
	out := ErrorCard("Storage error", errors.New("sheets: unauthorized"), 40)
	if !strings.Contains(out, "Storage error") || !strings.Contains(out, "unauthorized") {
		t.Fatalf("error card missing text:\n%s", out)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey("2", 4); got != 1 {
		t.Fatalf("got %d", got)
	}
	for _, k := range []string{"0", "5", "x", "12"} {
		if got := TabIdxByKey(k, 4); got != -1 {
			t.Errorf("TabIdxByKey(%q) = %d", k, got)
		}
	}
	bar := RenderTabBar([]Tab{{Name: "Entry"}, {Name: "Journal"}}, 0)
	if !strings.Contains(bar, "[1]Entry") || !strings.Contains(bar, "[2]Journal") {
		t.Fatalf("tab bar = %q", bar)
	}
}

func TestStatusBar_Width(t *testing.T) {
	bar := RenderStatusBar(60, "[q]uit", "Entry saved", false)
	if w := lipgloss.Width(bar); w != 60 {
		t.Fatalf("width = %d", w)
	}
	if !strings.Contains(bar, "Entry saved") {
		t.Fatalf("status missing: %q", bar)
	}
}

func TestWeightChart(t *testing.T) {
	start := time.Date(2025, 7, 27, 0, 0, 0, 0, time.UTC)
	var points []model.ChartPoint
	for i := 0; i < 100; i++ {
		points = append(points, model.ChartPoint{
			Date:      start.AddDate(0, 0, i),
			PlannedKg: 83 - 0.75*float64(i)/7,
		})
	}
	w := 81.0
	points[20].ActualKg = &w

	out := WeightChart(points, 60, 10)
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(lines))
	}
	if !strings.Contains(out, "●") || !strings.Contains(out, "·") {
		t.Fatalf("missing glyphs:\n%s", out)
	}
	if !strings.Contains(out, "27.07.25") {
		t.Fatalf("missing start date:\n%s", out)
	}

	if got := WeightChart(points, 10, 10); strings.Contains(got, "\n") {
		t.Fatal("narrow chart should fall back to a sparkline")
	}
}

func TestChartTickStep(t *testing.T) {
	cases := map[float64]float64{10: 2, 4: 0.5, 25: 5, 0: 1}
	for span, want := range cases {
		if got := chartTickStep(span); got != want {
			t.Errorf("chartTickStep(%v) = %v, want %v", span, got, want)
		}
	}
}

func TestGoalBar(t *testing.T) {
	out := GoalBar("Progress", 0.25, 10, 20)
	if !strings.Contains(out, "25.0%") {
		t.Fatalf("got %q", out)
	}
}
