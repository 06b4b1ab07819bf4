package tui

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/tui/components"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestTabAtXMatchesTabBar(t *testing.T) {
	a := App{labels: i18n.For("en")}
	bar := components.RenderTabBar(a.tabs(), 0)

	for i, tab := range a.tabs() {
		start := strings.Index(bar, "["+strconv.Itoa(i+1)+"]")
		if start < 0 {
			t.Fatalf("tab %d missing from %q", i, bar)
		}
		end := start + 3 + len(tab.Name)
		for _, x := range []int{start, (start + end) / 2, end - 1} {
			if got := a.tabAtX(x); got != i {
				t.Fatalf("x=%d -> tab=%d, want %d (bar %q)", x, got, i, bar)
			}
		}
		if got := a.tabAtX(end); got != -1 {
			t.Fatalf("x=%d in separator -> tab=%d, want -1", end, got)
		}
	}
	if got := a.tabAtX(0); got != -1 {
		t.Fatalf("x=0 -> tab=%d, want -1", got)
	}
}
