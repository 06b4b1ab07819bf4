package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// Tab is one entry of the tab bar. Tabs are switched with their 1-based
// position on the number row.
type Tab struct {
	Name string
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(tabs []Tab, activeIdx int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		key := keyStyle.Render("[" + string(rune('1'+i)) + "]")
		if i == activeIdx {
			parts[i] = key + activeStyle.Render(tab.Name)
		} else {
			parts[i] = key + inactiveStyle.Render(tab.Name)
		}
	}
	return " " + strings.Join(parts, "  ")
}

// TabIdxByKey returns the tab index for a number key press, or -1.
func TabIdxByKey(key string, n int) int {
	if len(key) != 1 {
		return -1
	}
	idx := int(key[0] - '1')
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}
