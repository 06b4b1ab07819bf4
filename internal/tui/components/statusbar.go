package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// last status message on the right.
func RenderStatusBar(width int, hints, status string, isErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	right := status
	if right != "" {
		color := t.Good
		if isErr {
			color = t.Bad
		}
		right = lipgloss.NewStyle().Foreground(color).Render(status) + " "
	}

	left := " " + hints
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
