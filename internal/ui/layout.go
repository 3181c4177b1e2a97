package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the tab bar with the active tab highlighted and a
// right-aligned status such as the storage state.
func (l Layout) RenderHeader(tabs []string, active int, status string) string {
	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if i == active {
			rendered = append(rendered, theme.HeaderStyle.Render(tab))
		} else {
			rendered = append(rendered, theme.TabStyle.Render(tab))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	statusRendered := theme.TabStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := max(l.Width-lipgloss.Width(tabBar)-lipgloss.Width(statusRendered), 0)
	filler := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		tabBar,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints, or
// the alert in its place when one is set.
func (l Layout) RenderStatusBar(hints, alert string) string {
	style := theme.StatusBarStyle
	text := hints
	if alert != "" {
		style = theme.AlertStyle
		text = alert
	}
	rendered := style.Render(text)

	gap := max(l.Width-lipgloss.Width(rendered), 0)
	filler := style.Padding(0).Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
