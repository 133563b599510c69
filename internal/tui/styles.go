package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	project  lipgloss.Style
	dates    lipgloss.Style
	status   lipgloss.Style
	empty    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")).MarginBottom(1),
		item:     lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#c0caf5")),
		selected: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("#bb9af7")).Background(lipgloss.Color("#33467c")),
		project:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")),
		dates:    lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).MarginTop(1),
		empty:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#565f89")),
	}
}
