package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette holds the shared [lipgloss.Style] set for the wizard screens.
// Status colors echo the services being linked, Spotify green for success
// and a muted red for failures.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = Palette{
	title: fg("#7D56F4").Bold(true).MarginBottom(1),
	ok:    fg("#1DB954").Bold(true),
	err:   fg("#E22134").Bold(true),
	warn:  fg("#FFA500"),
	help:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#626262"}),
}

func fg(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
