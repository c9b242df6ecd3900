package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles for the walker
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(28),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true),
	}
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
