package tui

import "github.com/charmbracelet/lipgloss"

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFF7DB"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1).
			Margin(0, 1)

	scoreGoodStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	scoreWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	scoreBadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)
