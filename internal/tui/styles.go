package tui

import "github.com/charmbracelet/lipgloss"

// The palette sticks to the 256-color cube so it renders the same across
// terminal profiles.
var (
	primaryColor = lipgloss.Color("36")  // teal
	accentColor  = lipgloss.Color("141") // violet
	mutedColor   = lipgloss.Color("245") // mid gray
	successColor = lipgloss.Color("42")  // green
	warningColor = lipgloss.Color("215") // amber
	errorColor   = lipgloss.Color("203") // coral
	borderColor  = lipgloss.Color("60")  // dim slate
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(accentColor)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(accentColor)

	appBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
)

// Timer states carry their own styles so the overview can flip between them
var (
	timerRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	timerPausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	timerValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)
