package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	// Service state colors
	managedColor  = lipgloss.Color("10") // Green
	externalColor = lipgloss.Color("11") // Yellow
	stoppedColor  = lipgloss.Color("8")  // Gray

	// UI colors
	headerBg    = lipgloss.Color("235")
	statusBg    = lipgloss.Color("236")
	errorColor  = lipgloss.Color("9")
	dimColor    = lipgloss.Color("8")
	borderColor = lipgloss.Color("240")
	focusColor  = lipgloss.Color("14")

	// Service name colors (for log lines)
	serviceColorList = []lipgloss.Color{
		lipgloss.Color("14"),  // Cyan
		lipgloss.Color("13"),  // Magenta
		lipgloss.Color("12"),  // Blue
		lipgloss.Color("11"),  // Yellow
		lipgloss.Color("10"),  // Green
		lipgloss.Color("208"), // Orange
		lipgloss.Color("207"), // Pink
		lipgloss.Color("159"), // Light blue
		lipgloss.Color("156"), // Light green
	}
)

// Styles
var (
	managedStyle = lipgloss.NewStyle().
			Foreground(managedColor).
			Bold(true)

	externalStyle = lipgloss.NewStyle().
			Foreground(externalColor)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(stoppedColor)

	defaultServiceStyle = lipgloss.NewStyle()

	headerStyle = lipgloss.NewStyle().
			Background(headerBg).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(statusBg).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Background(statusBg).
				Foreground(errorColor).
				Bold(true).
				Padding(0, 1)

	// Stderr marker on log lines
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(errorColor).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(borderColor).
			Bold(true)

	focusedTitleStyle = lipgloss.NewStyle().
				Foreground(focusColor).
				Bold(true).
				Underline(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	selectedSuggestionStyle = lipgloss.NewStyle().
				Foreground(focusColor).
				Bold(true)

	serviceColors []lipgloss.Style
)

func init() {
	for _, color := range serviceColorList {
		serviceColors = append(serviceColors, lipgloss.NewStyle().Foreground(color))
	}
}

// kindStyle returns the header style for a running kind
func kindStyle(kind string) lipgloss.Style {
	switch kind {
	case "managed":
		return managedStyle
	case "external":
		return externalStyle
	case "stopped":
		return stoppedStyle
	default:
		return defaultServiceStyle
	}
}

// serviceStyle picks a stable color from the service's position
func serviceStyle(id string, order []string) lipgloss.Style {
	for i, s := range order {
		if s == id {
			return serviceColors[i%len(serviceColors)]
		}
	}
	return defaultServiceStyle
}
