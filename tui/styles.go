package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	PrimaryColor = lipgloss.Color("39")  // Blue
	AccentColor  = lipgloss.Color("76")  // Green
	ErrorColor   = lipgloss.Color("196") // Red
	MutedColor   = lipgloss.Color("240") // Gray
	TextColor    = lipgloss.Color("252") // Light gray
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(PrimaryColor).
			Padding(0, 2)

	HeaderRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(MutedColor).
				Foreground(lipgloss.Color("255"))

	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Padding(0, 1)

	TableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)
)
