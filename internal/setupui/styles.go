package setupui

import "github.com/charmbracelet/lipgloss"

// Color palette for the setup wizard
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - titles, focus
	SuccessColor = lipgloss.Color("#43BF6D") // Green - saved confirmation
	ErrorColor   = lipgloss.Color("#FF5555") // Red - validation errors
	MutedColor   = lipgloss.Color("#626262") // Gray - help text
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Shared styles for the setup wizard
var (
	// TitleStyle is for the wizard heading
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	// LabelFocusedStyle is for the label of the focused field
	LabelFocusedStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// LabelBlurredStyle is for labels of unfocused fields
	LabelBlurredStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// ErrorStyle is for validation failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SuccessStyle is for the saved confirmation line
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// HelpStyle is for the key hint footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)
