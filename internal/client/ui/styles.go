package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - Earthy tones (lighter for dark backgrounds)
var (
	primaryColor   = lipgloss.Color("#E8C4A0") // Light warm beige
	secondaryColor = lipgloss.Color("#7EBB81") // Light forest green
	accentColor    = lipgloss.Color("#A8C9A4") // Soft sage green
	successColor   = lipgloss.Color("#B5D99C") // Bright sage
	mutedColor     = lipgloss.Color("#B8A890") // Light taupe
	fgColor        = lipgloss.Color("#F5F3ED") // Warm white
	highlightColor = lipgloss.Color("#F0DEB4") // Cream highlight
	errorColor     = lipgloss.Color("#E07B7B") // Soft red
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Align(lipgloss.Center)

	roomsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	historyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	focusedBorderColor = highlightColor

	highlightStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	instructionStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(fgColor)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Bold(true)

	pendingRoomStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	newChatStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	centerStyle = lipgloss.NewStyle().
			Align(lipgloss.Center).
			Foreground(mutedColor).
			Italic(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Message bubbles: the local user on the right, everyone else on the left
	selfBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Foreground(fgColor).
			Padding(0, 1)

	otherBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				Foreground(fgColor).
				Padding(0, 1)

	selfMetaStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	otherMetaStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	imageStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Underline(true)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	sendButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2B2B2B")).
			Background(successColor).
			Bold(true).
			Padding(0, 1)

	sendButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Background(lipgloss.Color("#4A4A4A")).
				Padding(0, 1)
)
