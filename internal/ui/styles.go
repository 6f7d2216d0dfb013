package ui

import "github.com/charmbracelet/lipgloss"

// Panel palette. Kept close to the old-school client chatbox colors.
var (
	colorTitle   = lipgloss.Color("#d2a8ff")
	colorLabel   = lipgloss.Color("#8b949e")
	colorValue   = lipgloss.Color("#7ee787")
	colorNotice  = lipgloss.Color("#ffa657")
	colorSummary = lipgloss.Color("#58a6ff")
	colorBorder  = lipgloss.Color("#30363d")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorLabel)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorValue).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorNotice)

	summaryStyle = lipgloss.NewStyle().
			Foreground(colorSummary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorLabel).
			Faint(true)
)
