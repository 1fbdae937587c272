package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	agentStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	stepStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	promptBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)
