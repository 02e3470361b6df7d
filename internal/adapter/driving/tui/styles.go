package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4f8cff")).MarginBottom(1)

	rowStyle      = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("#ffffff")).Bold(true)

	stateStyles = map[string]lipgloss.Style{
		"empty":          lipgloss.NewStyle().Foreground(lipgloss.Color("#8b93a1")),
		"has_credential": lipgloss.NewStyle().Foreground(lipgloss.Color("#4f8cff")),
		"sealed":         lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950")),
	}

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b93a1"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
	promptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4f8cff")).Padding(0, 1)
)
