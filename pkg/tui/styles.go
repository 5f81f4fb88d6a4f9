package tui

import "github.com/charmbracelet/lipgloss"

// --- Styles ---
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#0052FF")).
			Padding(0, 1).
			Bold(true)
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C4A6B")).
			Background(lipgloss.Color("#0B0F1A")).
			Foreground(lipgloss.Color("#DBE7FF")).
			Padding(0, 1)
	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	focusedButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("#0052FF")).
				Foreground(lipgloss.Color("#FAFAFA")).
				Bold(true)
	disabledButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("238")).
				BorderForeground(lipgloss.Color("236"))
)
