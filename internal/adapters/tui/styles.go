package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/coman/internal/ui/style"
)

var (
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(style.Muted).
			MarginRight(1).
			PaddingRight(1)

	logStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	pendingStyle = lipgloss.NewStyle().
			Foreground(style.Muted)

	runningStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Accent).
			Foreground(lipgloss.Color("#FFFFFF"))

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(lipgloss.Color("#FFFFFF"))
)
