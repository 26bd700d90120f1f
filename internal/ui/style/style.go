// Package style holds the colors, icons and lipgloss styles shared by every
// piece of coman output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#0E9F6E")
	Muted  = lipgloss.Color("#6B7280")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "•"
)

// Text styles.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Foreground(Muted)
	Heading = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Success = lipgloss.NewStyle().Foreground(Green)
	Failure = lipgloss.NewStyle().Foreground(Red)
	Pending = lipgloss.NewStyle().Foreground(Yellow)
	Info    = lipgloss.NewStyle().Foreground(Blue)
)

// ForState returns the style used to print a reconciliation state name.
func ForState(state string) lipgloss.Style {
	switch state {
	case "in-sync":
		return Success
	case "lock-missing", "lock-stale", "spec-changed":
		return Failure
	case "env-missing", "env-stale":
		return Pending
	default:
		return Dim
	}
}

// IconForState returns the icon prefixed to a state in status listings.
func IconForState(state string) string {
	switch state {
	case "in-sync":
		return Check
	case "env-missing", "env-stale":
		return Warning
	default:
		return Cross
	}
}
