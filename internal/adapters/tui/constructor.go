// Package tui renders reconciliation steps as an interactive terminal view:
// a step list on the left and the selected step's package manager output on
// the right.
package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/coman/internal/ui/output"
)

// NewModel creates a model following the running step. w is the terminal the
// view is drawn on; it decides the color profile.
func NewModel(w io.Writer) Model {
	lipgloss.SetColorProfile(output.New(w).Profile)

	return Model{
		Steps:      make([]*StepNode, 0),
		StepMap:    make(map[string]*StepNode),
		SpanMap:    make(map[string]*StepNode),
		FollowMode: true,
		Spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(runningStyle)),
	}
}
