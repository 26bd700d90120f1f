package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/coman/internal/ui/style"
)

// View renders the step list next to the log pane.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.stepList(), m.logPane())
}

func (m *Model) stepList() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("STEPS") + "\n\n")

	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Steps))
	start = min(start, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderStepRow(i, m.Steps[i]) + "\n")
	}
	return listStyle.Render(s.String())
}

func (m *Model) renderStepRow(index int, step *StepNode) string {
	rowStyle := statusStyle(step.Status)
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if step.Status == StatusPending || step.Status == StatusRunning {
			rowStyle = selectedStyle
		}
	}

	content := fmt.Sprintf("%s %s", m.icon(step), step.Name)
	if step.Duration > 0 {
		content += " " + pendingStyle.Render(step.Duration.Round(time.Millisecond).String())
	}
	return cursor + rowStyle.Render(content)
}

func (m *Model) icon(step *StepNode) string {
	switch step.Status {
	case StatusRunning:
		return m.Spinner.View()
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return "○"
	}
}

func statusStyle(status StepStatus) lipgloss.Style {
	switch status {
	case StatusRunning:
		return runningStyle
	case StatusDone:
		return doneStyle
	case StatusError:
		return errorStyle
	default:
		return pendingStyle
	}
}

func (m *Model) logPane() string {
	node, ok := m.StepMap[m.ActiveStepName]
	if !ok {
		return logStyle.Render(titleStyle.Render("LOGS (Waiting...)"))
	}

	mode := " (Manual)"
	if m.FollowMode {
		mode = " (Following)"
	}
	header := titleStyle.Render("LOGS: " + node.Name + mode)
	content := node.Term.View()
	if node.Status == StatusError {
		header = failureTitleStyle.Render("FAILED: " + node.Name)
		if node.Err != nil {
			content = errorStyle.Render(node.Err.Error()) + "\n" + content
		}
	}
	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}
