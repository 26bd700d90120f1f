package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/coman/internal/adapters/telemetry"
)

const (
	stepListWidthRatio = 0.3
	logPaneBorderWidth = 4
)

// StepStatus is the state of one reconciliation step.
type StepStatus string

const (
	// StatusPending is a planned step that has not started.
	StatusPending StepStatus = "Pending"
	// StatusRunning is a step in progress.
	StatusRunning StepStatus = "Running"
	// StatusDone is a step that succeeded.
	StatusDone StepStatus = "Done"
	// StatusError is a step that failed.
	StatusError StepStatus = "Error"
)

// StepNode is one row of the step list: "resolve linux-64",
// "materialize osx-arm64" and so on.
type StepNode struct {
	Name     string
	Status   StepStatus
	Term     *Vterm
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Model is the bubbletea model of the install view.
type Model struct {
	Steps          []*StepNode
	StepMap        map[string]*StepNode
	SpanMap        map[string]*StepNode
	ActiveStepName string
	SelectedIdx    int
	ListOffset     int
	ListHeight     int
	LogWidth       int
	LogHeight      int
	FollowMode     bool
	Spinner        spinner.Model
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update applies key presses, resizes and telemetry messages.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case telemetry.MsgInitTasks:
		m.Steps = make([]*StepNode, 0, len(msg.Tasks))
		m.StepMap = make(map[string]*StepNode, len(msg.Tasks))
		m.SpanMap = make(map[string]*StepNode)
		m.SelectedIdx, m.ListOffset, m.ActiveStepName = 0, 0, ""
		for _, name := range msg.Tasks {
			m.addStep(name)
		}

	case telemetry.MsgTaskStart:
		// Steps outside the plan, such as an index lookup, get a row on first sight.
		node, ok := m.StepMap[msg.Name]
		if !ok {
			node = m.addStep(msg.Name)
		}
		node.Status = StatusRunning
		node.Started = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.focus(msg.Name)
		}

	case telemetry.MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case telemetry.MsgTaskComplete:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.Status = StatusDone
			if msg.Err != nil {
				node.Status = StatusError
				node.Err = msg.Err
			}
			if !node.Started.IsZero() {
				node.Duration = msg.EndTime.Sub(node.Started)
			}
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.updateActiveView()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Steps)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.updateActiveView()
		}
	case "esc":
		m.FollowMode = true
		for _, s := range m.Steps {
			if s.Status == StatusRunning {
				m.focus(s.Name)
				break
			}
		}
	default:
		if node, ok := m.StepMap[m.ActiveStepName]; ok {
			node.Term.Update(msg)
		}
	}
	return nil
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * stepListWidthRatio)
	m.LogWidth = width - listWidth - logPaneBorderWidth
	m.LogHeight = height - lipgloss.Height(titleStyle.Render("LOGS"))
	m.ListHeight = height - lipgloss.Height(titleStyle.Render("STEPS")+"\n\n")
	m.ensureVisible()
	for _, node := range m.Steps {
		node.Term.SetWidth(m.LogWidth)
		node.Term.SetHeight(m.LogHeight)
	}
}

func (m *Model) addStep(name string) *StepNode {
	term := NewVterm()
	if m.LogWidth > 0 && m.LogHeight > 0 {
		term.SetWidth(m.LogWidth)
		term.SetHeight(m.LogHeight)
	}
	node := &StepNode{Name: name, Status: StatusPending, Term: term}
	m.Steps = append(m.Steps, node)
	m.StepMap[name] = node
	return node
}

func (m *Model) focus(name string) {
	for i, s := range m.Steps {
		if s.Name == name {
			m.SelectedIdx = i
			break
		}
	}
	m.updateActiveView()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) updateActiveView() {
	m.ensureVisible()
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Steps) {
		return
	}
	node := m.Steps[m.SelectedIdx]
	m.ActiveStepName = node.Name
	if m.FollowMode {
		node.Term.ScrollToBottom()
	}
}
