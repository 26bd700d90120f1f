package tui_test

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/telemetry"
	"go.trai.ch/coman/internal/adapters/tui"
	"go.trai.ch/zerr"
)

func newSizedModel(t *testing.T, steps ...string) *tui.Model {
	t.Helper()
	m := tui.NewModel(io.Discard)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m.Update(telemetry.MsgInitTasks{Tasks: steps})
	return &m
}

func TestModel_InitTasks(t *testing.T) {
	m := newSizedModel(t, "resolve linux-64", "resolve osx-arm64", "materialize linux-64")

	require.Len(t, m.Steps, 3)
	for _, s := range m.Steps {
		assert.Equal(t, tui.StatusPending, s.Status)
		assert.Positive(t, s.Term.Width)
	}
	assert.Same(t, m.Steps[2], m.StepMap["materialize linux-64"])

	m.Update(telemetry.MsgInitTasks{Tasks: []string{"materialize linux-64"}})
	require.Len(t, m.Steps, 1, "a new plan replaces the rows")
}

func TestModel_StepLifecycle(t *testing.T) {
	m := newSizedModel(t, "resolve linux-64", "materialize linux-64")
	start := time.Now()

	m.Update(telemetry.MsgTaskStart{SpanID: "s1", Name: "resolve linux-64", StartTime: start})
	assert.Equal(t, tui.StatusRunning, m.Steps[0].Status)
	assert.Equal(t, "resolve linux-64", m.ActiveStepName)

	m.Update(telemetry.MsgTaskComplete{SpanID: "s1", EndTime: start.Add(2 * time.Second)})
	assert.Equal(t, tui.StatusDone, m.Steps[0].Status)
	assert.Equal(t, 2*time.Second, m.Steps[0].Duration)

	m.Update(telemetry.MsgTaskStart{SpanID: "s2", Name: "materialize linux-64", StartTime: start})
	m.Update(telemetry.MsgTaskLog{SpanID: "s2", Data: []byte("Linking numpy-2.0.0\n")})
	assert.Equal(t, 1, m.SelectedIdx, "focus follows the running step")
	assert.Contains(t, m.Steps[1].Term.View(), "Linking numpy-2.0.0")

	m.Update(telemetry.MsgTaskComplete{SpanID: "s2", EndTime: start, Err: zerr.New("transaction failed")})
	assert.Equal(t, tui.StatusError, m.Steps[1].Status)
	require.Error(t, m.Steps[1].Err)
}

func TestModel_UnplannedStepGetsRow(t *testing.T) {
	m := newSizedModel(t, "materialize linux-64")

	m.Update(telemetry.MsgTaskStart{SpanID: "s1", Name: "search numpy", StartTime: time.Now()})
	require.Len(t, m.Steps, 2)
	assert.Equal(t, "search numpy", m.Steps[1].Name)
	assert.Equal(t, tui.StatusRunning, m.Steps[1].Status)
}

func TestModel_UnknownSpanIgnored(t *testing.T) {
	m := newSizedModel(t, "resolve linux-64")

	m.Update(telemetry.MsgTaskLog{SpanID: "nope", Data: []byte("x")})
	m.Update(telemetry.MsgTaskComplete{SpanID: "nope", EndTime: time.Now()})
	assert.Equal(t, tui.StatusPending, m.Steps[0].Status)
}

func TestModel_Navigation(t *testing.T) {
	m := newSizedModel(t, "resolve linux-64", "resolve win-64", "materialize linux-64")
	m.Update(telemetry.MsgTaskStart{SpanID: "s1", Name: "resolve win-64", StartTime: time.Now()})
	require.Equal(t, 1, m.SelectedIdx)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.SelectedIdx)
	assert.False(t, m.FollowMode)
	assert.Equal(t, "materialize linux-64", m.ActiveStepName)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.SelectedIdx, "stops at the first row")

	m.Update(telemetry.MsgTaskStart{SpanID: "s2", Name: "materialize linux-64", StartTime: time.Now()})
	assert.Equal(t, 0, m.SelectedIdx, "manual mode keeps the selection")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.FollowMode)
	assert.Equal(t, 1, m.SelectedIdx, "esc jumps to the first running step")
}

func TestModel_Quit(t *testing.T) {
	m := newSizedModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_InitStartsSpinner(t *testing.T) {
	m := tui.NewModel(io.Discard)
	assert.NotNil(t, m.Init())
}
