package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/coman/internal/adapters/telemetry"
	"go.trai.ch/coman/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer runs the bubbletea program and feeds it telemetry events.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error

	stopOnce sync.Once
	stopErr  error
}

// NewRenderer creates a renderer for model. The program is not started.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start runs the program in the background.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop quits the program and waits until the terminal is restored.
func (r *Renderer) Stop() error {
	r.stopOnce.Do(func() {
		r.program.Quit()
		r.stopErr = <-r.errCh
	})
	return r.stopErr
}

// OnPlanEmit resets the step list to the planned steps.
func (r *Renderer) OnPlanEmit(steps []string) {
	r.program.Send(telemetry.MsgInitTasks{Tasks: steps})
}

// OnTaskStart forwards a step start.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(telemetry.MsgTaskStart{
		SpanID:    spanID,
		ParentID:  parentID,
		Name:      name,
		StartTime: startTime,
	})
}

// OnTaskLog forwards backend output.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.program.Send(telemetry.MsgTaskLog{
		SpanID: spanID,
		Data:   append([]byte(nil), data...),
	})
}

// OnTaskComplete forwards a step completion.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(telemetry.MsgTaskComplete{
		SpanID:  spanID,
		EndTime: endTime,
		Err:     err,
	})
}

// Program returns the underlying program.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
