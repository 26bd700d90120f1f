package ports

import "time"

// Renderer presents reconciliation progress.
// It is fed by the telemetry bridge, so the reconciler never writes progress directly.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called with the steps about to run.
	OnPlanEmit(steps []string)

	// OnTaskStart is called when a step begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called with raw output of a step (may contain partial lines).
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a step finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// Stop flushes any buffered output.
	Stop() error
}
