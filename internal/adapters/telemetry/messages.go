package telemetry

import "time"

// MsgInitTasks resets the step list of an interactive renderer.
type MsgInitTasks struct {
	Tasks []string
}

// MsgTaskStart reports a started step (span).
type MsgTaskStart struct {
	SpanID    string
	ParentID  string // empty for root spans
	Name      string
	StartTime time.Time
}

// MsgTaskLog carries a chunk of backend output for one step.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgTaskComplete reports a finished step.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
