package registry

import "time"

// SetClock replaces the marker timestamp source.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}
