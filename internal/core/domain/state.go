package domain

import "time"

// State is the reconciliation state of one platform.
type State uint8

const (
	// InSync means spec, lock and environment agree.
	InSync State = iota
	// SpecChanged means the specification was just mutated and nothing was re-locked yet.
	SpecChanged
	// LockMissing means no lock document exists for the platform.
	LockMissing
	// LockStale means the lock document was derived from a different specification.
	LockStale
	// EnvMissing means the lock is current but no environment is materialized.
	EnvMissing
	// EnvStale means the environment was installed from a different lock document.
	EnvStale
)

var stateNames = [...]string{
	InSync:      "in-sync",
	SpecChanged: "spec-changed",
	LockMissing: "lock-missing",
	LockStale:   "lock-stale",
	EnvMissing:  "env-missing",
	EnvStale:    "env-stale",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// NeedsLock reports whether the platform must be resolved again.
func (s State) NeedsLock() bool {
	return s == SpecChanged || s == LockMissing || s == LockStale
}

// NeedsInstall reports whether the platform's environment must be materialized.
func (s State) NeedsInstall() bool {
	return s != InSync
}

// Marker is the consistency record written into a materialized environment.
type Marker struct {
	// Present is false when the environment has no (readable) marker.
	Present         bool      `json:"-"`
	LockContentHash string    `json:"lock_content_hash"`
	Platform        Platform  `json:"platform"`
	SpecFingerprint string    `json:"spec_fingerprint"`
	ProjectDir      string    `json:"project_dir"`
	InstalledAt     time.Time `json:"installed_at"`
}

// Observation is everything the state rules need to know about one platform.
type Observation struct {
	Platform        Platform
	Lock            *LockDocument
	NoarchOK        bool
	SpecFingerprint string
	EnvExists       bool
	Marker          Marker
	LockContentHash string
}

// Classify applies the reconciliation rules in order; the first match wins.
func Classify(o Observation) State {
	switch {
	case o.Lock == nil:
		return LockMissing
	case o.Lock.SpecFingerprint != o.SpecFingerprint,
		!SchemaSupported(o.Lock.SchemaVersion),
		!o.NoarchOK:
		return LockStale
	case !o.EnvExists:
		return EnvMissing
	case !o.Marker.Present,
		o.Marker.LockContentHash != o.LockContentHash,
		o.Marker.Platform != o.Platform:
		return EnvStale
	default:
		return InSync
	}
}

// PlatformStatus is the reported state of one platform.
type PlatformStatus struct {
	Platform        Platform `json:"platform"`
	State           State    `json:"-"`
	StateName       string   `json:"state"`
	EnvPath         string   `json:"env_path"`
	EnvFingerprint  string   `json:"env_fingerprint"`
	SpecFingerprint string   `json:"spec_fingerprint"`
	LockFingerprint string   `json:"lock_fingerprint,omitempty"`
	LockContentHash string   `json:"lock_content_hash,omitempty"`
	MarkerHash      string   `json:"marker_hash,omitempty"`
	Installable     bool     `json:"installable"`
}
