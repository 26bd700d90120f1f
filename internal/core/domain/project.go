package domain

import (
	"path/filepath"
	"regexp"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Project is the explicit context every operation works on.
type Project struct {
	// Dir is the absolute project directory containing the specification.
	Dir string
	// Basename is the sanitized directory name used in environment names.
	Basename string
	// EnvsRoot is the shared root all environments live under.
	EnvsRoot string
	// Host is the platform of the running machine.
	Host Platform

	// Spec and Locks are filled in by the reconciler when the project is loaded.
	Spec  *Spec
	Locks *LockSet
}

// NewProject builds a project context for dir.
func NewProject(dir, envsRoot string, host Platform) *Project {
	return &Project{
		Dir:      dir,
		Basename: ProjectBasename(dir),
		EnvsRoot: envsRoot,
		Host:     host,
	}
}

// ProjectBasename returns the directory name of dir made safe for use in
// environment and lock file names.
func ProjectBasename(dir string) string {
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return "env"
	}
	return unsafeNameChars.ReplaceAllString(base, "_")
}

// SpecPath returns the path of the specification file.
func (p *Project) SpecPath() string {
	return filepath.Join(p.Dir, SpecFileName)
}

// Identity returns the environment identity for platform pl under the loaded spec.
func (p *Project) Identity(pl Platform) EnvIdentity {
	return EnvIdentity{
		ProjectBasename: p.Basename,
		Fingerprint:     EnvironmentFingerprint(p.Spec, pl),
	}
}

// SolveRequest is the canonical input handed to a resolver for one platform.
type SolveRequest struct {
	Platform Platform
	Channels []string
	// Specs are conda match specs, sorted by package name.
	Specs []string
}

// PackageInfo is a search result from a package index.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	Subdir  string `json:"subdir"`
}

// Command is a process to run inside a materialized environment.
type Command struct {
	Args []string
	Dir  string
	// Env holds KEY=VALUE overrides applied on top of the filtered host environment.
	Env []string
	// PathPrepend is prepended to PATH.
	PathPrepend []string
}

// CatalogEntry records an environment installed on this machine.
type CatalogEntry struct {
	Path            string
	ProjectDir      string
	Platform        Platform
	EnvFingerprint  string
	LockContentHash string
	InstalledAt     time.Time
}

// Settings is the resolved user configuration.
type Settings struct {
	EnvsRoot string
	PkgsDirs string
	Backend  string
	// Platform overrides host detection when set.
	Platform Platform
	Jobs     int
	JSON     bool
}
