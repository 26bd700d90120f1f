package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrSpecFormat is returned when the specification file cannot be parsed.
	ErrSpecFormat = zerr.New("invalid specification file")

	// ErrSpecNotFound is returned when no specification file exists in the project or its parents.
	ErrSpecNotFound = zerr.New("no " + SpecFileName + " found in current directory or any parent")

	// ErrSpecExists is returned by init when a specification file already exists.
	ErrSpecExists = zerr.New("specification file already exists")

	// ErrLockFormat is returned when a lock file cannot be parsed.
	ErrLockFormat = zerr.New("invalid lock file")

	// ErrLockMismatch is returned when a lock file's platform header does not match its file name.
	ErrLockMismatch = zerr.New("lock file platform does not match its file name")

	// ErrConfigFormat is returned when the user configuration is invalid.
	ErrConfigFormat = zerr.New("invalid configuration")

	// ErrDuplicateDependency is returned when adding a dependency that is already declared.
	ErrDuplicateDependency = zerr.New("dependency already declared")

	// ErrDependencyNotFound is returned when removing a dependency that is not declared.
	ErrDependencyNotFound = zerr.New("dependency not declared")

	// ErrNothingChanged is returned when a mutation would leave the specification unchanged.
	ErrNothingChanged = zerr.New("specification unchanged")

	// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrInvalidPackageName is returned when a dependency name contains invalid characters.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrUnknownPlatform is returned for a platform identifier coman does not know.
	ErrUnknownPlatform = zerr.New("unknown platform")

	// ErrUnknownSelector is returned for a platform selector that matches no platform.
	ErrUnknownSelector = zerr.New("unknown platform selector")

	// ErrUnsupportedHost is returned when the running OS/architecture maps to no known platform.
	ErrUnsupportedHost = zerr.New("unsupported host platform")

	// ErrPlatformNotConfigured is returned when an operation targets a platform absent from the specification.
	ErrPlatformNotConfigured = zerr.New("platform is not configured in the specification")

	// ErrPlatformNotInstallable is returned when materializing a platform the host cannot run.
	ErrPlatformNotInstallable = zerr.New("platform cannot be installed on this host")

	// ErrLastPlatform is returned when removing the only configured platform.
	ErrLastPlatform = zerr.New("cannot remove the last platform")

	// ErrChannelExists is returned when adding a channel that is already configured.
	ErrChannelExists = zerr.New("channel already configured")

	// ErrChannelNotFound is returned when removing a channel that is not configured.
	ErrChannelNotFound = zerr.New("channel not configured")

	// ErrResolution is returned when the resolver cannot satisfy the constraints.
	ErrResolution = zerr.New("dependencies could not be resolved")

	// ErrInstallPartial is returned when some packages failed to install.
	ErrInstallPartial = zerr.New("environment installation incomplete")

	// ErrNotOwned is returned when an environment path is not owned by the current project.
	ErrNotOwned = zerr.New("environment path is not owned by this project")

	// ErrLockTimeout is returned when the project lock could not be acquired.
	ErrLockTimeout = zerr.New("another coman process holds the project lock")

	// ErrBackendNotFound is returned when no package manager executable can be located.
	ErrBackendNotFound = zerr.New("no micromamba, mamba or conda executable found")

	// ErrBackendFailed is returned when the package manager exits unexpectedly.
	ErrBackendFailed = zerr.New("package manager failed")

	// ErrPackageNotFound is returned when the package index has no match for a name.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrEnvironmentNotInstalled is returned when an operation needs an installed environment.
	ErrEnvironmentNotInstalled = zerr.New("environment is not installed")

	// ErrNoCommand is returned when run is invoked without a command.
	ErrNoCommand = zerr.New("no command specified")

	// ErrCommandFailed is returned when a command run inside the environment exits non-zero.
	ErrCommandFailed = zerr.New("command failed")
)

// Conflict is one constraint reported by the resolver as unsatisfiable.
type Conflict struct {
	// Package is the name of the package that could not be satisfied.
	Package string
	// Constraint is the requested constraint, if the resolver reported one.
	Constraint string
	// RequiredBy lists "name version" of the packages that require Package.
	RequiredBy []string
}

func (c Conflict) String() string {
	s := c.Package
	if c.Constraint != "" {
		s += " " + c.Constraint
	}
	if len(c.RequiredBy) > 0 {
		s += " (required by " + strings.Join(c.RequiredBy, ", ") + ")"
	}
	return s
}

// ResolutionError reports an unsatisfiable constraint set for one platform.
type ResolutionError struct {
	Platform  Platform
	Conflicts []Conflict
	// Detail is the raw message from the resolver when no conflicts could be extracted.
	Detail string
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s for %s", ErrResolution.Error(), e.Platform)
	if len(e.Conflicts) > 0 {
		names := make([]string, 0, len(e.Conflicts))
		for _, c := range e.Conflicts {
			names = append(names, c.String())
		}
		fmt.Fprintf(&b, ": %s", strings.Join(names, "; "))
	} else if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return ErrResolution
}

// FailedPackage is a package the installer could not materialize.
type FailedPackage struct {
	Name   string
	Reason string
}

// InstallPartialFailure reports packages that failed to install into an environment.
type InstallPartialFailure struct {
	Platform Platform
	Prefix   string
	Failed   []FailedPackage
}

func (e *InstallPartialFailure) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		if f.Reason != "" {
			names = append(names, f.Name+" ("+f.Reason+")")
			continue
		}
		names = append(names, f.Name)
	}
	return fmt.Sprintf("%s for %s: %d package(s) failed: %s",
		ErrInstallPartial.Error(), e.Platform, len(e.Failed), strings.Join(names, ", "))
}

func (e *InstallPartialFailure) Unwrap() error {
	return ErrInstallPartial
}

// NotFoundError reports a missing dependency together with close matches.
type NotFoundError struct {
	Name        string
	Selector    string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := ErrDependencyNotFound.Error() + ": " + e.Name
	if e.Selector != "" {
		msg += " [" + e.Selector + "]"
	}
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return ErrDependencyNotFound
}

// CommandError reports the exit status of a command run inside an environment.
type CommandError struct {
	Args []string
	Code int
}

func (e *CommandError) Error() string {
	name := ""
	if len(e.Args) > 0 {
		name = e.Args[0]
	}
	return fmt.Sprintf("%s: %s exited with status %d", ErrCommandFailed.Error(), name, e.Code)
}

func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}
