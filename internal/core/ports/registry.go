package ports

import (
	"context"
	"io"

	"go.trai.ch/coman/internal/core/domain"
)

// Registry owns the materialized environments under the environments root.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Locate returns the environment path for an identity. It performs no I/O.
	Locate(envsRoot string, id domain.EnvIdentity) string

	// Exists reports whether an environment directory exists at path.
	Exists(path string) bool

	// Materialize installs set into path and writes the marker after success.
	// Installer output is streamed to out.
	Materialize(ctx context.Context, project *domain.Project, set domain.ResolvedSet, path string, out io.Writer) error

	// ReadMarker reads the marker of the environment at path.
	ReadMarker(path string) (domain.Marker, error)

	// Installed lists the packages recorded in the environment's conda-meta
	// directory, sorted by name. An environment without one lists nothing.
	Installed(path string) ([]domain.PackageInfo, error)

	// BinPaths returns the executable search path of the environment.
	BinPaths(path string, platform domain.Platform) []string

	// Remove deletes an environment owned by project.
	Remove(project *domain.Project, path string) error

	// Owned lists environments under the root whose marker names project.
	Owned(project *domain.Project) ([]string, error)
}
