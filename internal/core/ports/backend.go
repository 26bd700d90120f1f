package ports

import (
	"context"
	"io"

	"go.trai.ch/coman/internal/core/domain"
)

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks

// Resolver solves a dependency set for one platform.
type Resolver interface {
	// Solve returns the pinned package list for req.
	// Unsatisfiable constraints fail with a *domain.ResolutionError.
	Solve(ctx context.Context, req domain.SolveRequest) ([]domain.LockedPackage, error)
}

// Installer materializes a resolved package set into a prefix.
type Installer interface {
	// Install installs set into prefix, streaming progress to out.
	// Packages that fail are reported with a *domain.InstallPartialFailure.
	Install(ctx context.Context, prefix string, set domain.ResolvedSet, out io.Writer) error
}

// PackageIndex answers package searches.
type PackageIndex interface {
	// Search returns packages matching query, newest version first.
	Search(ctx context.Context, query string, channels []string, platform domain.Platform) ([]domain.PackageInfo, error)
}

// Backend is a package manager providing resolution, installation and search.
type Backend interface {
	Resolver
	Installer
	PackageIndex
	// Name identifies the backend in logs.
	Name() string
}
