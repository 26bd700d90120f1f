package ports

import "context"

// Unlocker releases a held lock.
type Unlocker interface {
	Release() error
}

// ProjectLocker serializes mutating operations on one project and on one
// environment directory. Two projects with identical names and specs share
// an environment, so holding the project lock alone is not enough.
//
//go:generate mockgen -source=project_lock.go -destination=mocks/mock_project_lock.go -package=mocks
type ProjectLocker interface {
	// Acquire blocks until the exclusive lock for projectDir is held or ctx is done.
	Acquire(ctx context.Context, projectDir string) (Unlocker, error)
	// AcquireEnv blocks until the exclusive lock for the environment at envPath is held.
	AcquireEnv(ctx context.Context, envPath string) (Unlocker, error)
}
