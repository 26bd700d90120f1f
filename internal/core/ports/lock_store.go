package ports

import "go.trai.ch/coman/internal/core/domain"

// LockStore persists the per-platform lock documents of a project.
//
//go:generate mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// LoadAll reads every lock document in dir. Missing files are not an error.
	LoadAll(dir string) (*domain.LockSet, error)

	// Save writes every document of set to dir and removes a stale shared noarch file.
	Save(dir string, set *domain.LockSet) error

	// Prune removes lock files for platforms not in keep and returns their paths.
	Prune(dir string, keep []domain.Platform) ([]string, error)
}
