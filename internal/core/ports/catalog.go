package ports

import (
	"context"

	"go.trai.ch/coman/internal/core/domain"
)

// Catalog records the environments installed on this machine.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type Catalog interface {
	// Record inserts or replaces the entry for entry.Path.
	Record(ctx context.Context, entry domain.CatalogEntry) error
	// List returns all entries, ordered by project then path.
	List(ctx context.Context) ([]domain.CatalogEntry, error)
	// ForProject returns the entries recorded for projectDir.
	ForProject(ctx context.Context, projectDir string) ([]domain.CatalogEntry, error)
	// Forget deletes the entry for path.
	Forget(ctx context.Context, path string) error
}
