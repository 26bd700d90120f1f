package ports

import "go.trai.ch/coman/internal/core/domain"

// SpecStore loads and saves the project specification file.
//
//go:generate mockgen -source=spec_store.go -destination=mocks/mock_spec_store.go -package=mocks
type SpecStore interface {
	// Load parses the specification at path.
	// Unparseable or invalid content fails with domain.ErrSpecFormat.
	Load(path string) (*domain.Spec, error)

	// Save writes spec to path. Equal specifications produce byte-identical files.
	Save(spec *domain.Spec, path string) error
}
