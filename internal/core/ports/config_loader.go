package ports

import "go.trai.ch/coman/internal/core/domain"

// ConfigLoader resolves user settings and locates projects.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Settings returns the merged configuration from file and environment.
	Settings() (*domain.Settings, error)

	// FindProject walks up from start to the directory holding the specification file.
	FindProject(start string) (string, error)
}
