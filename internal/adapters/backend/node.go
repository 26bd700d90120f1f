// Package backend selects the package backend named by the configuration.
package backend

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/adapters/conda"
	"go.trai.ch/coman/internal/adapters/config"
	"go.trai.ch/coman/internal/adapters/fake"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
)

// NodeID is the unique identifier for the package backend Graft node.
const NodeID graft.ID = "adapter.backend"

func init() {
	graft.Register(graft.Node[ports.Backend]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Backend, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := loader.Settings()
			if err != nil {
				return nil, err
			}
			return Select(settings), nil
		},
	})
}

// Select returns the backend for settings.
func Select(settings *domain.Settings) ports.Backend {
	if settings.Backend == config.BackendFake {
		return fake.New()
	}
	return conda.New(settings.Backend, conda.WithPkgsDirs(settings.PkgsDirs))
}
