package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/adapters/config"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
)

// NodeID is the unique identifier for the environment catalog Graft node.
const NodeID graft.ID = "adapter.catalog"

func init() {
	graft.Register(graft.Node[ports.Catalog]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Catalog, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := loader.Settings()
			if err != nil {
				return nil, err
			}
			return New(domain.CatalogPath(settings.EnvsRoot)), nil
		},
	})
}
