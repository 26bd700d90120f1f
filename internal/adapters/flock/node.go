package flock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/adapters/config"
	"go.trai.ch/coman/internal/core/ports"
)

// NodeID is the unique identifier for the project locker Graft node.
const NodeID graft.ID = "adapter.project_locker"

func init() {
	graft.Register(graft.Node[ports.ProjectLocker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ProjectLocker, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := loader.Settings()
			if err != nil {
				return nil, err
			}
			return New(settings.EnvsRoot), nil
		},
	})
}
