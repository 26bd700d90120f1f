package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/adapters/backend"
	"go.trai.ch/coman/internal/core/ports"
)

// NodeID is the unique identifier for the environment registry Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{backend.NodeID},
		Run: func(ctx context.Context) (ports.Registry, error) {
			b, err := graft.Dep[ports.Backend](ctx)
			if err != nil {
				return nil, err
			}
			return New(b), nil
		},
	})
}
