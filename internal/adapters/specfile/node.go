package specfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/core/ports"
)

// NodeID is the unique identifier for the specification store Graft node.
const NodeID graft.ID = "adapter.spec_store"

func init() {
	graft.Register(graft.Node[ports.SpecStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SpecStore, error) {
			return NewStore(), nil
		},
	})
}
