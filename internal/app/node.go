package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/coman/internal/adapters/backend"  //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/catalog"  //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/flock"    //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/lockfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/registry" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/shell"    //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/specfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			specfile.NodeID,
			lockfile.NodeID,
			registry.NodeID,
			backend.NodeID,
			flock.NodeID,
			catalog.NodeID,
			shell.NodeID,
			logger.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	specs, err := graft.Dep[ports.SpecStore](ctx)
	if err != nil {
		return nil, err
	}
	locks, err := graft.Dep[ports.LockStore](ctx)
	if err != nil {
		return nil, err
	}
	reg, err := graft.Dep[ports.Registry](ctx)
	if err != nil {
		return nil, err
	}
	be, err := graft.Dep[ports.Backend](ctx)
	if err != nil {
		return nil, err
	}
	guard, err := graft.Dep[ports.ProjectLocker](ctx)
	if err != nil {
		return nil, err
	}
	cat, err := graft.Dep[ports.Catalog](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	watchers, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, specs, locks, reg, be, guard, cat, executor, log, watchers), nil
}
