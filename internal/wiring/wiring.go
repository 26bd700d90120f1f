// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/coman/internal/adapters/backend"
	_ "go.trai.ch/coman/internal/adapters/catalog"
	_ "go.trai.ch/coman/internal/adapters/config"
	_ "go.trai.ch/coman/internal/adapters/flock"
	_ "go.trai.ch/coman/internal/adapters/lockfile"
	_ "go.trai.ch/coman/internal/adapters/logger"
	_ "go.trai.ch/coman/internal/adapters/registry"
	_ "go.trai.ch/coman/internal/adapters/shell"
	_ "go.trai.ch/coman/internal/adapters/specfile"
	_ "go.trai.ch/coman/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/coman/internal/app"
)
