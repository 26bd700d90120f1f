package ports

import (
	"context"

	"go.trai.ch/coman/internal/core/domain"
)

// Executor runs a command inside a materialized environment.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes cmd attached to the current terminal and returns its exit error.
	Run(ctx context.Context, cmd domain.Command) error
}
