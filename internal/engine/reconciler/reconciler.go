// Package reconciler drives a project's specification, lock documents and
// materialized environments towards consistency.
package reconciler

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/coman/internal/engine/locker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Reconciler implements the per-platform state machine and the operations
// built on it. Mutating operations hold the project's advisory lock for their
// whole duration.
type Reconciler struct {
	specs    ports.SpecStore
	locks    ports.LockStore
	registry ports.Registry
	backend  ports.Backend
	guard    ports.ProjectLocker
	catalog  ports.Catalog
	logger   ports.Logger
	tracer   ports.Tracer
	locker   *locker.Locker

	flight singleflight.Group
}

// New creates a Reconciler. jobs bounds concurrent platform resolution.
func New(
	specs ports.SpecStore,
	locks ports.LockStore,
	registry ports.Registry,
	backend ports.Backend,
	guard ports.ProjectLocker,
	catalog ports.Catalog,
	logger ports.Logger,
	tracer ports.Tracer,
	jobs int,
) *Reconciler {
	return &Reconciler{
		specs:    specs,
		locks:    locks,
		registry: registry,
		backend:  backend,
		guard:    guard,
		catalog:  catalog,
		logger:   logger,
		tracer:   tracer,
		locker:   locker.New(backend, tracer, jobs),
	}
}

// Load reads the specification and lock documents into project.
func (r *Reconciler) Load(project *domain.Project) error {
	spec, err := r.specs.Load(project.SpecPath())
	if err != nil {
		return err
	}
	locks, err := r.locks.LoadAll(project.Dir)
	if err != nil {
		return err
	}
	project.Spec = spec
	project.Locks = locks
	return nil
}

// withLock runs fn while holding the project lock.
func (r *Reconciler) withLock(ctx context.Context, project *domain.Project, fn func() error) (err error) {
	unlock, err := r.guard.Acquire(ctx, project.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := unlock.Release(); releaseErr != nil {
			err = errors.Join(err, zerr.Wrap(releaseErr, "failed to release project lock"))
		}
	}()
	return fn()
}

// withEnvLock runs fn while holding the lock of the environment directory
// at path. Identical projects in different directories share that directory.
func (r *Reconciler) withEnvLock(ctx context.Context, path string, fn func() error) (err error) {
	unlock, err := r.guard.AcquireEnv(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := unlock.Release(); releaseErr != nil {
			err = errors.Join(err, zerr.Wrap(releaseErr, "failed to release environment lock"))
		}
	}()
	return fn()
}

func specExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
