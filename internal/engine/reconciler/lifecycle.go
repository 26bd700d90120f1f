package reconciler

import (
	"context"
	"path/filepath"
	"slices"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Init writes the default specification for the host platform. An existing
// file is only replaced when force is set. Nothing is resolved or installed.
func (r *Reconciler) Init(ctx context.Context, project *domain.Project, force bool) (*domain.Spec, error) {
	var spec *domain.Spec
	err := r.withLock(ctx, project, func() error {
		path := project.SpecPath()
		if specExists(path) && !force {
			return zerr.With(zerr.Wrap(domain.ErrSpecExists, "use --force to overwrite"), "path", path)
		}
		spec = domain.DefaultSpec(project.Host)
		if err := r.specs.Save(spec, path); err != nil {
			return err
		}
		r.logger.Info("created " + path)
		return nil
	})
	return spec, err
}

// Uninstall removes the current environment of platform p. An empty p
// selects the default platform. It returns the removed path, or "" when the
// environment was not materialized.
func (r *Reconciler) Uninstall(ctx context.Context, project *domain.Project, p domain.Platform) (string, error) {
	var removed string
	err := r.withLock(ctx, project, func() error {
		if err := r.Load(project); err != nil {
			return err
		}
		if p == "" {
			var err error
			if p, err = DefaultPlatform(project); err != nil {
				return err
			}
		}
		if !project.Spec.HasPlatform(p) {
			return zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "uninstall"), "platform", string(p))
		}

		path := r.registry.Locate(project.EnvsRoot, project.Identity(p))
		if !r.registry.Exists(path) {
			return nil
		}
		if err := r.removeEnv(ctx, project, path); err != nil {
			return err
		}
		r.forget(ctx, path)
		r.logger.Info("removed " + path)
		removed = path
		return nil
	})
	return removed, err
}

// Prune removes environments of project that no configured platform uses
// any longer. Other projects' environments are never touched.
func (r *Reconciler) Prune(ctx context.Context, project *domain.Project) ([]string, error) {
	var pruned []string
	err := r.withLock(ctx, project, func() error {
		if err := r.Load(project); err != nil {
			return err
		}
		var err error
		pruned, err = r.pruneLocked(ctx, project)
		return err
	})
	return pruned, err
}

func (r *Reconciler) pruneLocked(ctx context.Context, project *domain.Project) ([]string, error) {
	current := make([]string, 0, len(project.Spec.Platforms))
	for _, p := range project.Spec.Platforms {
		current = append(current, filepath.Clean(r.registry.Locate(project.EnvsRoot, project.Identity(p))))
	}

	owned, err := r.registry.Owned(project)
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, path := range owned {
		if slices.Contains(current, filepath.Clean(path)) {
			continue
		}
		if err := r.removeEnv(ctx, project, path); err != nil {
			return pruned, err
		}
		r.forget(ctx, path)
		r.logger.Info("pruned " + path)
		pruned = append(pruned, path)
	}
	return pruned, nil
}

func (r *Reconciler) removeEnv(ctx context.Context, project *domain.Project, path string) error {
	return r.withEnvLock(ctx, path, func() error {
		return r.registry.Remove(project, path)
	})
}
