package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.trai.ch/zerr"
)

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	Platforms  []string
	Prune      bool
	Relock     bool
	Show       bool
	OutputMode string
}

// LockOptions configuration for the Lock method.
type LockOptions struct {
	Relock     bool
	OutputMode string
}

// AddOptions configuration for the Add method.
type AddOptions struct {
	Replace    bool
	Selector   string
	NoInstall  bool
	Show       bool
	OutputMode string
}

// RemoveOptions configuration for the Remove method.
type RemoveOptions struct {
	Selector   string
	NoInstall  bool
	Show       bool
	OutputMode string
}

// Init creates the default specification in the working directory.
func (a *App) Init(ctx context.Context, force bool) (*domain.Spec, error) {
	s, err := a.begin(ctx, "", false)
	if err != nil {
		return nil, err
	}
	defer s.stop()
	return s.rec.Init(ctx, s.project, force)
}

// Install brings the requested platforms of the project to InSync.
func (a *App) Install(ctx context.Context, opts InstallOptions) (*reconciler.Report, error) {
	s, err := a.begin(ctx, opts.OutputMode, true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	platforms, err := parsePlatforms(opts.Platforms)
	if err != nil {
		return nil, err
	}
	return s.rec.Install(ctx, s.project, reconciler.InstallOptions{
		Platforms: platforms,
		Relock:    opts.Relock,
		Prune:     opts.Prune,
		Show:      opts.Show,
	})
}

// Lock refreshes the lock documents without installing.
func (a *App) Lock(ctx context.Context, opts LockOptions) (*reconciler.Report, error) {
	s, err := a.begin(ctx, opts.OutputMode, true)
	if err != nil {
		return nil, err
	}
	defer s.stop()
	return s.rec.Lock(ctx, s.project, opts.Relock)
}

// Add declares dependencies and, unless disabled, installs them. Entries
// given by bare name are pinned to the latest version available.
func (a *App) Add(ctx context.Context, entries []string, opts AddOptions) (*reconciler.Report, error) {
	if !domain.ValidSelector(opts.Selector) {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownSelector, "add"), "selector", opts.Selector)
	}
	deps := make([]domain.Dependency, 0, len(entries))
	for _, e := range entries {
		dep, err := domain.ParseDependency(e)
		if err != nil {
			return nil, err
		}
		dep.Selector = opts.Selector
		deps = append(deps, dep)
	}

	s, err := a.begin(ctx, opts.OutputMode, true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	if err := s.rec.Load(s.project); err != nil {
		return nil, err
	}
	platform, err := pinPlatform(s.project, opts.Selector)
	if err != nil {
		return nil, err
	}
	deps, err = s.rec.Pin(ctx, s.project.Spec.Channels, platform, deps)
	if err != nil {
		return nil, err
	}

	edit := func(spec *domain.Spec) (*domain.Spec, error) {
		out := spec
		changed := false
		for _, dep := range deps {
			next, err := domain.AddDependency(out, dep, opts.Replace)
			if errors.Is(err, domain.ErrNothingChanged) {
				a.logger.Info(err.Error())
				continue
			}
			if err != nil {
				return nil, err
			}
			out, changed = next, true
			a.logger.Info("added " + dep.String())
		}
		if !changed {
			return nil, zerr.Wrap(domain.ErrNothingChanged, "specification unchanged")
		}
		return out, nil
	}
	return s.rec.Mutate(ctx, s.project, edit, installFor(opts.NoInstall, opts.Show))
}

// Remove drops dependencies and, unless disabled, reconciles the environment.
func (a *App) Remove(ctx context.Context, names []string, opts RemoveOptions) (*reconciler.Report, error) {
	s, err := a.begin(ctx, opts.OutputMode, true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	edit := func(spec *domain.Spec) (*domain.Spec, error) {
		out := spec
		for _, name := range names {
			next, err := domain.RemoveDependency(out, name, opts.Selector)
			if err != nil {
				return nil, err
			}
			out = next
			a.logger.Info("removed " + name)
		}
		return out, nil
	}
	return s.rec.Mutate(ctx, s.project, edit, installFor(opts.NoInstall, opts.Show))
}

// Uninstall removes the project's environment for platform, or the default
// platform when empty.
func (a *App) Uninstall(ctx context.Context, platform string) (string, error) {
	s, err := a.begin(ctx, "", true)
	if err != nil {
		return "", err
	}
	defer s.stop()

	var p domain.Platform
	if platform != "" {
		if p, err = domain.ParsePlatform(platform); err != nil {
			return "", err
		}
	}
	return s.rec.Uninstall(ctx, s.project, p)
}

// Prune removes environments of the project that are no longer current.
func (a *App) Prune(ctx context.Context) ([]string, error) {
	s, err := a.begin(ctx, "", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()
	return s.rec.Prune(ctx, s.project)
}

func installFor(noInstall, show bool) *reconciler.InstallOptions {
	if noInstall {
		return nil
	}
	return &reconciler.InstallOptions{Show: show}
}

func parsePlatforms(names []string) ([]domain.Platform, error) {
	out := make([]domain.Platform, 0, len(names))
	for _, n := range names {
		p, err := domain.ParsePlatform(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// pinPlatform is the platform whose package index pins new dependencies:
// the default platform, or the first configured platform the selector
// applies to.
func pinPlatform(project *domain.Project, selector string) (domain.Platform, error) {
	if selector == "" {
		if p, err := reconciler.DefaultPlatform(project); err == nil {
			return p, nil
		}
		return project.Spec.Platforms[0], nil
	}
	for _, p := range project.Spec.Platforms {
		if domain.SelectorApplies(selector, p) {
			return p, nil
		}
	}
	return "", zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, fmt.Sprintf("no configured platform matches [%s]", selector)),
		"platforms", fmt.Sprint(project.Spec.Platforms))
}
