package app

import (
	"context"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
)

// AddChannel adds a channel, highest priority when first is set. The lock
// documents become stale until the next install.
func (a *App) AddChannel(ctx context.Context, channel string, first bool) (*reconciler.Report, error) {
	return a.edit(ctx, func(spec *domain.Spec) (*domain.Spec, error) {
		return domain.AddChannel(spec, channel, first)
	})
}

// RemoveChannel removes a channel.
func (a *App) RemoveChannel(ctx context.Context, channel string) (*reconciler.Report, error) {
	return a.edit(ctx, func(spec *domain.Spec) (*domain.Spec, error) {
		return domain.RemoveChannel(spec, channel)
	})
}

// AddPlatform adds a target platform.
func (a *App) AddPlatform(ctx context.Context, platform string) (*reconciler.Report, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	return a.edit(ctx, func(spec *domain.Spec) (*domain.Spec, error) {
		return domain.AddPlatform(spec, p)
	})
}

// RemovePlatform removes a target platform. Its lock file is deleted by the
// next lock or install.
func (a *App) RemovePlatform(ctx context.Context, platform string) (*reconciler.Report, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	return a.edit(ctx, func(spec *domain.Spec) (*domain.Spec, error) {
		return domain.RemovePlatform(spec, p)
	})
}

func (a *App) edit(ctx context.Context, fn reconciler.Edit) (*reconciler.Report, error) {
	s, err := a.begin(ctx, "plain", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()
	return s.rec.Mutate(ctx, s.project, fn, nil)
}
