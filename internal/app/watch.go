package app

import (
	"context"
	"time"

	"go.trai.ch/coman/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	// Debounce is how long edits are coalesced. Zero uses the default window.
	Debounce   time.Duration
	OutputMode string
}

// Watch installs the project and reinstalls it whenever the content of the
// specification file changes, until ctx is cancelled. Failed installs are
// logged and the watch continues.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	s, err := a.begin(ctx, opts.OutputMode, true)
	if err != nil {
		return err
	}
	defer s.stop()

	w, err := a.watchers()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.Start(ctx, s.project.Dir, []string{domain.SpecFileName}); err != nil {
		return err
	}

	specPath := s.project.SpecPath()
	cache := watcher.NewContentCache()
	if err := cache.Prime(specPath); err != nil {
		return err
	}

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(window, func([]string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	go func() {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.reinstall(ctx, s)
	a.logger.Info("watching " + specPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			changed, err := cache.Changed(specPath)
			if err != nil {
				a.logger.Warn(err.Error())
				continue
			}
			if !changed {
				continue
			}
			a.logger.Info(domain.SpecFileName + " changed")
			a.reinstall(ctx, s)
		}
	}
}

func (a *App) reinstall(ctx context.Context, s *session) {
	if _, err := s.rec.Install(ctx, s.project, reconciler.InstallOptions{}); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}
