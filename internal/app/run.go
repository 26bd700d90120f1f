package app

import (
	"context"
	"runtime"

	"go.trai.ch/coman/internal/adapters/shell" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.trai.ch/zerr"
)

// RunOptions configuration for the Run method.
type RunOptions struct {
	Platform   string
	NoInstall  bool
	OutputMode string
}

// HookOptions configuration for the Hook method.
type HookOptions struct {
	Shell      string
	Platform   string
	NoInstall  bool
	OutputMode string
}

// Run executes args inside the project's environment, installing it first
// unless disabled. The command runs in the working directory.
func (a *App) Run(ctx context.Context, args []string, opts RunOptions) error {
	if len(args) == 0 {
		return domain.ErrNoCommand
	}

	cmd, err := a.activate(ctx, opts.Platform, opts.NoInstall, opts.OutputMode)
	if err != nil {
		return err
	}
	cmd.Args = args
	if cwd, err := a.getwd(); err == nil {
		cmd.Dir = cwd
	}
	return a.executor.Run(ctx, cmd)
}

// Hook renders the shell code activating the project's environment.
func (a *App) Hook(ctx context.Context, opts HookOptions) (string, error) {
	sh := opts.Shell
	if sh == "" {
		sh = shell.DetectShell(a.getenv, runtime.GOOS)
	}

	cmd, err := a.activate(ctx, opts.Platform, opts.NoInstall, opts.OutputMode)
	if err != nil {
		return "", err
	}
	return shell.Hook(sh, cmd)
}

// activate returns the activation of the requested platform. The session
// ends before returning so progress output is complete before a child
// process takes over the terminal.
func (a *App) activate(ctx context.Context, platform string, noInstall bool, outputMode string) (domain.Command, error) {
	s, err := a.begin(ctx, outputMode, true)
	if err != nil {
		return domain.Command{}, err
	}
	defer s.stop()

	if err := s.rec.Load(s.project); err != nil {
		return domain.Command{}, err
	}
	p, err := platformOrDefault(s.project, platform)
	if err != nil {
		return domain.Command{}, err
	}
	if !noInstall {
		opts := reconciler.InstallOptions{Platforms: []domain.Platform{p}}
		if _, err := s.rec.Install(ctx, s.project, opts); err != nil {
			return domain.Command{}, zerr.Wrap(err, "failed to prepare environment")
		}
	}
	return s.rec.Activation(s.project, p)
}
