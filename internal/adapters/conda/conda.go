// Package conda implements the package backend by shelling out to
// micromamba, mamba or conda.
package conda

import (
	"context"
	"os"
	"os/exec"
	"sync"
)

// Backend implements ports.Backend on top of a conda-compatible executable.
// The executable is located lazily, so commands that never resolve or
// install work without one.
type Backend struct {
	preferred string
	pkgsDirs  string
	getenv    func(string) string
	lookPath  func(string) (string, error)

	once sync.Once
	exe  Executable
	err  error
}

// Option configures a Backend.
type Option func(*Backend)

// WithExecutable skips discovery and uses path.
func WithExecutable(path string) Option {
	return func(b *Backend) {
		b.once.Do(func() {
			b.exe = Executable{Path: path, Flavor: FlavorOf(path)}
		})
	}
}

// WithPkgsDirs sets the package cache handed to the executable.
func WithPkgsDirs(dirs string) Option {
	return func(b *Backend) {
		b.pkgsDirs = dirs
	}
}

// New creates a backend preferring the given flavor ("auto" tries all).
func New(preferred string, opts ...Option) *Backend {
	b := &Backend{
		preferred: preferred,
		getenv:    os.Getenv,
		lookPath:  exec.LookPath,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name identifies the backend flavor.
func (b *Backend) Name() string {
	exe, err := b.executable()
	if err != nil {
		return b.preferred
	}
	return string(exe.Flavor)
}

func (b *Backend) executable() (Executable, error) {
	b.once.Do(func() {
		b.exe, b.err = Discover(b.preferred, b.getenv, b.lookPath)
	})
	return b.exe, b.err
}

// command builds an invocation of the package manager with env overrides.
func (b *Backend) command(ctx context.Context, env map[string]string, args ...string) (*exec.Cmd, Executable, error) {
	exe, err := b.executable()
	if err != nil {
		return nil, Executable{}, err
	}
	if b.pkgsDirs != "" {
		env["CONDA_PKGS_DIRS"] = b.pkgsDirs
	}
	cmd := exec.CommandContext(ctx, exe.Path, args...) //nolint:gosec // executable located by discovery
	cmd.Env = commandEnv(os.Environ(), env)
	return cmd, exe, nil
}
