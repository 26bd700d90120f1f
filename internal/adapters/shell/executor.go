// Package shell runs commands inside materialized environments and renders
// activation hooks for interactive shells.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor with os/exec. The child process shares
// the caller's standard streams so interactive programs keep working.
type Executor struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string
}

// NewExecutor creates an Executor attached to the given streams.
func NewExecutor(stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		environ: os.Environ,
	}
}

// Run executes cmd and waits for it. A non-zero exit is a *domain.CommandError.
func (e *Executor) Run(ctx context.Context, cmd domain.Command) error {
	if len(cmd.Args) == 0 {
		return domain.ErrNoCommand
	}

	name := cmd.Args[0]
	env := resolveEnvironment(e.environ(), cmd.PathPrepend, cmd.Env)

	executable := name
	if !filepath.IsAbs(name) {
		lp, err := lookPath(name, env)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "command not found"), "command", name)
		}
		executable = lp
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // user provided command
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env
	c.Stdin = e.stdin
	c.Stdout = e.stdout
	c.Stderr = e.stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.CommandError{Args: cmd.Args, Code: exitErr.ExitCode()}
		}
		return zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
	}
	return nil
}
