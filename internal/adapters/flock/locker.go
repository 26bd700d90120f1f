// Package flock serializes coman processes working on the same project, or
// on the same environment directory, with advisory file locks under the
// environments root.
package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPollInterval is how often a busy lock is retried.
const DefaultPollInterval = 100 * time.Millisecond

// Locker implements ports.ProjectLocker.
type Locker struct {
	root string
	// Poll is the retry interval while another process holds the lock.
	Poll time.Duration
	// Timeout bounds the wait. Zero waits until the context is done.
	Timeout time.Duration
}

// New creates a Locker keeping its lock files under envsRoot/.locks.
func New(envsRoot string) *Locker {
	return &Locker{root: domain.ProjectLocksPath(envsRoot), Poll: DefaultPollInterval}
}

// Path returns the lock file guarding projectDir. Projects with the same
// basename in different directories get different files.
func (l *Locker) Path(projectDir string) string {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		abs = projectDir
	}
	base := domain.ProjectBasename(abs)
	return filepath.Join(l.root, fmt.Sprintf("%s-%016x.lock", base, xxhash.Sum64String(abs)))
}

// EnvPath returns the lock file guarding the environment directory envPath.
func (l *Locker) EnvPath(envPath string) string {
	abs, err := filepath.Abs(envPath)
	if err != nil {
		abs = envPath
	}
	return filepath.Join(l.root, fmt.Sprintf("env-%s-%016x.lock", filepath.Base(abs), xxhash.Sum64String(abs)))
}

// Acquire blocks until the project lock is held, ctx is done or the timeout
// elapses.
func (l *Locker) Acquire(ctx context.Context, projectDir string) (ports.Unlocker, error) {
	return l.acquire(ctx, l.Path(projectDir), "project", projectDir)
}

// AcquireEnv is Acquire for an environment directory. Projects resolving to
// the same directory contend for the same file.
func (l *Locker) AcquireEnv(ctx context.Context, envPath string) (ports.Unlocker, error) {
	return l.acquire(ctx, l.EnvPath(envPath), "env", envPath)
}

func (l *Locker) acquire(ctx context.Context, path, kind, subject string) (ports.Unlocker, error) {
	if err := os.MkdirAll(l.root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock directory"), "dir", l.root)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	poll := l.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		lock, busy, err := tryLock(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to lock "+kind), "path", path)
		}
		if !busy {
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrLockTimeout, ctx.Err().Error()),
				kind, subject), "lock", path)
		case <-ticker.C:
		}
	}
}

// Lock is a held project lock.
type Lock struct {
	once    sync.Once
	release func() error
	err     error
}

// Release gives the lock up. Calling it again is a no-op.
func (l *Lock) Release() error {
	l.once.Do(func() {
		l.err = l.release()
	})
	return l.err
}

func pidContent() []byte {
	return []byte(strconv.Itoa(os.Getpid()) + "\n")
}
