package flock_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/flock"
	"go.trai.ch/coman/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

func newLocker(t *testing.T) *flock.Locker {
	t.Helper()
	l := flock.New(t.TempDir())
	l.Poll = 5 * time.Millisecond
	return l
}

func TestPath_DistinctPerProject(t *testing.T) {
	l := newLocker(t)
	a := l.Path("/work/a/demo")
	b := l.Path("/work/b/demo")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, l.Path("/work/a/demo"))
	assert.Equal(t, domain.LocksDirName, filepath.Base(filepath.Dir(a)))
	assert.Contains(t, filepath.Base(a), "demo-")
}

func TestAcquire_Exclusive(t *testing.T) {
	l := newLocker(t)
	ctx := context.Background()
	project := t.TempDir()

	var inside, maxInside atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	for range 4 {
		g.Go(func() error {
			lock, err := l.Acquire(ctx, project)
			if err != nil {
				return err
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inside.Add(-1)
			return lock.Release()
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestAcquire_UnrelatedProjectsDoNotContend(t *testing.T) {
	l := newLocker(t)
	ctx := context.Background()

	a, err := l.Acquire(ctx, t.TempDir())
	require.NoError(t, err)
	defer func() { _ = a.Release() }()

	l.Timeout = 200 * time.Millisecond
	b, err := l.Acquire(ctx, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Release())
}

func TestAcquire_TimeoutAndCancel(t *testing.T) {
	l := newLocker(t)
	project := t.TempDir()

	held, err := l.Acquire(context.Background(), project)
	require.NoError(t, err)

	l.Timeout = 30 * time.Millisecond
	_, err = l.Acquire(context.Background(), project)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	l.Timeout = 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, project)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	require.NoError(t, held.Release())
	require.NoError(t, held.Release(), "double release is a no-op")

	again, err := l.Acquire(context.Background(), project)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquireEnv_SharedAcrossProjects(t *testing.T) {
	l := newLocker(t)
	ctx := context.Background()
	work := t.TempDir()

	// Two checkouts named app with the same spec resolve to one environment.
	first, err := l.Acquire(ctx, filepath.Join(work, "x", "app"))
	require.NoError(t, err)
	defer func() { _ = first.Release() }()
	second, err := l.Acquire(ctx, filepath.Join(work, "y", "app"))
	require.NoError(t, err)
	defer func() { _ = second.Release() }()

	shared := filepath.Join(work, "envs", "app-0123456789ab")
	assert.Equal(t, l.EnvPath(shared), l.EnvPath(shared+string(filepath.Separator)))
	assert.NotEqual(t, l.EnvPath(shared), l.Path(shared))

	held, err := l.AcquireEnv(ctx, shared)
	require.NoError(t, err)

	l.Timeout = 30 * time.Millisecond
	_, err = l.AcquireEnv(ctx, shared)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	other, err := l.AcquireEnv(ctx, filepath.Join(work, "envs", "app-ba9876543210"))
	require.NoError(t, err)
	require.NoError(t, other.Release())

	require.NoError(t, held.Release())
	again, err := l.AcquireEnv(ctx, shared)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquireEnv_Exclusive(t *testing.T) {
	l := newLocker(t)
	shared := filepath.Join(t.TempDir(), "app-0123456789ab")

	var inside, maxInside atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for range 4 {
		g.Go(func() error {
			lock, err := l.AcquireEnv(ctx, shared)
			if err != nil {
				return err
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inside.Add(-1)
			return lock.Release()
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside.Load())
}
