package reconciler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/fake"
	"go.trai.ch/coman/internal/adapters/flock"
	"go.trai.ch/coman/internal/adapters/lockfile"
	"go.trai.ch/coman/internal/adapters/registry"
	"go.trai.ch/coman/internal/adapters/specfile"
	"go.trai.ch/coman/internal/adapters/telemetry"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/coman/internal/core/ports/mocks"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.uber.org/mock/gomock"
)

func initialized(t *testing.T, h *harness, platforms ...domain.Platform) *domain.Project {
	t.Helper()
	ctx := context.Background()
	p := h.project(t.TempDir())
	_, err := h.rec.Init(ctx, p, false)
	require.NoError(t, err)
	for _, pl := range platforms {
		_, err = h.rec.Mutate(ctx, p, func(s *domain.Spec) (*domain.Spec, error) {
			return domain.AddPlatform(s, pl)
		}, nil)
		require.NoError(t, err)
	}
	return p
}

func TestInit_RefusesExistingSpec(t *testing.T) {
	h := newHarness(t)
	p := initialized(t, h)

	_, err := h.rec.Init(context.Background(), p, false)
	assert.ErrorIs(t, err, domain.ErrSpecExists)

	_, err = h.rec.Init(context.Background(), p, true)
	assert.NoError(t, err)
}

func TestStatus_MissingSpec(t *testing.T) {
	h := newHarness(t)
	_, err := h.rec.Status(context.Background(), h.project(t.TempDir()))
	assert.ErrorIs(t, err, domain.ErrSpecNotFound)
}

func TestLock_ResolvesWithoutInstalling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h, domain.PlatformOSXArm64)
	_, err := h.rec.Mutate(ctx, p, addDeps(t, "requests"), nil)
	require.NoError(t, err)

	report, err := h.rec.Lock(ctx, p, false)
	require.NoError(t, err)
	assert.Equal(t, []domain.Platform{host, domain.PlatformOSXArm64}, report.Resolved)
	assert.Empty(t, report.Materialized)
	assert.Zero(t, h.backend.InstallCalls())
	assert.Len(t, lockFiles(t, p.Dir), 3, "two platform documents and the shared noarch document")

	report, err = h.rec.Lock(ctx, p, false)
	require.NoError(t, err)
	assert.Empty(t, report.Resolved)
	assert.Equal(t, 2, h.backend.TotalSolveCalls())

	report, err = h.rec.Lock(ctx, p, true)
	require.NoError(t, err)
	assert.Len(t, report.Resolved, 2)
	assert.Equal(t, 4, h.backend.TotalSolveCalls())
}

func TestLock_RemovesOrphanLockFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h, domain.PlatformWin64)
	_, err := h.rec.Lock(ctx, p, false)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(p.Dir, domain.LockFileName(domain.PlatformWin64)))

	_, err = h.rec.Mutate(ctx, p, func(s *domain.Spec) (*domain.Spec, error) {
		return domain.RemovePlatform(s, domain.PlatformWin64)
	}, nil)
	require.NoError(t, err)

	report, err := h.rec.Lock(ctx, p, false)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.LockFileName(domain.PlatformWin64)}, baseNames(report.OrphanLocks))
	assert.NoFileExists(t, filepath.Join(p.Dir, domain.LockFileName(domain.PlatformWin64)))
}

func baseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

func TestInstall_UnsatisfiableWritesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h)
	h.backend.MarkUnsatisfiable("numpy")

	_, err := h.rec.Mutate(ctx, p, addDeps(t, "numpy"), &reconciler.InstallOptions{})
	require.Error(t, err)
	var re *domain.ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, host, re.Platform)

	assert.Empty(t, lockFiles(t, p.Dir))
	assert.Zero(t, h.backend.InstallCalls())
	assert.Equal(t, domain.LockMissing, h.status(t, p)[host])
}

func TestInstall_Platforms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h, domain.PlatformOSXArm64)

	_, err := h.rec.Install(ctx, p, reconciler.InstallOptions{Platforms: []domain.Platform{domain.PlatformOSXArm64}})
	assert.ErrorIs(t, err, domain.ErrPlatformNotInstallable)

	_, err = h.rec.Install(ctx, p, reconciler.InstallOptions{Platforms: []domain.Platform{domain.PlatformWin64}})
	assert.ErrorIs(t, err, domain.ErrPlatformNotConfigured)

	assert.Zero(t, h.backend.TotalSolveCalls())
}

func TestDefaultPlatform(t *testing.T) {
	p := domain.NewProject("/work/demo", "/envs", domain.PlatformOSXArm64)

	p.Spec = &domain.Spec{Platforms: []domain.Platform{domain.PlatformLinux64, domain.PlatformOSXArm64}}
	got, err := reconciler.DefaultPlatform(p)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformOSXArm64, got)

	p.Spec = &domain.Spec{Platforms: []domain.Platform{domain.PlatformLinux64, domain.PlatformOSX64}}
	got, err = reconciler.DefaultPlatform(p)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformOSX64, got)

	p.Spec = &domain.Spec{Platforms: []domain.Platform{domain.PlatformWin64}}
	_, err = reconciler.DefaultPlatform(p)
	assert.ErrorIs(t, err, domain.ErrPlatformNotConfigured)
}

func TestMutate_NothingChangedStillInstalls(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h)
	_, err := h.rec.Mutate(ctx, p, addDeps(t, "zlib"), nil)
	require.NoError(t, err)

	report, err := h.rec.Mutate(ctx, p, addDeps(t, "zlib"), &reconciler.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Platform{host}, report.Materialized)
}

func TestMutate_DuplicateLeavesSpecUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h)
	_, err := h.rec.Mutate(ctx, p, addDeps(t, "numpy <2"), nil)
	require.NoError(t, err)
	before, err := os.ReadFile(p.SpecPath())
	require.NoError(t, err)

	_, err = h.rec.Mutate(ctx, p, addDeps(t, "zlib", "numpy >=2"), nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateDependency)

	after, err := os.ReadFile(p.SpecPath())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestPin(t *testing.T) {
	h := newHarness(t)
	deps := []domain.Dependency{
		{Name: "numpy"},
		{Name: "python", Constraint: domain.MustParseConstraint("3.11.*")},
	}

	got, err := h.rec.Pin(context.Background(), []string{"conda-forge"}, host, deps)
	require.NoError(t, err)
	assert.Equal(t, ">=2.0.0", got[0].Constraint.String())
	assert.Equal(t, "3.11.*", got[1].Constraint.String())

	_, err = h.rec.Pin(context.Background(), []string{"conda-forge"}, host, []domain.Dependency{{Name: "nump"}})
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestUninstallAndPrune(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h)

	_, err := h.rec.Mutate(ctx, p, addDeps(t, "numpy"), &reconciler.InstallOptions{})
	require.NoError(t, err)
	first := h.registry.Locate(p.EnvsRoot, p.Identity(host))

	_, err = h.rec.Mutate(ctx, p, addDeps(t, "zlib"), &reconciler.InstallOptions{})
	require.NoError(t, err)
	second := h.registry.Locate(p.EnvsRoot, p.Identity(host))
	require.NotEqual(t, first, second)
	require.DirExists(t, first)

	neighbour := initialized(t, h)
	_, err = h.rec.Install(ctx, neighbour, reconciler.InstallOptions{})
	require.NoError(t, err)

	pruned, err := h.rec.Prune(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, pruned)
	assert.NoDirExists(t, first)
	assert.DirExists(t, second)
	assert.DirExists(t, h.registry.Locate(neighbour.EnvsRoot, neighbour.Identity(host)))

	removed, err := h.rec.Uninstall(ctx, p, "")
	require.NoError(t, err)
	assert.Equal(t, second, removed)
	assert.NoDirExists(t, second)
	assert.Equal(t, domain.EnvMissing, h.status(t, p)[host])

	entries, err := h.catalog.ForProject(ctx, p.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err = h.rec.Uninstall(ctx, p, "")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestActivation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := initialized(t, h)

	require.NoError(t, h.rec.Load(p))
	_, err := h.rec.Activation(p, host)
	assert.ErrorIs(t, err, domain.ErrEnvironmentNotInstalled)

	_, err = h.rec.Install(ctx, p, reconciler.InstallOptions{})
	require.NoError(t, err)

	path := h.registry.Locate(p.EnvsRoot, p.Identity(host))
	cmd, err := h.rec.Activation(p, host)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(path, "bin")}, cmd.PathPrepend)
	assert.Equal(t, p.Dir, cmd.Dir)
	assert.Equal(t, []string{
		"CONDA_PREFIX=" + path,
		"CONDA_DEFAULT_ENV=" + filepath.Base(path),
		"COMAN_ACTIVE=1",
	}, cmd.Env)
}

func TestInstall_CatalogFailureIsOnlyWarned(t *testing.T) {
	ctrl := gomock.NewController(t)
	envsRoot := t.TempDir()
	backend := fake.New()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).Times(1)
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))

	rec := reconciler.New(specfile.NewStore(), lockfile.NewStore(), registry.New(backend), backend,
		flock.New(envsRoot), cat, logger, telemetry.NewNoOpTracer(), 1)
	p := domain.NewProject(t.TempDir(), envsRoot, host)
	_, err := rec.Init(context.Background(), p, false)
	require.NoError(t, err)

	report, err := rec.Install(context.Background(), p, reconciler.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Platform{host}, report.Materialized)
}

func TestInstall_EmitsPlanAndSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	envsRoot := t.TempDir()
	backend := fake.New()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(b []byte) (int, error) { return len(b), nil }).AnyTimes()

	var started []string
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			started = append(started, name)
			return ctx, span
		}).AnyTimes()
	tracer.EXPECT().EmitPlan(gomock.Any(), []string{"resolve " + string(host), "materialize " + string(host)})

	rec := reconciler.New(specfile.NewStore(), lockfile.NewStore(), registry.New(backend), backend,
		flock.New(envsRoot), cat, logger, tracer, 1)
	p := domain.NewProject(t.TempDir(), envsRoot, host)
	require.NoError(t, specfile.NewStore().Save(&domain.Spec{
		Channels:     []string{"conda-forge"},
		Platforms:    []domain.Platform{host},
		Dependencies: []domain.Dependency{{Name: "zlib"}},
	}, p.SpecPath()))

	_, err := rec.Install(context.Background(), p, reconciler.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"resolve " + string(host), "materialize " + string(host)}, started)
}
