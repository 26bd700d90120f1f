package registry_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/registry"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newProject(t *testing.T) *domain.Project {
	t.Helper()
	p := domain.NewProject(filepath.Join(t.TempDir(), "demo"), t.TempDir(), domain.PlatformLinux64)
	p.Spec = domain.DefaultSpec(domain.PlatformLinux64)
	return p
}

func resolved(p domain.Platform) domain.ResolvedSet {
	pkgs := []domain.LockedPackage{{Name: "python", Version: "3.11.4", Subdir: string(p)}}
	return domain.ResolvedSet{Platform: p, Packages: pkgs, ContentHash: domain.ContentHash(p, pkgs)}
}

func installInto(_ context.Context, prefix string, _ domain.ResolvedSet, _ io.Writer) error {
	return os.MkdirAll(filepath.Join(prefix, "bin"), 0o750)
}

func TestMaterialize_WritesMarkerAfterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	installer := mocks.NewMockInstaller(ctrl)
	reg := registry.New(installer)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reg.SetClock(func() time.Time { return fixed })

	project := newProject(t)
	set := resolved(domain.PlatformLinux64)
	path := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformLinux64))

	installer.EXPECT().Install(gomock.Any(), path, set, io.Discard).DoAndReturn(installInto)

	require.NoError(t, reg.Materialize(context.Background(), project, set, path, io.Discard))
	assert.True(t, reg.Exists(path))

	m, err := reg.ReadMarker(path)
	require.NoError(t, err)
	assert.True(t, m.Present)
	assert.Equal(t, set.ContentHash, m.LockContentHash)
	assert.Equal(t, domain.PlatformLinux64, m.Platform)
	assert.Equal(t, project.Dir, m.ProjectDir)
	assert.Equal(t, fixed, m.InstalledAt)
}

func TestMaterialize_FailureLeavesNoMarker(t *testing.T) {
	ctrl := gomock.NewController(t)
	installer := mocks.NewMockInstaller(ctrl)
	reg := registry.New(installer)

	project := newProject(t)
	set := resolved(domain.PlatformLinux64)
	path := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformLinux64))

	installer.EXPECT().Install(gomock.Any(), path, set, gomock.Any()).DoAndReturn(installInto)
	require.NoError(t, reg.Materialize(context.Background(), project, set, path, io.Discard))

	partial := &domain.InstallPartialFailure{
		Platform: domain.PlatformLinux64,
		Prefix:   path,
		Failed:   []domain.FailedPackage{{Name: "python", Reason: "checksum mismatch"}},
	}
	installer.EXPECT().Install(gomock.Any(), path, set, gomock.Any()).Return(partial)

	err := reg.Materialize(context.Background(), project, set, path, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInstallPartial)

	m, err := reg.ReadMarker(path)
	require.NoError(t, err)
	assert.False(t, m.Present, "the old marker is cleared before reinstalling")
}

func TestMaterialize_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	installer := mocks.NewMockInstaller(ctrl)
	reg := registry.New(installer)

	project := newProject(t)
	set := resolved(domain.PlatformLinux64)
	path := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformLinux64))

	ctx, cancel := context.WithCancel(context.Background())
	installer.EXPECT().Install(gomock.Any(), path, set, gomock.Any()).
		DoAndReturn(func(ctx context.Context, prefix string, s domain.ResolvedSet, out io.Writer) error {
			cancel()
			return installInto(ctx, prefix, s, out)
		})

	err := reg.Materialize(ctx, project, set, path, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)

	m, _ := reg.ReadMarker(path)
	assert.False(t, m.Present)
}

func TestMaterialize_Refusals(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := registry.New(mocks.NewMockInstaller(ctrl))
	project := newProject(t)

	t.Run("foreign path", func(t *testing.T) {
		err := reg.Materialize(context.Background(), project, resolved(domain.PlatformLinux64),
			filepath.Join(project.EnvsRoot, "other-000000000000"), io.Discard)
		assert.ErrorIs(t, err, domain.ErrNotOwned)
	})

	t.Run("platform the host cannot run", func(t *testing.T) {
		path := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformWin64))
		err := reg.Materialize(context.Background(), project, resolved(domain.PlatformWin64), path, io.Discard)
		assert.ErrorIs(t, err, domain.ErrPlatformNotInstallable)
	})
}

func TestReadMarker_CorruptIsAbsent(t *testing.T) {
	reg := registry.New(nil)
	dir := t.TempDir()

	m, err := reg.ReadMarker(dir)
	require.NoError(t, err)
	assert.False(t, m.Present)

	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.MarkerFileName), []byte("{not json"), 0o600))
	m, err = reg.ReadMarker(dir)
	require.NoError(t, err)
	assert.False(t, m.Present)
}

func TestBinPaths(t *testing.T) {
	reg := registry.New(nil)
	assert.Equal(t, []string{filepath.Join("/env", "bin")}, reg.BinPaths("/env", domain.PlatformOSXArm64))

	win := reg.BinPaths("/env", domain.PlatformWin64)
	assert.Equal(t, "/env", win[0])
	assert.Contains(t, win, filepath.Join("/env", "Library", "bin"))
	assert.Contains(t, win, filepath.Join("/env", "Scripts"))
}

func TestRemoveAndOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	installer := mocks.NewMockInstaller(ctrl)
	installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(installInto).AnyTimes()
	reg := registry.New(installer)
	ctx := context.Background()

	project := newProject(t)
	current := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformLinux64))
	require.NoError(t, reg.Materialize(ctx, project, resolved(domain.PlatformLinux64), current, io.Discard))

	// An older environment of the same project, from a different spec.
	old := project.Spec
	project.Spec = &domain.Spec{Channels: []string{"bioconda"}, Platforms: old.Platforms}
	previous := reg.Locate(project.EnvsRoot, project.Identity(domain.PlatformLinux64))
	require.NoError(t, reg.Materialize(ctx, project, resolved(domain.PlatformLinux64), previous, io.Discard))
	project.Spec = old

	// Same basename, different project directory.
	twin := domain.NewProject(filepath.Join(t.TempDir(), "demo"), project.EnvsRoot, domain.PlatformLinux64)
	twin.Spec = &domain.Spec{Channels: []string{"defaults"}, Platforms: old.Platforms}
	foreign := reg.Locate(twin.EnvsRoot, twin.Identity(domain.PlatformLinux64))
	require.NoError(t, reg.Materialize(ctx, twin, resolved(domain.PlatformLinux64), foreign, io.Discard))

	owned, err := reg.Owned(project)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{current, previous}, owned)

	err = reg.Remove(project, foreign)
	assert.ErrorIs(t, err, domain.ErrNotOwned)
	assert.DirExists(t, foreign)

	err = reg.Remove(project, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNotOwned)

	require.NoError(t, reg.Remove(project, previous))
	assert.NoDirExists(t, previous)
	assert.DirExists(t, current)
}

func TestOwned_MissingRoot(t *testing.T) {
	project := domain.NewProject("/src/demo", filepath.Join(t.TempDir(), "nope"), domain.PlatformLinux64)
	owned, err := registry.New(nil).Owned(project)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestInstalled_ReadsPackageRecords(t *testing.T) {
	prefix := t.TempDir()
	meta := filepath.Join(prefix, "conda-meta")
	require.NoError(t, os.MkdirAll(meta, 0o750))

	records := map[string]string{
		"python-3.11.4-h0_0.json": `{"name": "python", "version": "3.11.4", "build": "h0_0",
			"channel": "https://conda.anaconda.org/conda-forge/linux-64", "subdir": "linux-64"}`,
		"six-1.16.0-pyh_0.json": `{"name": "six", "version": "1.16.0", "build": "pyh_0",
			"url": "https://conda.anaconda.org/bioconda/noarch/six-1.16.0-pyh_0.conda"}`,
		"history.json": `not json`,
		"empty.json":   `{}`,
	}
	for name, body := range records {
		require.NoError(t, os.WriteFile(filepath.Join(meta, name), []byte(body), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(meta, "history"), []byte("==> 2026"), 0o600))

	pkgs, err := registry.New(nil).Installed(prefix)
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageInfo{
		{Name: "python", Version: "3.11.4", Build: "h0_0", Channel: "conda-forge", Subdir: "linux-64"},
		{Name: "six", Version: "1.16.0", Build: "pyh_0", Channel: "bioconda"},
	}, pkgs)
}

func TestInstalled_NoEnvironment(t *testing.T) {
	pkgs, err := registry.New(nil).Installed(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}
