package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/cmd/coman/commands"
	"go.trai.ch/coman/internal/app"
	"go.trai.ch/coman/internal/build"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
)

// mockApp records the options each command passes to the application.
type mockApp struct {
	commands.Application

	addFunc     func(entries []string, opts app.AddOptions) (*reconciler.Report, error)
	removeFunc  func(names []string, opts app.RemoveOptions) (*reconciler.Report, error)
	installFunc func(opts app.InstallOptions) (*reconciler.Report, error)
	lockFunc    func(opts app.LockOptions) (*reconciler.Report, error)
	statusFunc  func() ([]domain.PlatformStatus, error)
	infoFunc    func(platform string) (*app.Info, error)
	specFunc    func() (*domain.Spec, error)
	listFunc    func(opts app.InstalledOptions) ([]domain.PackageInfo, error)
	runFunc     func(args []string, opts app.RunOptions) error
	hookFunc    func(opts app.HookOptions) (string, error)
	channelFunc func(channel string, first bool) (*reconciler.Report, error)
}

func (m *mockApp) Add(_ context.Context, entries []string, opts app.AddOptions) (*reconciler.Report, error) {
	return m.addFunc(entries, opts)
}

func (m *mockApp) Remove(_ context.Context, names []string, opts app.RemoveOptions) (*reconciler.Report, error) {
	return m.removeFunc(names, opts)
}

func (m *mockApp) Install(_ context.Context, opts app.InstallOptions) (*reconciler.Report, error) {
	return m.installFunc(opts)
}

func (m *mockApp) Lock(_ context.Context, opts app.LockOptions) (*reconciler.Report, error) {
	return m.lockFunc(opts)
}

func (m *mockApp) Status(context.Context) ([]domain.PlatformStatus, error) {
	return m.statusFunc()
}

func (m *mockApp) Info(_ context.Context, platform string) (*app.Info, error) {
	return m.infoFunc(platform)
}

func (m *mockApp) Spec(context.Context) (*domain.Spec, error) {
	return m.specFunc()
}

func (m *mockApp) Installed(_ context.Context, opts app.InstalledOptions) ([]domain.PackageInfo, error) {
	return m.listFunc(opts)
}

func (m *mockApp) Run(_ context.Context, args []string, opts app.RunOptions) error {
	return m.runFunc(args, opts)
}

func (m *mockApp) Hook(_ context.Context, opts app.HookOptions) (string, error) {
	return m.hookFunc(opts)
}

func (m *mockApp) AddChannel(_ context.Context, channel string, first bool) (*reconciler.Report, error) {
	return m.channelFunc(channel, first)
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Add(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var gotEntries []string
		var gotOpts app.AddOptions
		m := &mockApp{addFunc: func(entries []string, opts app.AddOptions) (*reconciler.Report, error) {
			gotEntries, gotOpts = entries, opts
			return &reconciler.Report{
				Resolved:     []domain.Platform{domain.PlatformLinux64},
				Materialized: []domain.Platform{domain.PlatformLinux64},
			}, nil
		}}

		out, err := execute(t, m, "add", "numpy >=2", "python", "--replace", "--platform", "linux", "--no-install", "-o", "plain")
		require.NoError(t, err)
		assert.Equal(t, []string{"numpy >=2", "python"}, gotEntries)
		assert.Equal(t, app.AddOptions{Replace: true, Selector: "linux", NoInstall: true, OutputMode: "plain"}, gotOpts)
		assert.Contains(t, out, "Locked linux-64")
		assert.Contains(t, out, "Installed linux-64")
	})

	t.Run("requires a package", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "add")
		require.Error(t, err)
	})

	t.Run("rejects unknown output modes", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "add", "numpy", "--output", "fancy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output mode")
	})
}

func TestCommands_Remove(t *testing.T) {
	m := &mockApp{removeFunc: func(_ []string, _ app.RemoveOptions) (*reconciler.Report, error) {
		return nil, &domain.NotFoundError{Name: "nmupy", Suggestions: []string{"numpy"}}
	}}

	_, err := execute(t, m, "rm", "nmupy")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyNotFound)
}

func TestCommands_InstallUpdateLock(t *testing.T) {
	var installs []app.InstallOptions
	var locks []app.LockOptions
	m := &mockApp{
		installFunc: func(opts app.InstallOptions) (*reconciler.Report, error) {
			installs = append(installs, opts)
			return &reconciler.Report{Statuses: []domain.PlatformStatus{{Platform: domain.PlatformLinux64, State: domain.InSync}}}, nil
		},
		lockFunc: func(opts app.LockOptions) (*reconciler.Report, error) {
			locks = append(locks, opts)
			return &reconciler.Report{OrphanLocks: []string{"/p/coman-win-64.lock"}}, nil
		},
	}

	out, err := execute(t, m, "install", "-p", "linux-64", "--platform", "osx-arm64", "--prune")
	require.NoError(t, err)
	assert.Equal(t, "All platforms are in sync\n", out)

	_, err = execute(t, m, "update")
	require.NoError(t, err)

	require.Len(t, installs, 2)
	assert.Equal(t, app.InstallOptions{Platforms: []string{"linux-64", "osx-arm64"}, Prune: true, OutputMode: "auto"}, installs[0])
	assert.True(t, installs[1].Relock)

	installs = nil
	_, err = execute(t, m, "install", "--show")
	require.NoError(t, err)
	_, err = execute(t, m, "update", "--show")
	require.NoError(t, err)
	require.Len(t, installs, 2)
	assert.True(t, installs[0].Show)
	assert.True(t, installs[1].Show)

	out, err = execute(t, m, "lock", "--update")
	require.NoError(t, err)
	assert.Equal(t, []app.LockOptions{{Relock: true, OutputMode: "auto"}}, locks)
	assert.Contains(t, out, "Removed orphan lock file coman-win-64.lock")
}

func statuses() []domain.PlatformStatus {
	return []domain.PlatformStatus{
		{Platform: domain.PlatformLinux64, State: domain.InSync, StateName: "in-sync", EnvPath: "/envs/demo-1a2b3c4d-linux-64", Installable: true},
		{Platform: domain.PlatformOSXArm64, State: domain.LockStale, StateName: "lock-stale", EnvPath: "/envs/demo-1a2b3c4d-osx-arm64"},
		{Platform: domain.PlatformLinuxAarch64, State: domain.EnvMissing, StateName: "env-missing", EnvPath: "/envs/demo-1a2b3c4d-linux-aarch64", Installable: true},
	}
}

func TestCommands_Status(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := &mockApp{statusFunc: func() ([]domain.PlatformStatus, error) { return statuses(), nil }}

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, m, "status")
		require.NoError(t, err)

		g := goldie.New(t)
		g.Assert(t, "status", []byte(out))
	})

	t.Run("show is an alias", func(t *testing.T) {
		out, err := execute(t, m, "show")
		require.NoError(t, err)
		assert.Contains(t, out, "lock-stale")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, m, "status", "--json")
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "osx-arm64", got[1]["platform"])
		assert.Equal(t, "lock-stale", got[1]["state"])
		assert.Equal(t, false, got[1]["installable"])
	})
}

func TestCommands_Info(t *testing.T) {
	var gotPlatform string
	m := &mockApp{infoFunc: func(platform string) (*app.Info, error) {
		gotPlatform = platform
		return &app.Info{
			ProjectDir: "/work/demo",
			Platform:   domain.PlatformLinux64,
			Platforms:  []domain.Platform{domain.PlatformLinux64},
			Name:       "demo-1a2b3c4d-linux-64",
			Prefix:     "/envs/demo-1a2b3c4d-linux-64",
			State:      "in-sync",
		}, nil
	}}

	out, err := execute(t, m, "info", "--name")
	require.NoError(t, err)
	assert.Equal(t, "demo-1a2b3c4d-linux-64\n", out)

	out, err = execute(t, m, "info", "--prefix", "--for", "linux-64")
	require.NoError(t, err)
	assert.Equal(t, "/envs/demo-1a2b3c4d-linux-64\n", out)
	assert.Equal(t, "linux-64", gotPlatform)

	out, err = execute(t, m, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "project:   /work/demo\n")
	assert.Contains(t, out, "state:     in-sync\n")

	_, err = execute(t, m, "info", "--name", "--prefix")
	require.Error(t, err)
}

func TestCommands_List(t *testing.T) {
	m := &mockApp{specFunc: func() (*domain.Spec, error) {
		numpy, err := domain.ParseDependency("numpy >=2.0.0")
		if err != nil {
			return nil, err
		}
		pywin, err := domain.ParseDependency("pywin32")
		if err != nil {
			return nil, err
		}
		pywin.Selector = "win"
		return &domain.Spec{
			Channels:     []string{"conda-forge", "bioconda"},
			Platforms:    []domain.Platform{domain.PlatformLinux64, domain.PlatformWin64},
			Dependencies: []domain.Dependency{numpy, pywin},
		}, nil
	}}

	out, err := execute(t, m, "list")
	require.NoError(t, err)
	assert.Equal(t, "numpy >=2.0.0\npywin32  # [win]\n", out)

	out, err = execute(t, m, "channel", "list")
	require.NoError(t, err)
	assert.Equal(t, "conda-forge\nbioconda\n", out)

	out, err = execute(t, m, "platform", "ls")
	require.NoError(t, err)
	assert.Equal(t, "linux-64\nwin-64\n", out)
}

func TestCommands_ListInstalled(t *testing.T) {
	var got app.InstalledOptions
	m := &mockApp{listFunc: func(opts app.InstalledOptions) ([]domain.PackageInfo, error) {
		got = opts
		if opts.Query == "nothing" {
			return nil, nil
		}
		return []domain.PackageInfo{
			{Name: "numpy", Version: "2.0.0", Build: "py311h0_0", Channel: "conda-forge"},
			{Name: "python", Version: "3.12.4", Build: "h0_0", Channel: "conda-forge"},
		}, nil
	}}

	out, err := execute(t, m, "list", "--installed", "^p", "--deps", "-p", "linux-64")
	require.NoError(t, err)
	assert.Equal(t, app.InstalledOptions{Query: "^p", Deps: true, Platform: "linux-64"}, got)
	assert.Equal(t, "numpy   2.0.0   py311h0_0  conda-forge\npython  3.12.4  h0_0       conda-forge\n", out)

	out, err = execute(t, m, "ls", "--installed", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No packages match\n", out)

	_, err = execute(t, m, "list", "numpy")
	require.Error(t, err, "a query without --installed")
}

func TestCommands_InstallShowsChanges(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := &mockApp{installFunc: func(app.InstallOptions) (*reconciler.Report, error) {
		return &reconciler.Report{
			Materialized: []domain.Platform{domain.PlatformLinux64},
			Changes: map[domain.Platform]domain.InstallDiff{
				domain.PlatformLinux64: {
					Removed: []domain.PackageChange{{Name: "six", OldVersion: "1.16.0", Channel: "conda-forge"}},
					Updated: []domain.PackageChange{{Name: "numpy", OldVersion: "1.26.4", NewVersion: "2.0.0", Channel: "conda-forge"}},
					Added:   []domain.PackageChange{{Name: "pandas", NewVersion: "2.2.0", Channel: "conda-forge"}},
				},
			},
		}, nil
	}}

	out, err := execute(t, m, "install", "--show")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "install_show", []byte(out))
}

func TestCommands_Channel(t *testing.T) {
	var got string
	var first bool
	m := &mockApp{channelFunc: func(channel string, prepend bool) (*reconciler.Report, error) {
		got, first = channel, prepend
		return &reconciler.Report{}, nil
	}}

	_, err := execute(t, m, "channel", "add", "bioconda", "--prepend")
	require.NoError(t, err)
	assert.Equal(t, "bioconda", got)
	assert.True(t, first)
}

func TestCommands_Run(t *testing.T) {
	t.Run("passes the command through untouched", func(t *testing.T) {
		var gotArgs []string
		var gotOpts app.RunOptions
		m := &mockApp{runFunc: func(args []string, opts app.RunOptions) error {
			gotArgs, gotOpts = args, opts
			return nil
		}}

		_, err := execute(t, m, "run", "--no-install", "--", "python", "-c", "print(1)")
		require.NoError(t, err)
		assert.Equal(t, []string{"python", "-c", "print(1)"}, gotArgs)
		assert.True(t, gotOpts.NoInstall)

		_, err = execute(t, m, "run", "pytest", "-x", "--platform", "linux-64")
		require.NoError(t, err)
		assert.Equal(t, []string{"pytest", "-x", "--platform", "linux-64"}, gotArgs)
	})

	t.Run("returns the command error", func(t *testing.T) {
		m := &mockApp{runFunc: func(args []string, _ app.RunOptions) error {
			return &domain.CommandError{Args: args, Code: 2}
		}}

		_, err := execute(t, m, "run", "false")
		var cmdErr *domain.CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 2, cmdErr.Code)
	})

	t.Run("shows usage when no command provided", func(t *testing.T) {
		m := &mockApp{runFunc: func([]string, app.RunOptions) error {
			panic("should not be called")
		}}

		out, err := execute(t, m, "run")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_ShellHook(t *testing.T) {
	var got app.HookOptions
	m := &mockApp{hookFunc: func(opts app.HookOptions) (string, error) {
		got = opts
		return "export CONDA_PREFIX='/envs/demo'\n", nil
	}}

	out, err := execute(t, m, "shell", "--hook", "--shell", "zsh")
	require.NoError(t, err)
	assert.Equal(t, "export CONDA_PREFIX='/envs/demo'\n", out)
	assert.Equal(t, app.HookOptions{Shell: "zsh", OutputMode: "auto"}, got)

	out, err = execute(t, m, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coman version "+build.Version)
}
