package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/config"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T, env map[string]string, file string) *config.Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if file != "" {
		require.NoError(t, os.WriteFile(path, []byte(file), 0o600))
	}
	return &config.Loader{
		Getenv: func(k string) string { return env[k] },
		Path:   path,
		GOOS:   "linux",
		GOARCH: "amd64",
	}
}

func TestSettings_Defaults(t *testing.T) {
	s, err := newLoader(t, nil, "").Settings()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultEnvsRoot(), s.EnvsRoot)
	assert.Equal(t, config.BackendAuto, s.Backend)
	assert.Equal(t, domain.PlatformLinux64, s.Platform)
	assert.Equal(t, 1, s.Jobs)
}

func TestSettings_EnvsRootPrecedence(t *testing.T) {
	file := "envs_root: /from/config\n"
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"config file", nil, "/from/config"},
		{"mamba root prefix", map[string]string{"MAMBA_ROOT_PREFIX": "/mamba"}, "/mamba/envs"},
		{"conda envs path", map[string]string{
			"MAMBA_ROOT_PREFIX": "/mamba",
			"CONDA_ENVS_PATH":   "/conda/envs",
		}, "/conda/envs"},
		{"coman envs path", map[string]string{
			"MAMBA_ROOT_PREFIX": "/mamba",
			"CONDA_ENVS_PATH":   "/conda/envs",
			"COMAN_ENVS_PATH":   "/coman/envs",
		}, "/coman/envs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newLoader(t, tt.env, file).Settings()
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.EnvsRoot)
		})
	}
}

func TestSettings_CondaEnvsPathList(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	l := newLoader(t, map[string]string{
		"CONDA_ENVS_PATH": "/first" + string(os.PathListSeparator) + "/second",
	}, "")
	l.Logger = log

	s, err := l.Settings()
	require.NoError(t, err)
	assert.Equal(t, "/first", s.EnvsRoot)
}

func TestSettings_Overrides(t *testing.T) {
	file := "backend: conda\njobs: 2\nplatform: osx-arm64\npkgs_dirs: /cache\nlog_format: json\n"

	s, err := newLoader(t, nil, file).Settings()
	require.NoError(t, err)
	assert.True(t, s.JSON)
	assert.Equal(t, "conda", s.Backend)
	assert.Equal(t, 2, s.Jobs)
	assert.Equal(t, domain.PlatformOSXArm64, s.Platform)
	assert.Equal(t, "/cache", s.PkgsDirs)

	s, err = newLoader(t, map[string]string{
		"COMAN_BACKEND":    "FAKE",
		"COMAN_JOBS":       "4",
		"COMAN_PLATFORM":   "win-64",
		"COMAN_LOG_FORMAT": "pretty",
	}, file).Settings()
	require.NoError(t, err)
	assert.False(t, s.JSON)
	assert.Equal(t, config.BackendFake, s.Backend)
	assert.Equal(t, 4, s.Jobs)
	assert.Equal(t, domain.PlatformWin64, s.Platform)
}

func TestSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"unknown key", nil, "envs-root: /x\n"},
		{"unknown backend", map[string]string{"COMAN_BACKEND": "pip"}, ""},
		{"bad jobs", map[string]string{"COMAN_JOBS": "many"}, ""},
		{"negative jobs", nil, "jobs: -1\n"},
		{"not yaml", nil, "backend: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(t, tt.env, tt.file).Settings()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfigFormat)
		})
	}

	t.Run("unknown platform", func(t *testing.T) {
		_, err := newLoader(t, map[string]string{"COMAN_PLATFORM": "amiga"}, "").Settings()
		assert.ErrorIs(t, err, domain.ErrUnknownPlatform)
	})

	t.Run("unsupported host", func(t *testing.T) {
		l := newLoader(t, nil, "")
		l.GOOS, l.GOARCH = "plan9", "386"
		_, err := l.Settings()
		assert.ErrorIs(t, err, domain.ErrUnsupportedHost)
	})
}

func TestFindProject(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.SpecFileName), []byte("dependencies: []\n"), 0o600))

	l := newLoader(t, nil, "")

	dir, err := l.FindProject(nested)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	dir, err = l.FindProject(root)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	_, err = l.FindProject(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrSpecNotFound)
}
