package app_test

import (
	"context"
	"os"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/app"
	_ "go.trai.ch/coman/internal/wiring" // Register providers
)

func TestAppWiring(t *testing.T) {
	t.Setenv("COMAN_ENVS_PATH", t.TempDir())
	t.Setenv("COMAN_BACKEND", "fake")
	t.Setenv("COMAN_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()
	require.NoError(t, os.Chdir(t.TempDir()))

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
}
