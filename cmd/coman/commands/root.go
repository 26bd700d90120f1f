// Package commands implements the CLI commands for coman.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/app"
	"go.trai.ch/coman/internal/build"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for coman.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Init(ctx context.Context, force bool) (*domain.Spec, error)
	Add(ctx context.Context, entries []string, opts app.AddOptions) (*reconciler.Report, error)
	Remove(ctx context.Context, names []string, opts app.RemoveOptions) (*reconciler.Report, error)
	Install(ctx context.Context, opts app.InstallOptions) (*reconciler.Report, error)
	Lock(ctx context.Context, opts app.LockOptions) (*reconciler.Report, error)
	Uninstall(ctx context.Context, platform string) (string, error)
	Prune(ctx context.Context) ([]string, error)
	Status(ctx context.Context) ([]domain.PlatformStatus, error)
	Info(ctx context.Context, platform string) (*app.Info, error)
	Spec(ctx context.Context) (*domain.Spec, error)
	Installed(ctx context.Context, opts app.InstalledOptions) ([]domain.PackageInfo, error)
	Envs(ctx context.Context) ([]app.EnvRecord, error)
	Search(ctx context.Context, query, platform string) ([]domain.PackageInfo, error)
	AddChannel(ctx context.Context, channel string, first bool) (*reconciler.Report, error)
	RemoveChannel(ctx context.Context, channel string) (*reconciler.Report, error)
	AddPlatform(ctx context.Context, platform string) (*reconciler.Report, error)
	RemovePlatform(ctx context.Context, platform string) (*reconciler.Report, error)
	Run(ctx context.Context, args []string, opts app.RunOptions) error
	Hook(ctx context.Context, opts app.HookOptions) (string, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "coman",
		Short:         "Keep conda environments consistent with environment.yml",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("output", "o", "auto", "Output mode: auto, progress, plain or tui")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newAddCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newLockCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newUninstallCmd())
	rootCmd.AddCommand(c.newPruneCmd())
	rootCmd.AddCommand(c.newStatusCmd("show"))
	rootCmd.AddCommand(c.newStatusCmd("status"))
	rootCmd.AddCommand(c.newInfoCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newShellCmd())
	rootCmd.AddCommand(c.newSearchCmd())
	rootCmd.AddCommand(c.newChannelCmd())
	rootCmd.AddCommand(c.newPlatformCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newEnvsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func outputMode(cmd *cobra.Command) (string, error) {
	mode, _ := cmd.Flags().GetString("output")
	switch mode {
	case "auto", "progress", "plain", "tui":
		return mode, nil
	default:
		return "", zerr.With(zerr.New("invalid output mode, expected auto, progress, plain or tui"), "output", mode)
	}
}
