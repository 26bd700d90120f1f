package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Lock and install the environment",
		Long: `Bring the environment in line with environment.yml: stale or missing lock
files are re-resolved and the requested platforms are installed. Without
--platform the host platform is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			platforms, _ := cmd.Flags().GetStringSlice("platform")
			prune, _ := cmd.Flags().GetBool("prune")
			show, _ := cmd.Flags().GetBool("show")

			report, err := c.app.Install(cmd.Context(), app.InstallOptions{
				Platforms:  platforms,
				Prune:      prune,
				Show:       show,
				OutputMode: mode,
			})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringSliceP("platform", "p", nil, "Platform to install (repeatable)")
	cmd.Flags().Bool("prune", false, "Remove this project's outdated environments afterwards")
	cmd.Flags().Bool("show", false, "List the packages added, updated and removed")
	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-resolve every platform and install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			show, _ := cmd.Flags().GetBool("show")
			report, err := c.app.Install(cmd.Context(), app.InstallOptions{
				Relock:     true,
				Show:       show,
				OutputMode: mode,
			})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().Bool("show", false, "List the packages added, updated and removed")
	return cmd
}

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve stale or missing lock files without installing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			update, _ := cmd.Flags().GetBool("update")
			report, err := c.app.Lock(cmd.Context(), app.LockOptions{
				Relock:     update,
				OutputMode: mode,
			})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().Bool("update", false, "Re-resolve every platform, even when its lock file is current")
	return cmd
}

func (c *CLI) newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove this project's current environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platform, _ := cmd.Flags().GetString("platform")
			path, err := c.app.Uninstall(cmd.Context(), platform)
			if err != nil {
				return err
			}
			if path == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No environment installed")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed environment %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("platform", "p", "", "Platform whose environment is removed (default: host)")
	return cmd
}

func (c *CLI) newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove this project's environments that no longer match environment.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := c.app.Prune(cmd.Context())
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune")
				return nil
			}
			for _, p := range removed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed environment %s\n", p)
			}
			return nil
		},
	}
}
