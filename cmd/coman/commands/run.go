package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command inside the environment",
		Long: `Run a command with the environment activated: its bin directories are
prepended to PATH and CONDA_PREFIX points at it. The environment is installed
first unless --no-install is given. The command's exit status is returned.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			platform, _ := cmd.Flags().GetString("platform")
			noInstall, _ := cmd.Flags().GetBool("no-install")
			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Platform:   platform,
				NoInstall:  noInstall,
				OutputMode: mode,
			})
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringP("platform", "p", "", "Platform whose environment is used (default: host)")
	cmd.Flags().Bool("no-install", false, "Fail instead of installing an out-of-date environment")
	return cmd
}

func (c *CLI) newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell --hook",
		Short: "Print shell code that activates the environment",
		Long: `Print shell code that activates the environment, for use as

  eval "$(coman shell --hook)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hook, _ := cmd.Flags().GetBool("hook"); !hook {
				_ = cmd.Help()
				return nil
			}
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			shellName, _ := cmd.Flags().GetString("shell")
			platform, _ := cmd.Flags().GetString("platform")
			noInstall, _ := cmd.Flags().GetBool("no-install")
			script, err := c.app.Hook(cmd.Context(), app.HookOptions{
				Shell:      shellName,
				Platform:   platform,
				NoInstall:  noInstall,
				OutputMode: mode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}
	cmd.Flags().Bool("hook", false, "Print the activation script")
	cmd.Flags().StringP("shell", "s", "", "Shell to generate code for: bash, zsh, fish or powershell (default: detected)")
	cmd.Flags().StringP("platform", "p", "", "Platform whose environment is activated (default: host)")
	cmd.Flags().Bool("no-install", false, "Fail instead of installing an out-of-date environment")
	return cmd
}
