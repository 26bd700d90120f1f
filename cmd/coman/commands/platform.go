package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Manage the platforms environment.yml is locked for",
	}

	add := &cobra.Command{
		Use:   "add PLATFORM",
		Short: "Add a target platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.AddPlatform(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove PLATFORM",
		Aliases: []string{"rm"},
		Short:   "Remove a target platform",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.RemovePlatform(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List target platforms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := c.app.Spec(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range spec.Platforms {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
