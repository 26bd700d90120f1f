package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newChannelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage the channels of environment.yml",
	}

	add := &cobra.Command{
		Use:   "add CHANNEL",
		Short: "Add a channel with the lowest priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, _ := cmd.Flags().GetBool("prepend")
			report, err := c.app.AddChannel(cmd.Context(), args[0], first)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	add.Flags().Bool("prepend", false, "Give the channel the highest priority")

	remove := &cobra.Command{
		Use:     "remove CHANNEL",
		Aliases: []string{"rm"},
		Short:   "Remove a channel",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.RemoveChannel(cmd.Context(), args[0])
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
		Short:   "List channels in priority order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := c.app.Spec(cmd.Context())
			if err != nil {
				return err
			}
			for _, ch := range spec.Channels {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ch)
			}
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
