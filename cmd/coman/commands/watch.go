package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Install whenever environment.yml changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")
			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Debounce:   debounce,
				OutputMode: mode,
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "How long edits are coalesced before installing (default 300ms)")
	return cmd
}
