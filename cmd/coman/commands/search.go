package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the project's channels for packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, _ := cmd.Flags().GetString("platform")
			found, err := c.app.Search(cmd.Context(), args[0], platform)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tVERSION\tBUILD\tCHANNEL\tSUBDIR")
			for _, p := range found {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Version, p.Build, p.Channel, p.Subdir)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringP("platform", "p", "", "Platform to search (default: host)")
	return cmd
}
