package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/ui/style"
)

func (c *CLI) newEnvsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List environments installed by coman across projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envs, err := c.app.Envs(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PATH\tPLATFORM\tPROJECT\tINSTALLED")
			for _, e := range envs {
				installed := e.InstalledAt.Local().Format(time.DateTime)
				if !e.Present {
					installed = style.Dim.Render("missing")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Path, e.Platform, e.ProjectDir, installed)
			}
			return tw.Flush()
		},
	}
}
