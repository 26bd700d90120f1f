package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/core/domain"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + domain.SpecFileName + " in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			spec, err := c.app.Init(cmd.Context(), force)
			if err != nil {
				return err
			}
			platforms := make([]string, 0, len(spec.Platforms))
			for _, p := range spec.Platforms {
				platforms = append(platforms, string(p))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (channels: %s, platforms: %s)\n",
				domain.SpecFileName, strings.Join(spec.Channels, ", "), strings.Join(platforms, ", "))
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing "+domain.SpecFileName)
	return cmd
}
