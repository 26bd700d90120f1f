package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newStatusCmd(use string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: "Show the state of every configured platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := c.app.Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}
			printStatuses(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the states as JSON")
	return cmd
}

func (c *CLI) newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the project's environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platform, _ := cmd.Flags().GetString("for")
			info, err := c.app.Info(cmd.Context(), platform)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			flags := cmd.Flags()
			switch {
			case mustBool(flags.GetBool("json")):
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case mustBool(flags.GetBool("name")):
				_, _ = fmt.Fprintln(out, info.Name)
			case mustBool(flags.GetBool("prefix")):
				_, _ = fmt.Fprintln(out, info.Prefix)
			case mustBool(flags.GetBool("platform")):
				_, _ = fmt.Fprintln(out, info.Platform)
			default:
				platforms := make([]string, 0, len(info.Platforms))
				for _, p := range info.Platforms {
					platforms = append(platforms, string(p))
				}
				_, _ = fmt.Fprintf(out, "project:   %s\n", info.ProjectDir)
				_, _ = fmt.Fprintf(out, "spec:      %s\n", info.SpecFile)
				_, _ = fmt.Fprintf(out, "platform:  %s\n", info.Platform)
				_, _ = fmt.Fprintf(out, "platforms: %s\n", strings.Join(platforms, ", "))
				_, _ = fmt.Fprintf(out, "name:      %s\n", info.Name)
				_, _ = fmt.Fprintf(out, "prefix:    %s\n", info.Prefix)
				_, _ = fmt.Fprintf(out, "state:     %s\n", info.State)
				_, _ = fmt.Fprintf(out, "envs root: %s\n", info.EnvsRoot)
				_, _ = fmt.Fprintf(out, "backend:   %s\n", info.Backend)
			}
			return nil
		},
	}
	cmd.Flags().Bool("name", false, "Print only the environment name")
	cmd.Flags().Bool("prefix", false, "Print only the environment prefix")
	cmd.Flags().Bool("platform", false, "Print only the platform")
	cmd.Flags().Bool("json", false, "Print the description as JSON")
	cmd.Flags().String("for", "", "Describe this platform instead of the host")
	cmd.MarkFlagsMutuallyExclusive("name", "prefix", "platform", "json")
	return cmd
}

func mustBool(v bool, _ error) bool {
	return v
}
