package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/coman/internal/app"
	"go.trai.ch/zerr"
)

func (c *CLI) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add PACKAGE...",
		Short: "Add dependencies and install the environment",
		Long: `Add dependencies to environment.yml, re-lock and install.

A package is written as [channel::]name[ constraint], for example
"numpy >=1.20,<2" or "conda-forge::python 3.11.*". A bare name is pinned
to the latest version available.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			replace, _ := cmd.Flags().GetBool("replace")
			selector, _ := cmd.Flags().GetString("platform")
			noInstall, _ := cmd.Flags().GetBool("no-install")
			show, _ := cmd.Flags().GetBool("show")

			report, err := c.app.Add(cmd.Context(), args, app.AddOptions{
				Replace:    replace,
				Selector:   selector,
				NoInstall:  noInstall,
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
	cmd.Flags().Bool("replace", false, "Replace the constraint of an already declared package")
	cmd.Flags().StringP("platform", "p", "", "Restrict the packages to a platform selector (e.g. linux, osx, win64)")
	cmd.Flags().Bool("no-install", false, "Only update environment.yml")
	cmd.Flags().Bool("show", false, "List the packages added, updated and removed")
	return cmd
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove PACKAGE...",
		Aliases: []string{"rm"},
		Short:   "Remove dependencies and install the environment",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := outputMode(cmd)
			if err != nil {
				return err
			}
			selector, _ := cmd.Flags().GetString("platform")
			noInstall, _ := cmd.Flags().GetBool("no-install")
			show, _ := cmd.Flags().GetBool("show")

			report, err := c.app.Remove(cmd.Context(), args, app.RemoveOptions{
				Selector:   selector,
				NoInstall:  noInstall,
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
	cmd.Flags().StringP("platform", "p", "", "Remove the entry declared with this platform selector")
	cmd.Flags().Bool("no-install", false, "Only update environment.yml")
	cmd.Flags().Bool("show", false, "List the packages added, updated and removed")
	return cmd
}

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [QUERY]",
		Aliases: []string{"ls"},
		Short:   "List the declared dependencies",
		Long: `List the dependencies declared in environment.yml.

With --installed the packages of the installed environment are listed
instead, optionally filtered by a regular expression on the name. Only the
declared packages are shown unless --deps is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, _ := cmd.Flags().GetBool("installed")
			if installed {
				return c.listInstalled(cmd, args)
			}
			if len(args) > 0 {
				return zerr.New("a query requires --installed")
			}
			spec, err := c.app.Spec(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range spec.Dependencies {
				line := d.String()
				if d.Selector != "" {
					line += "  # [" + d.Selector + "]"
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().Bool("installed", false, "List the packages of the installed environment")
	cmd.Flags().Bool("deps", false, "With --installed, include packages installed as dependencies")
	cmd.Flags().StringP("platform", "p", "", "With --installed, the platform whose environment is listed (default: host)")
	return cmd
}

func (c *CLI) listInstalled(cmd *cobra.Command, args []string) error {
	opts := app.InstalledOptions{}
	opts.Deps, _ = cmd.Flags().GetBool("deps")
	opts.Platform, _ = cmd.Flags().GetString("platform")
	if len(args) > 0 {
		opts.Query = args[0]
	}

	pkgs, err := c.app.Installed(cmd.Context(), opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(pkgs) == 0 {
		_, _ = fmt.Fprintln(out, "No packages match")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range pkgs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Version, p.Build, p.Channel)
	}
	return tw.Flush()
}
