package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.trai.ch/coman/internal/ui/style"
)

// printReport summarizes what a reconciliation changed on disk.
func printReport(w io.Writer, r *reconciler.Report) {
	if r == nil {
		return
	}
	ok := style.Success.Render(style.Check)
	for _, p := range r.Resolved {
		_, _ = fmt.Fprintf(w, "%s Locked %s\n", ok, p)
	}
	for _, p := range r.Materialized {
		_, _ = fmt.Fprintf(w, "%s Installed %s\n", ok, p)
		if d, found := r.Changes[p]; found {
			printChanges(w, d)
		}
	}
	for _, f := range r.OrphanLocks {
		_, _ = fmt.Fprintf(w, "%s Removed orphan lock file %s\n", ok, filepath.Base(f))
	}
	for _, d := range r.Pruned {
		_, _ = fmt.Fprintf(w, "%s Removed environment %s\n", ok, d)
	}
	if len(r.Resolved)+len(r.Materialized)+len(r.OrphanLocks)+len(r.Pruned) > 0 {
		return
	}
	for _, s := range r.Statuses {
		if s.State != domain.InSync {
			printStatuses(w, r.Statuses)
			return
		}
	}
	_, _ = fmt.Fprintln(w, "All platforms are in sync")
}

// printChanges lists removed, updated and added packages under a platform.
func printChanges(w io.Writer, d domain.InstallDiff) {
	if d.Empty() {
		_, _ = fmt.Fprintln(w, style.Dim.Render("    no package changes"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range d.Removed {
		_, _ = fmt.Fprintf(tw, "    %s\t%s\t%s\t\t%s\n", style.Failure.Render("- Removed"), c.Name, c.OldVersion, c.Channel)
	}
	for _, c := range d.Updated {
		_, _ = fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\t%s\n", style.Pending.Render("* Updated"), c.Name,
			c.OldVersion, style.Arrow+" "+c.NewVersion, c.Channel)
	}
	for _, c := range d.Added {
		_, _ = fmt.Fprintf(tw, "    %s\t%s\t\t%s\t%s\n", style.Success.Render("+ Installed"), c.Name, c.NewVersion, c.Channel)
	}
	_ = tw.Flush()
}

// printStatuses renders one row per platform.
func printStatuses(w io.Writer, statuses []domain.PlatformStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PLATFORM\tENVIRONMENT\tSTATE")
	for _, s := range statuses {
		name := s.State.String()
		env := filepath.Base(s.EnvPath)
		if !s.Installable {
			env = style.Dim.Render("(not installable here)")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Platform, env,
			style.ForState(name).Render(style.IconForState(name)+" "+name))
	}
	_ = tw.Flush()
}
