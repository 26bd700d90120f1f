package reconciler

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// InstallOptions selects what install reconciles.
type InstallOptions struct {
	// Platforms to materialize. Empty selects the host platform.
	Platforms []domain.Platform
	// Relock resolves every configured platform even when its lock is current.
	Relock bool
	// LockOnly stops after the lock documents are current.
	LockOnly bool
	// Prune removes the project's environments that are no longer current.
	Prune bool
	// Show records the package changes of every materialized platform.
	Show bool
}

// Report describes what an operation changed.
type Report struct {
	Resolved     []domain.Platform
	Materialized []domain.Platform
	OrphanLocks  []string
	Pruned       []string
	Statuses     []domain.PlatformStatus
	// Changes holds the package diff per materialized platform when
	// InstallOptions.Show is set.
	Changes map[domain.Platform]domain.InstallDiff
}

// Install brings the requested platforms to InSync: stale or missing lock
// documents of any configured platform are resolved, then the requested
// environments are materialized. Platforms already in sync are untouched.
func (r *Reconciler) Install(ctx context.Context, project *domain.Project, opts InstallOptions) (*Report, error) {
	var report *Report
	err := r.withLock(ctx, project, func() error {
		if err := r.Load(project); err != nil {
			return err
		}
		var err error
		report, err = r.installLocked(ctx, project, opts)
		return err
	})
	return report, err
}

// Lock refreshes the lock documents without materializing anything.
func (r *Reconciler) Lock(ctx context.Context, project *domain.Project, relock bool) (*Report, error) {
	return r.Install(ctx, project, InstallOptions{Relock: relock, LockOnly: true})
}

func (r *Reconciler) installLocked(ctx context.Context, project *domain.Project, opts InstallOptions) (*Report, error) {
	report := &Report{}

	targets, err := r.targets(project, opts)
	if err != nil {
		return nil, err
	}

	statuses, err := r.statuses(project)
	if err != nil {
		return nil, err
	}
	var relock []domain.Platform
	var materialize []domain.Platform
	for _, st := range statuses {
		if opts.Relock || st.State.NeedsLock() {
			relock = append(relock, st.Platform)
		}
		if !opts.LockOnly && slices.Contains(targets, st.Platform) && st.State.NeedsInstall() {
			materialize = append(materialize, st.Platform)
		}
	}
	r.tracer.EmitPlan(ctx, plan(relock, materialize))

	if len(relock) > 0 {
		if err := r.relock(ctx, project, relock, report); err != nil {
			return nil, err
		}
	}
	if err := r.pruneOrphans(project, report); err != nil {
		return nil, err
	}

	for _, p := range targets {
		if opts.LockOnly {
			break
		}
		var before []domain.PackageInfo
		if opts.Show {
			before = r.previousPackages(project, p)
		}
		done, err := r.materialize(ctx, project, p)
		if err != nil {
			return nil, err
		}
		if !done {
			continue
		}
		report.Materialized = append(report.Materialized, p)
		if opts.Show {
			if report.Changes == nil {
				report.Changes = make(map[domain.Platform]domain.InstallDiff)
			}
			report.Changes[p] = domain.DiffInstalled(before, r.packages(r.registry.Locate(project.EnvsRoot, project.Identity(p))))
		}
	}

	if opts.Prune {
		pruned, err := r.pruneLocked(ctx, project)
		if err != nil {
			return nil, err
		}
		report.Pruned = pruned
	}

	report.Statuses, err = r.statuses(project)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// targets validates the platforms to materialize.
func (r *Reconciler) targets(project *domain.Project, opts InstallOptions) ([]domain.Platform, error) {
	if opts.LockOnly {
		return nil, nil
	}
	if len(opts.Platforms) == 0 {
		p, err := DefaultPlatform(project)
		if err != nil {
			return nil, err
		}
		return []domain.Platform{p}, nil
	}

	out := domain.SortPlatforms(opts.Platforms)
	for _, p := range out {
		if !project.Spec.HasPlatform(p) {
			return nil, zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "install"), "platform", string(p))
		}
		if !p.CanRunOn(project.Host) {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrPlatformNotInstallable, "install"),
				"platform", string(p)), "host", string(project.Host))
		}
	}
	return out, nil
}

// DefaultPlatform is the configured platform environments are installed for:
// the host platform, or failing that the first configured platform the host
// can run.
func DefaultPlatform(project *domain.Project) (domain.Platform, error) {
	if project.Spec.HasPlatform(project.Host) {
		return project.Host, nil
	}
	for _, p := range project.Spec.Platforms {
		if p.CanRunOn(project.Host) {
			return p, nil
		}
	}
	return "", zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "no configured platform runs on this host"),
		"host", string(project.Host))
}

func plan(relock, materialize []domain.Platform) []string {
	steps := make([]string, 0, len(relock)+len(materialize))
	for _, p := range relock {
		steps = append(steps, "resolve "+string(p))
	}
	for _, p := range materialize {
		steps = append(steps, "materialize "+string(p))
	}
	return steps
}

// relock resolves platforms and persists the new lock set.
func (r *Reconciler) relock(ctx context.Context, project *domain.Project, platforms []domain.Platform, report *Report) error {
	set, err := r.locker.Resolve(ctx, project.Spec, project.Locks, platforms)
	if err != nil {
		return err
	}
	if err := r.locks.Save(project.Dir, set); err != nil {
		return err
	}

	project.Locks = set
	report.Resolved = domain.SortPlatforms(platforms)
	for _, p := range report.Resolved {
		r.logger.Info(fmt.Sprintf("locked %s (%d packages)", p, len(set.Effective(p))))
	}
	return nil
}

// pruneOrphans removes lock files of platforms no longer configured.
func (r *Reconciler) pruneOrphans(project *domain.Project, report *Report) error {
	orphans, err := r.locks.Prune(project.Dir, project.Spec.Platforms)
	if err != nil {
		return err
	}
	report.OrphanLocks = orphans
	for _, o := range orphans {
		r.logger.Info("removed orphan lock file " + o)
	}
	return nil
}

// materialize installs platform p if it is not in sync. Concurrent requests
// for the same environment path within this process share one installation.
func (r *Reconciler) materialize(ctx context.Context, project *domain.Project, p domain.Platform) (bool, error) {
	st, err := r.observe(project, p)
	if err != nil {
		return false, err
	}
	if !st.State.NeedsInstall() {
		return false, nil
	}
	if st.State.NeedsLock() {
		return false, zerr.With(zerr.Wrap(domain.ErrEnvironmentNotInstalled, "lock document is not current"), "platform", string(p))
	}

	set, _ := project.Locks.Resolved(p)
	_, err, _ = r.flight.Do(st.EnvPath, func() (any, error) {
		ctx, span := r.tracer.Start(ctx, "materialize "+string(p))
		defer span.End()
		span.SetAttribute("platform", string(p))
		span.SetAttribute("path", st.EnvPath)
		span.SetAttribute("packages", len(set.Packages))

		err := r.withEnvLock(ctx, st.EnvPath, func() error {
			// Another project sharing this directory may have finished it meanwhile.
			if again, err := r.observe(project, p); err == nil && !again.State.NeedsInstall() {
				return nil
			}
			return r.registry.Materialize(ctx, project, set, st.EnvPath, span)
		})
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(err, "path", st.EnvPath)
		}
		return nil, nil
	})
	if err != nil {
		return false, err
	}

	r.record(ctx, domain.CatalogEntry{
		Path:            st.EnvPath,
		ProjectDir:      project.Dir,
		Platform:        p,
		EnvFingerprint:  st.EnvFingerprint,
		LockContentHash: set.ContentHash,
		InstalledAt:     time.Now().UTC(),
	})
	r.logger.Info(fmt.Sprintf("installed %s into %s", p, st.EnvPath))
	return true, nil
}

// previousPackages lists what platform p had installed before this run: the
// current environment when it already exists, otherwise the project's most
// recently installed environment for p.
func (r *Reconciler) previousPackages(project *domain.Project, p domain.Platform) []domain.PackageInfo {
	current := r.registry.Locate(project.EnvsRoot, project.Identity(p))
	if r.registry.Exists(current) {
		return r.packages(current)
	}

	owned, err := r.registry.Owned(project)
	if err != nil {
		r.logger.Warn("failed to list previous environments: " + err.Error())
		return nil
	}
	var latest string
	var latestAt time.Time
	for _, path := range owned {
		m, err := r.registry.ReadMarker(path)
		if err != nil || m.Platform != p || !m.InstalledAt.After(latestAt) {
			continue
		}
		latest, latestAt = path, m.InstalledAt
	}
	if latest == "" {
		return nil
	}
	return r.packages(latest)
}

func (r *Reconciler) packages(path string) []domain.PackageInfo {
	pkgs, err := r.registry.Installed(path)
	if err != nil {
		r.logger.Warn("failed to read installed packages: " + err.Error())
	}
	return pkgs
}

// record updates the catalog. The catalog is bookkeeping only, so failures
// are logged rather than returned.
func (r *Reconciler) record(ctx context.Context, entry domain.CatalogEntry) {
	if err := r.catalog.Record(ctx, entry); err != nil {
		r.logger.Warn("failed to update environment catalog: " + err.Error())
	}
}

func (r *Reconciler) forget(ctx context.Context, path string) {
	if err := r.catalog.Forget(ctx, path); err != nil {
		r.logger.Warn("failed to update environment catalog: " + err.Error())
	}
}
