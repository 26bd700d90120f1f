package reconciler

import (
	"context"
	"errors"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Edit transforms a specification. It must not modify its argument.
type Edit func(spec *domain.Spec) (*domain.Spec, error)

// Mutate applies edit to the specification and saves it. With install set the
// project is then reconciled under the same project lock; otherwise every
// platform is reported as SpecChanged.
func (r *Reconciler) Mutate(ctx context.Context, project *domain.Project, edit Edit, install *InstallOptions) (*Report, error) {
	var report *Report
	err := r.withLock(ctx, project, func() error {
		if err := r.Load(project); err != nil {
			return err
		}

		next, err := edit(project.Spec)
		switch {
		case errors.Is(err, domain.ErrNothingChanged):
			r.logger.Info(err.Error())
		case err != nil:
			return err
		default:
			if err := next.Validate(); err != nil {
				return err
			}
			if err := r.specs.Save(next, project.SpecPath()); err != nil {
				return err
			}
			project.Spec = next
		}

		if install == nil {
			statuses, err := r.statuses(project)
			if err != nil {
				return err
			}
			report = &Report{Statuses: statuses}
			if next != nil {
				report.Statuses = markChanged(statuses)
			}
			return nil
		}
		report, err = r.installLocked(ctx, project, *install)
		return err
	})
	return report, err
}

// Pin completes dependencies declared by bare name with a lower bound on the
// latest version the package index offers for platform.
func (r *Reconciler) Pin(ctx context.Context, channels []string, platform domain.Platform, deps []domain.Dependency) ([]domain.Dependency, error) {
	out := make([]domain.Dependency, 0, len(deps))
	for _, dep := range deps {
		if !dep.Constraint.IsAny() {
			out = append(out, dep)
			continue
		}
		search := channels
		if dep.Channel != "" {
			search = append([]string{dep.Channel}, channels...)
		}
		latest, err := r.latest(ctx, dep.Name, search, platform)
		if err != nil {
			return nil, err
		}
		c, err := domain.ParseConstraint(">=" + latest)
		if err != nil {
			return nil, zerr.With(err, "package", dep.Name)
		}
		dep.Constraint = c
		out = append(out, dep)
	}
	return out, nil
}

func (r *Reconciler) latest(ctx context.Context, name string, channels []string, platform domain.Platform) (string, error) {
	ctx, span := r.tracer.Start(ctx, "search "+name)
	defer span.End()

	found, err := r.backend.Search(ctx, name, channels, platform)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	var version string
	var names []string
	for _, p := range found {
		names = append(names, p.Name)
		if p.Name != name {
			continue
		}
		if version == "" || domain.CompareVersions(p.Version, version) > 0 {
			version = p.Version
		}
	}
	if version == "" {
		err := zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageNotFound, name),
			"platform", string(platform)), "suggestions", domain.Suggest(name, names))
		span.RecordError(err)
		return "", err
	}
	return version, nil
}
