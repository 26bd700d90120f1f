package reconciler

import (
	"context"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
)

// Status loads project and reports the state of every configured platform.
// It never mutates anything.
func (r *Reconciler) Status(ctx context.Context, project *domain.Project) ([]domain.PlatformStatus, error) {
	_, span := r.tracer.Start(ctx, "status", ports.WithQuiet())
	defer span.End()

	if err := r.Load(project); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return r.statuses(project)
}

func (r *Reconciler) statuses(project *domain.Project) ([]domain.PlatformStatus, error) {
	out := make([]domain.PlatformStatus, 0, len(project.Spec.Platforms))
	for _, p := range project.Spec.Platforms {
		st, err := r.observe(project, p)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// observe applies the state rules to platform p of a loaded project.
func (r *Reconciler) observe(project *domain.Project, p domain.Platform) (domain.PlatformStatus, error) {
	id := project.Identity(p)
	path := r.registry.Locate(project.EnvsRoot, id)
	fingerprint := domain.SpecFingerprint(project.Spec)

	st := domain.PlatformStatus{
		Platform:        p,
		EnvPath:         path,
		EnvFingerprint:  id.Fingerprint,
		SpecFingerprint: fingerprint,
		Installable:     p.CanRunOn(project.Host),
	}
	obs := domain.Observation{
		Platform:        p,
		Lock:            project.Locks.Document(p),
		NoarchOK:        project.Locks.NoarchConsistent(p),
		SpecFingerprint: fingerprint,
		EnvExists:       r.registry.Exists(path),
	}
	if obs.Lock != nil {
		set, _ := project.Locks.Resolved(p)
		obs.LockContentHash = set.ContentHash
		st.LockFingerprint = obs.Lock.SpecFingerprint
		st.LockContentHash = set.ContentHash
	}
	if obs.EnvExists {
		marker, err := r.registry.ReadMarker(path)
		if err != nil {
			return domain.PlatformStatus{}, err
		}
		obs.Marker = marker
		st.MarkerHash = marker.LockContentHash
	}

	st.State = domain.Classify(obs)
	st.StateName = st.State.String()
	return st, nil
}

// markChanged reports every platform as SpecChanged, the state between a
// specification edit and the next resolution.
func markChanged(statuses []domain.PlatformStatus) []domain.PlatformStatus {
	for i := range statuses {
		statuses[i].State = domain.SpecChanged
		statuses[i].StateName = domain.SpecChanged.String()
	}
	return statuses
}
