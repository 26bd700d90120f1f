// Package locker implements the multi-platform resolution protocol that
// produces a project's lock documents.
package locker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Locker resolves platforms through a ports.Resolver and assembles lock sets.
type Locker struct {
	resolver ports.Resolver
	tracer   ports.Tracer
	jobs     int
}

// New creates a Locker resolving at most jobs platforms concurrently.
func New(resolver ports.Resolver, tracer ports.Tracer, jobs int) *Locker {
	if jobs < 1 {
		jobs = 1
	}
	return &Locker{resolver: resolver, tracer: tracer, jobs: jobs}
}

// Resolve calls the resolver exactly once for each platform in resolve and
// returns a new lock set covering every configured platform of spec.
// Configured platforms not in resolve keep their package set from existing.
// Noarch packages pinned identically on every configured platform move to
// the shared document when more than one platform is configured.
//
// A failure on any platform fails the whole call and nothing is returned;
// resolution errors of several platforms are joined.
func (l *Locker) Resolve(
	ctx context.Context,
	spec *domain.Spec,
	existing *domain.LockSet,
	resolve []domain.Platform,
) (*domain.LockSet, error) {
	resolve = domain.SortPlatforms(resolve)
	for _, p := range resolve {
		if !spec.HasPlatform(p) {
			return nil, zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "resolve"), "platform", string(p))
		}
	}

	resolved, err := l.solveAll(ctx, spec, resolve)
	if err != nil {
		return nil, err
	}

	stamp := domain.SpecFingerprint(spec)
	effective := make(map[domain.Platform][]domain.LockedPackage, len(spec.Platforms))
	stamps := make(map[domain.Platform]string, len(spec.Platforms))
	for _, p := range spec.Platforms {
		if pkgs, ok := resolved[p]; ok {
			effective[p] = pkgs
			stamps[p] = stamp
			continue
		}
		doc := existing.Document(p)
		if doc == nil {
			return nil, zerr.With(zerr.New("platform has no lock document and was not resolved"), "platform", string(p))
		}
		effective[p] = existing.Effective(p)
		stamps[p] = doc.SpecFingerprint
	}

	return assemble(spec, effective, stamps), nil
}

func (l *Locker) solveAll(ctx context.Context, spec *domain.Spec, platforms []domain.Platform) (map[domain.Platform][]domain.LockedPackage, error) {
	results := make([][]domain.LockedPackage, len(platforms))
	errs := make([]error, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.jobs)
	for i, p := range platforms {
		g.Go(func() error {
			pkgs, err := l.solve(gctx, spec, p)
			if err != nil {
				errs[i] = err
				var re *domain.ResolutionError
				if errors.As(err, &re) {
					// Other platforms still report their own conflicts.
					return nil
				}
				return err
			}
			results[i] = pkgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	out := make(map[domain.Platform][]domain.LockedPackage, len(platforms))
	for i, p := range platforms {
		out[p] = results[i]
	}
	return out, nil
}

func (l *Locker) solve(ctx context.Context, spec *domain.Spec, p domain.Platform) ([]domain.LockedPackage, error) {
	ctx, span := l.tracer.Start(ctx, fmt.Sprintf("resolve %s", p))
	defer span.End()
	span.SetAttribute("platform", string(p))

	req := domain.SolveRequest{
		Platform: p,
		Channels: slices.Clone(spec.Channels),
		Specs:    spec.MatchSpecs(p),
	}
	if len(req.Specs) == 0 {
		span.SetAttribute("packages", 0)
		return []domain.LockedPackage{}, nil
	}

	pkgs, err := l.resolver.Solve(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	pkgs = slices.Clone(pkgs)
	domain.SortPackages(pkgs)
	span.SetAttribute("packages", len(pkgs))
	return pkgs, nil
}

// assemble splits the effective package sets into per-platform documents and
// the shared noarch document.
func assemble(spec *domain.Spec, effective map[domain.Platform][]domain.LockedPackage, stamps map[domain.Platform]string) *domain.LockSet {
	platforms := domain.SortPlatforms(spec.Platforms)
	shared := sharedNoarch(platforms, effective)

	set := domain.NewLockSet()
	if len(shared) > 0 {
		set.Noarch = &domain.NoarchDocument{
			SchemaVersion:   domain.LockSchemaVersion,
			SpecFingerprint: domain.SpecFingerprint(spec),
			Platforms:       platforms,
			Packages:        shared,
		}
	}

	for _, p := range platforms {
		doc := &domain.LockDocument{
			SchemaVersion:   domain.LockSchemaVersion,
			Platform:        p,
			SpecFingerprint: stamps[p],
			Packages:        []domain.LockedPackage{},
		}
		for _, pkg := range effective[p] {
			if isShared(shared, pkg) {
				continue
			}
			doc.Packages = append(doc.Packages, pkg)
		}
		if set.Noarch != nil {
			doc.NoarchHash = set.Noarch.ContentHash()
		}
		set.Documents[p] = doc
	}
	return set
}

// sharedNoarch returns the noarch packages present with the same pin on every platform.
func sharedNoarch(platforms []domain.Platform, effective map[domain.Platform][]domain.LockedPackage) []domain.LockedPackage {
	if len(platforms) < 2 {
		return nil
	}

	var shared []domain.LockedPackage
	for _, candidate := range effective[platforms[0]] {
		if !candidate.IsNoarch() {
			continue
		}
		everywhere := true
		for _, p := range platforms[1:] {
			if !slices.ContainsFunc(effective[p], candidate.SamePin) {
				everywhere = false
				break
			}
		}
		if everywhere {
			shared = append(shared, candidate)
		}
	}
	domain.SortPackages(shared)
	return shared
}

func isShared(shared []domain.LockedPackage, pkg domain.LockedPackage) bool {
	return slices.ContainsFunc(shared, pkg.SamePin)
}
