package app

import (
	"context"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Info describes the project's environment for the default platform.
type Info struct {
	ProjectDir string            `json:"project_dir"`
	SpecFile   string            `json:"spec_file"`
	Platform   domain.Platform   `json:"platform"`
	Platforms  []domain.Platform `json:"platforms"`
	Name       string            `json:"name"`
	Prefix     string            `json:"prefix"`
	State      string            `json:"state"`
	EnvsRoot   string            `json:"envs_root"`
	Backend    string            `json:"backend"`
}

// EnvRecord is an environment known to the catalog.
type EnvRecord struct {
	domain.CatalogEntry
	// Present is false when the directory was removed outside of coman.
	Present bool
}

// Status reports the state of every configured platform.
func (a *App) Status(ctx context.Context) ([]domain.PlatformStatus, error) {
	s, err := a.begin(ctx, "plain", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()
	return s.rec.Status(ctx, s.project)
}

// Info describes the environment of platform, or of the default platform.
func (a *App) Info(ctx context.Context, platform string) (*Info, error) {
	s, err := a.begin(ctx, "plain", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	statuses, err := s.rec.Status(ctx, s.project)
	if err != nil {
		return nil, err
	}
	p, err := platformOrDefault(s.project, platform)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(statuses, func(st domain.PlatformStatus) bool { return st.Platform == p })
	if i < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "info"), "platform", string(p))
	}

	st := statuses[i]
	return &Info{
		ProjectDir: s.project.Dir,
		SpecFile:   s.project.SpecPath(),
		Platform:   p,
		Platforms:  s.project.Spec.Platforms,
		Name:       filepath.Base(st.EnvPath),
		Prefix:     st.EnvPath,
		State:      st.StateName,
		EnvsRoot:   s.project.EnvsRoot,
		Backend:    a.backend.Name(),
	}, nil
}

// InstalledOptions configuration for the Installed method.
type InstalledOptions struct {
	// Query is a regular expression matched against package names.
	Query    string
	Platform string
	// Deps includes packages pulled in only as dependencies.
	Deps bool
}

// Installed lists the packages of the project's current environment. Without
// Deps only the declared dependencies are listed.
func (a *App) Installed(ctx context.Context, opts InstalledOptions) ([]domain.PackageInfo, error) {
	var match *regexp.Regexp
	if opts.Query != "" {
		var err error
		if match, err = regexp.Compile(opts.Query); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid package query"), "query", opts.Query)
		}
	}

	s, err := a.begin(ctx, "plain", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	statuses, err := s.rec.Status(ctx, s.project)
	if err != nil {
		return nil, err
	}
	p, err := platformOrDefault(s.project, opts.Platform)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(statuses, func(st domain.PlatformStatus) bool { return st.Platform == p })
	if i < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrPlatformNotConfigured, "list"), "platform", string(p))
	}
	path := statuses[i].EnvPath
	if !a.registry.Exists(path) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrEnvironmentNotInstalled, "run coman install"),
			"platform", string(p)), "path", path)
	}

	pkgs, err := a.registry.Installed(path)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]bool)
	for _, d := range s.project.Spec.EffectiveDependencies(p) {
		declared[d.Name] = true
	}
	return slices.DeleteFunc(pkgs, func(pkg domain.PackageInfo) bool {
		if match != nil && !match.MatchString(pkg.Name) {
			return true
		}
		return !opts.Deps && !declared[pkg.Name]
	}), nil
}

// Spec returns the project's specification.
func (a *App) Spec(ctx context.Context) (*domain.Spec, error) {
	s, err := a.begin(ctx, "plain", true)
	if err != nil {
		return nil, err
	}
	defer s.stop()

	if err := s.rec.Load(s.project); err != nil {
		return nil, err
	}
	return s.project.Spec, nil
}

// Envs lists the environments recorded in the catalog, across projects.
func (a *App) Envs(ctx context.Context) ([]EnvRecord, error) {
	entries, err := a.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EnvRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, EnvRecord{CatalogEntry: e, Present: a.registry.Exists(e.Path)})
	}
	return out, nil
}

// Search queries the package index with the project's channels, or the
// default channel outside a project. A query without matches is retried as a
// substring match and finally answered with close package names.
func (a *App) Search(ctx context.Context, query, platform string) ([]domain.PackageInfo, error) {
	settings, err := a.configLoader.Settings()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	channels := []string{domain.DefaultChannel}
	if cwd, err := a.getwd(); err == nil {
		if dir, err := a.configLoader.FindProject(cwd); err == nil {
			if spec, err := a.specs.Load(filepath.Join(dir, domain.SpecFileName)); err == nil {
				channels = spec.Channels
			}
		}
	}

	p := settings.Platform
	if platform != "" {
		if p, err = domain.ParsePlatform(platform); err != nil {
			return nil, err
		}
	}

	found, err := a.backend.Search(ctx, query, channels, p)
	if err != nil || len(found) > 0 || strings.ContainsAny(query, "*?[") {
		return found, err
	}

	found, err = a.backend.Search(ctx, "*"+query+"*", channels, p)
	if err != nil || len(found) > 0 {
		return found, err
	}

	all, err := a.backend.Search(ctx, "*", channels, p)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, pkg := range all {
		if !slices.Contains(names, pkg.Name) {
			names = append(names, pkg.Name)
		}
	}
	return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageNotFound, query),
		"platform", string(p)), "suggestions", strings.Join(domain.Suggest(query, names), ", "))
}
