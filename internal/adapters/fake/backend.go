// Package fake provides a deterministic in-process package backend.
// It serves a fixed catalog, records every call and can be told to fail.
package fake

import (
	"cmp"
	"context"
	"crypto/md5" //nolint:gosec // conda records md5 next to sha256
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Name is the backend name reported by the fake.
const Name = "fake"

const baseURL = "https://conda.fake.invalid"

// Backend implements ports.Backend over a fixed catalog.
type Backend struct {
	mu            sync.Mutex
	catalog       []Entry
	unsatisfiable map[string]bool
	failInstall   map[string]string
	solveCalls    map[domain.Platform]int
	installCalls  int
}

// New returns a backend serving DefaultCatalog.
func New() *Backend {
	return NewWithCatalog(DefaultCatalog())
}

// NewWithCatalog returns a backend serving entries.
func NewWithCatalog(entries []Entry) *Backend {
	return &Backend{
		catalog:       slices.Clone(entries),
		unsatisfiable: make(map[string]bool),
		failInstall:   make(map[string]string),
		solveCalls:    make(map[domain.Platform]int),
	}
}

// Name identifies the backend.
func (b *Backend) Name() string {
	return Name
}

// MarkUnsatisfiable makes every request for name fail to resolve.
func (b *Backend) MarkUnsatisfiable(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsatisfiable[name] = true
}

// FailInstall makes installing name fail with reason until ClearFailures.
func (b *Backend) FailInstall(name, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failInstall[name] = reason
}

// ClearFailures removes all injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.unsatisfiable)
	clear(b.failInstall)
}

// SolveCalls returns the number of Solve calls for p.
func (b *Backend) SolveCalls(p domain.Platform) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.solveCalls[p]
}

// TotalSolveCalls returns the number of Solve calls across platforms.
func (b *Backend) TotalSolveCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.solveCalls {
		n += c
	}
	return n
}

// InstallCalls returns the number of Install calls.
func (b *Backend) InstallCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installCalls
}

type pending struct {
	dep        domain.Dependency
	requiredBy string
}

// Solve picks, for every requested name and its dependencies, the newest
// version satisfying the constraint from the highest priority channel
// that carries the name.
func (b *Backend) Solve(ctx context.Context, req domain.SolveRequest) ([]domain.LockedPackage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.solveCalls[req.Platform]++

	queue := make([]pending, 0, len(req.Specs))
	for _, spec := range req.Specs {
		dep, err := domain.ParseDependency(spec)
		if err != nil {
			return nil, &domain.ResolutionError{Platform: req.Platform, Detail: err.Error()}
		}
		queue = append(queue, pending{dep: dep})
	}

	picked := make(map[string]domain.LockedPackage)
	var conflicts []domain.Conflict
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		conflict := domain.Conflict{Package: next.dep.Name, Constraint: next.dep.Constraint.String()}
		if next.requiredBy != "" {
			conflict.RequiredBy = []string{next.requiredBy}
		}

		if prev, ok := picked[next.dep.Name]; ok {
			if !next.dep.Constraint.Matches(prev.Version) {
				conflicts = append(conflicts, conflict)
			}
			continue
		}
		if b.unsatisfiable[next.dep.Name] {
			conflicts = append(conflicts, conflict)
			continue
		}

		entry, ok := b.best(next.dep, req)
		if !ok {
			conflicts = append(conflicts, conflict)
			continue
		}
		picked[entry.Name] = locked(entry, req.Platform)
		for _, d := range entry.Depends {
			queue = append(queue, pending{
				dep:        domain.Dependency{Name: d},
				requiredBy: entry.Name + " " + entry.Version,
			})
		}
	}

	if len(conflicts) > 0 {
		return nil, &domain.ResolutionError{Platform: req.Platform, Conflicts: conflicts}
	}

	out := make([]domain.LockedPackage, 0, len(picked))
	for _, p := range picked {
		out = append(out, p)
	}
	domain.SortPackages(out)
	return out, nil
}

func (b *Backend) best(dep domain.Dependency, req domain.SolveRequest) (Entry, bool) {
	channels := req.Channels
	if dep.Channel != "" {
		channels = []string{dep.Channel}
	}
	for _, ch := range channels {
		var found []Entry
		for _, e := range b.catalog {
			if e.Name == dep.Name && e.Channel == ch && e.availableOn(req.Platform) && dep.Constraint.Matches(e.Version) {
				found = append(found, e)
			}
		}
		if len(found) > 0 {
			return slices.MaxFunc(found, func(x, y Entry) int { return domain.CompareVersions(x.Version, y.Version) }), true
		}
	}
	return Entry{}, false
}

func locked(e Entry, p domain.Platform) domain.LockedPackage {
	subdir := string(p)
	if e.Noarch {
		subdir = string(domain.PlatformNoarch)
	}
	url := fmt.Sprintf("%s/%s/%s/%s-%s-%s.conda", baseURL, e.Channel, subdir, e.Name, e.Version, e.Build)
	sha := sha256.Sum256([]byte(url))
	sum := md5.Sum([]byte(url)) //nolint:gosec // checksum field, not security
	return domain.LockedPackage{
		Name:    e.Name,
		Version: e.Version,
		Build:   e.Build,
		Channel: e.Channel,
		Subdir:  subdir,
		URL:     url,
		SHA256:  hex.EncodeToString(sha[:]),
		MD5:     hex.EncodeToString(sum[:]),
	}
}

type metaRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	Subdir  string `json:"subdir"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256"`
}

// Install lays out a prefix with one conda-meta record per package.
// Packages marked with FailInstall are skipped and reported.
func (b *Backend) Install(ctx context.Context, prefix string, set domain.ResolvedSet, out io.Writer) error {
	b.mu.Lock()
	b.installCalls++
	failures := maps.Clone(b.failInstall)
	b.mu.Unlock()

	metaDir := filepath.Join(prefix, "conda-meta")
	binDir := filepath.Join(prefix, "bin")
	if set.Platform.IsWindows() {
		binDir = filepath.Join(prefix, "Scripts")
	}
	for _, dir := range []string{metaDir, binDir} {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create prefix"), "prefix", prefix)
		}
	}

	_, _ = fmt.Fprintf(out, "Preparing transaction: %d packages\n", len(set.Packages))

	var failed []domain.FailedPackage
	for _, pkg := range set.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if reason, ok := failures[pkg.Name]; ok {
			_, _ = fmt.Fprintf(out, "Failed %s: %s\n", pkg.Name, reason)
			failed = append(failed, domain.FailedPackage{Name: pkg.Name, Reason: reason})
			continue
		}

		data, err := json.MarshalIndent(metaRecord{
			Name:    pkg.Name,
			Version: pkg.Version,
			Build:   pkg.Build,
			Channel: baseURL + "/" + pkg.Channel + "/" + pkg.Subdir,
			Subdir:  pkg.Subdir,
			URL:     pkg.URL,
			SHA256:  pkg.SHA256,
		}, "", "  ")
		if err != nil {
			return zerr.Wrap(err, "failed to encode package record")
		}
		name := fmt.Sprintf("%s-%s-%s.json", pkg.Name, pkg.Version, pkg.Build)
		if err := os.WriteFile(filepath.Join(metaDir, name), data, domain.FilePerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to write package record"), "package", pkg.Name)
		}
		_, _ = fmt.Fprintf(out, "Linking %s-%s-%s\n", pkg.Name, pkg.Version, pkg.Build)
	}

	if len(failed) > 0 {
		return &domain.InstallPartialFailure{Platform: set.Platform, Prefix: prefix, Failed: failed}
	}
	_, _ = fmt.Fprintln(out, "Transaction finished")
	return nil
}

// Search returns catalog entries whose name matches query (a glob), newest version first.
func (b *Backend) Search(ctx context.Context, query string, channels []string, platform domain.Platform) ([]domain.PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	query = strings.ToLower(query)
	var out []domain.PackageInfo
	for _, e := range b.catalog {
		if ok, _ := path.Match(query, e.Name); !ok {
			continue
		}
		if len(channels) > 0 && !slices.Contains(channels, e.Channel) {
			continue
		}
		if platform != "" && !e.availableOn(platform) {
			continue
		}
		subdir := string(platform)
		if e.Noarch || platform == "" {
			subdir = string(domain.PlatformNoarch)
		}
		out = append(out, domain.PackageInfo{
			Name: e.Name, Version: e.Version, Build: e.Build, Channel: e.Channel, Subdir: subdir,
		})
	}
	slices.SortStableFunc(out, func(x, y domain.PackageInfo) int {
		return cmp.Or(strings.Compare(x.Name, y.Name), domain.CompareVersions(y.Version, x.Version))
	})
	return out, nil
}
