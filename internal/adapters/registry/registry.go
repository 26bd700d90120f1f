// Package registry manages materialized environments under the shared
// environments root.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/coman/internal/adapters/fs"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/zerr"
)

var fingerprintSuffix = regexp.MustCompile(`-[0-9a-f]{12}$`)

// Registry implements ports.Registry.
type Registry struct {
	installer ports.Installer
	now       func() time.Time
}

// New creates a Registry that materializes environments with installer.
func New(installer ports.Installer) *Registry {
	return &Registry{installer: installer, now: time.Now}
}

// Locate returns {envsRoot}/{basename}-{fingerprint}.
func (r *Registry) Locate(envsRoot string, id domain.EnvIdentity) string {
	return filepath.Join(envsRoot, id.DirName())
}

// Exists reports whether path is an existing directory.
func (r *Registry) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Materialize installs set at path. The previous marker is removed first and
// the new one is written only once the installer reports success, so an
// interrupted or partial install always reads back as stale.
func (r *Registry) Materialize(
	ctx context.Context,
	project *domain.Project,
	set domain.ResolvedSet,
	path string,
	out io.Writer,
) error {
	want := r.Locate(project.EnvsRoot, project.Identity(set.Platform))
	if filepath.Clean(path) != want {
		return zerr.With(zerr.Wrap(domain.ErrNotOwned, "refusing to install outside the project's environment"), "path", path)
	}
	if !set.Platform.CanRunOn(project.Host) {
		return zerr.With(zerr.Wrap(domain.ErrPlatformNotInstallable, string(set.Platform)), "host", string(project.Host))
	}

	markerPath := filepath.Join(path, domain.MarkerFileName)
	if err := os.Remove(markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to clear marker"), "path", markerPath)
	}

	if err := r.installer.Install(ctx, path, set, out); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(err, "installation interrupted")
	}

	marker := domain.Marker{
		LockContentHash: set.ContentHash,
		Platform:        set.Platform,
		SpecFingerprint: domain.SpecFingerprint(project.Spec),
		ProjectDir:      project.Dir,
		InstalledAt:     r.now().UTC(),
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode marker")
	}
	return fs.WriteFileAtomic(markerPath, append(data, '\n'), domain.FilePerm)
}

// ReadMarker reads the marker at path. A missing or unreadable marker is
// reported as absent.
func (r *Registry) ReadMarker(path string) (domain.Marker, error) {
	markerPath := filepath.Join(path, domain.MarkerFileName)
	data, err := os.ReadFile(markerPath) //nolint:gosec // marker inside a managed environment
	if errors.Is(err, os.ErrNotExist) {
		return domain.Marker{}, nil
	}
	if err != nil {
		return domain.Marker{}, zerr.With(zerr.Wrap(err, "failed to read marker"), "path", markerPath)
	}

	var m domain.Marker
	if err := json.Unmarshal(data, &m); err != nil || m.LockContentHash == "" {
		return domain.Marker{}, nil
	}
	m.Present = true
	return m, nil
}

// packageRecord is the subset of a conda-meta/*.json record coman reads.
type packageRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	Subdir  string `json:"subdir"`
	URL     string `json:"url"`
}

// Installed reads the package records of the environment at path.
func (r *Registry) Installed(path string) ([]domain.PackageInfo, error) {
	metaDir := filepath.Join(path, "conda-meta")
	names, err := doublestar.Glob(os.DirFS(metaDir), "*.json")
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to scan package records"), "path", metaDir)
	}

	out := make([]domain.PackageInfo, 0, len(names))
	for _, name := range names {
		file := filepath.Join(metaDir, name)
		data, err := os.ReadFile(file) //nolint:gosec // record inside a managed environment
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read package record"), "path", file)
		}
		var rec packageRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.Name == "" {
			continue
		}
		channel := rec.Channel
		if i := strings.LastIndex(rec.URL, "/"); channel == "" && i > 0 {
			// Older records only carry the download URL: {channel}/{subdir}/{file}.
			channel = rec.URL[:i]
		}
		out = append(out, domain.PackageInfo{
			Name:    rec.Name,
			Version: rec.Version,
			Build:   rec.Build,
			Channel: domain.ChannelName(channel),
			Subdir:  rec.Subdir,
		})
	}
	slices.SortFunc(out, func(a, b domain.PackageInfo) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// BinPaths returns the directories to prepend to PATH.
func (r *Registry) BinPaths(path string, platform domain.Platform) []string {
	if platform.IsWindows() {
		return []string{
			path,
			filepath.Join(path, "Library", "mingw-w64", "bin"),
			filepath.Join(path, "Library", "usr", "bin"),
			filepath.Join(path, "Library", "bin"),
			filepath.Join(path, "Scripts"),
			filepath.Join(path, "bin"),
		}
	}
	return []string{filepath.Join(path, "bin")}
}

// Remove deletes an environment of project. Paths outside the environments
// root, named for another project, or whose marker names another project
// directory are refused.
func (r *Registry) Remove(project *domain.Project, path string) error {
	if !r.owns(project, path) {
		return zerr.With(zerr.Wrap(domain.ErrNotOwned, "refusing to remove"), "path", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove environment"), "path", path)
	}
	return nil
}

// Owned lists environments under the root whose marker records project.Dir.
func (r *Registry) Owned(project *domain.Project) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(project.EnvsRoot), project.Basename+"-*")
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to scan environments"), "root", project.EnvsRoot)
	}

	var owned []string
	for _, name := range matches {
		path := filepath.Join(project.EnvsRoot, name)
		if !r.Exists(path) || !r.owns(project, path) {
			continue
		}
		m, err := r.ReadMarker(path)
		if err != nil || !m.Present {
			continue
		}
		owned = append(owned, path)
	}
	return owned, nil
}

func (r *Registry) owns(project *domain.Project, path string) bool {
	path = filepath.Clean(path)
	if filepath.Dir(path) != filepath.Clean(project.EnvsRoot) {
		return false
	}
	name := filepath.Base(path)
	if !fingerprintSuffix.MatchString(name) || name[:len(name)-domain.FingerprintLength-1] != project.Basename {
		return false
	}
	m, err := r.ReadMarker(path)
	if err != nil {
		return false
	}
	return !m.Present || m.ProjectDir == project.Dir
}
