// Package lockfile persists lock documents as one TOML file per platform.
package lockfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/coman/internal/adapters/fs"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

const fileHeader = "# Generated by coman. Do not edit by hand.\n\n"

// Store implements ports.LockStore.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the lock document of one platform. A missing file yields nil
// without error.
func (s *Store) Load(dir string, platform domain.Platform) (*domain.LockDocument, error) {
	doc, err := readDocument(filepath.Join(dir, domain.LockFileName(platform)), platform)
	if err != nil || doc == nil {
		return nil, err
	}
	return toLockDocument(doc), nil
}

// LoadAll reads every lock file in dir. Files named after unknown platforms
// are ignored; Orphans reports them.
func (s *Store) LoadAll(dir string) (*domain.LockSet, error) {
	set := domain.NewLockSet()

	names, err := lockFiles(dir)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		platform, ok := platformOf(name)
		if !ok {
			continue
		}

		doc, err := readDocument(filepath.Join(dir, name), platform)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}

		if platform == domain.PlatformNoarch {
			set.Noarch = toNoarchDocument(doc)
			continue
		}
		set.Documents[platform] = toLockDocument(doc)
	}
	return set, nil
}

// Save writes every document of set. The shared noarch file is removed when
// the set has none.
func (s *Store) Save(dir string, set *domain.LockSet) error {
	for _, platform := range set.Platforms() {
		d := set.Documents[platform]
		if err := writeDocument(dir, platform, fromLockDocument(d)); err != nil {
			return err
		}
	}

	if set.Noarch != nil {
		return writeDocument(dir, domain.PlatformNoarch, fromNoarchDocument(set.Noarch))
	}
	return s.Remove(dir, domain.PlatformNoarch)
}

// Remove deletes the lock file of platform, if present.
func (s *Store) Remove(dir string, platform domain.Platform) error {
	path := filepath.Join(dir, domain.LockFileName(platform))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove lock file"), "path", path)
	}
	return nil
}

// Orphans lists lock files in dir that belong to no platform in keep. The
// shared noarch file is managed by Save and never reported.
func (s *Store) Orphans(dir string, keep []domain.Platform) ([]string, error) {
	names, err := lockFiles(dir)
	if err != nil {
		return nil, err
	}

	var orphans []string
	for _, name := range names {
		platform, ok := platformOf(name)
		if ok && (platform == domain.PlatformNoarch || slices.Contains(keep, platform)) {
			continue
		}
		orphans = append(orphans, name)
	}
	return orphans, nil
}

// Prune deletes the orphans of dir and returns their names.
func (s *Store) Prune(dir string, keep []domain.Platform) ([]string, error) {
	orphans, err := s.Orphans(dir, keep)
	if err != nil {
		return nil, err
	}
	for _, name := range orphans {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, "failed to remove orphan lock file"), "file", name)
		}
	}
	return orphans, nil
}

// encode renders a document deterministically.
func encode(d *document) ([]byte, error) {
	sorted := slices.Clone(d.Packages)
	slices.SortFunc(sorted, func(a, b pkg) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	out := *d
	out.Packages = sorted

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(out); err != nil {
		return nil, zerr.Wrap(err, "failed to encode lock file")
	}
	return buf.Bytes(), nil
}

func lockFiles(dir string) ([]string, error) {
	names, err := doublestar.Glob(os.DirFS(dir), domain.LockFileGlob)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list lock files"), "dir", dir)
	}
	slices.Sort(names)
	return names, nil
}

// platformOf maps "coman-linux-64.lock" to linux-64.
func platformOf(name string) (domain.Platform, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, domain.LockFilePrefix), domain.LockFileExt)
	if raw == string(domain.PlatformNoarch) {
		return domain.PlatformNoarch, true
	}
	p, err := domain.ParsePlatform(raw)
	return p, err == nil
}

func readDocument(path string, platform domain.Platform) (*document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // lock files live in the project directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read lock file"), "path", path)
	}

	var h header
	if err := toml.Unmarshal(data, &h); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockFormat, err.Error()), "path", path)
	}
	if h.Platform != string(platform) {
		msg := fmt.Sprintf("%s declares platform %q", filepath.Base(path), h.Platform)
		return nil, zerr.With(zerr.Wrap(domain.ErrLockMismatch, msg), "path", path)
	}
	if !domain.SchemaSupported(h.SchemaVersion) {
		// Readable only far enough to report it as stale.
		return &document{SchemaVersion: h.SchemaVersion, Platform: h.Platform, SpecFingerprint: h.SpecFingerprint}, nil
	}

	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrLockFormat, err.Error()), "path", path)
	}
	return &doc, nil
}

func writeDocument(dir string, platform domain.Platform, d *document) error {
	data, err := encode(d)
	if err != nil {
		return zerr.With(err, "platform", string(platform))
	}
	return fs.WriteFileAtomic(filepath.Join(dir, domain.LockFileName(platform)), data, domain.FilePerm)
}

func toLockDocument(d *document) *domain.LockDocument {
	return &domain.LockDocument{
		SchemaVersion:   d.SchemaVersion,
		Platform:        domain.Platform(d.Platform),
		SpecFingerprint: d.SpecFingerprint,
		NoarchHash:      d.NoarchHash,
		Packages:        toPackages(d.Packages),
	}
}

func toNoarchDocument(d *document) *domain.NoarchDocument {
	platforms := make([]domain.Platform, 0, len(d.Platforms))
	for _, p := range d.Platforms {
		platforms = append(platforms, domain.Platform(p))
	}
	return &domain.NoarchDocument{
		SchemaVersion:   d.SchemaVersion,
		SpecFingerprint: d.SpecFingerprint,
		Platforms:       platforms,
		Packages:        toPackages(d.Packages),
	}
}

func fromLockDocument(d *domain.LockDocument) *document {
	return &document{
		SchemaVersion:   d.SchemaVersion,
		Platform:        string(d.Platform),
		SpecFingerprint: d.SpecFingerprint,
		NoarchHash:      d.NoarchHash,
		Packages:        fromPackages(d.Packages),
	}
}

func fromNoarchDocument(d *domain.NoarchDocument) *document {
	platforms := make([]string, 0, len(d.Platforms))
	for _, p := range domain.SortPlatforms(d.Platforms) {
		platforms = append(platforms, string(p))
	}
	return &document{
		SchemaVersion:   d.SchemaVersion,
		Platform:        string(domain.PlatformNoarch),
		SpecFingerprint: d.SpecFingerprint,
		Platforms:       platforms,
		Packages:        fromPackages(d.Packages),
	}
}

func toPackages(in []pkg) []domain.LockedPackage {
	out := make([]domain.LockedPackage, 0, len(in))
	for _, p := range in {
		out = append(out, domain.LockedPackage(p))
	}
	return out
}

func fromPackages(in []domain.LockedPackage) []pkg {
	out := make([]pkg, 0, len(in))
	for _, p := range in {
		out = append(out, pkg(p))
	}
	return out
}
