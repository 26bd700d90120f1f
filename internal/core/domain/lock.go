package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// LockSchemaVersion is the lock file format written by this version of coman.
// Documents with the same major version are readable.
const LockSchemaVersion = "v1.0.0"

// LockedPackage is one pinned package of a lock document.
type LockedPackage struct {
	Name    string
	Version string
	Build   string
	Channel string
	Subdir  string
	URL     string
	SHA256  string
	MD5     string
}

// IsNoarch reports whether the package is platform independent.
func (p LockedPackage) IsNoarch() bool {
	return p.Subdir == string(PlatformNoarch)
}

// identity is the record hashed into content hashes and compared during deduplication.
func (p LockedPackage) identity() string {
	return strings.Join([]string{p.Name, p.Version, p.Build, p.Channel, p.Subdir, p.URL, p.SHA256, p.MD5}, "\x1f")
}

// SamePin reports whether two records describe the same artifact.
func (p LockedPackage) SamePin(other LockedPackage) bool {
	return p.identity() == other.identity()
}

// SortPackages sorts packages by name, then by identity for stability.
func SortPackages(pkgs []LockedPackage) {
	slices.SortFunc(pkgs, func(a, b LockedPackage) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.identity(), b.identity())
	})
}

// LockDocument is the resolved package set for one platform.
type LockDocument struct {
	SchemaVersion   string
	Platform        Platform
	SpecFingerprint string
	// NoarchHash is the content hash of the shared noarch document this
	// document depends on. Empty when all packages are stored inline.
	NoarchHash string
	Packages   []LockedPackage
}

// NoarchDocument holds noarch packages resolved identically on every platform.
type NoarchDocument struct {
	SchemaVersion   string
	SpecFingerprint string
	Platforms       []Platform
	Packages        []LockedPackage
}

// ContentHash identifies the shared package set.
func (n *NoarchDocument) ContentHash() string {
	return ContentHash(PlatformNoarch, n.Packages)
}

// ContentHash hashes a platform together with its package set, independent of order.
func ContentHash(p Platform, pkgs []LockedPackage) string {
	sorted := slices.Clone(pkgs)
	SortPackages(sorted)

	h := sha256.New()
	_, _ = h.Write([]byte(p))
	_, _ = h.Write([]byte{'\n'})
	for _, pkg := range sorted {
		_, _ = h.Write([]byte(pkg.identity()))
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LockSet is every lock document of a project.
type LockSet struct {
	Documents map[Platform]*LockDocument
	Noarch    *NoarchDocument
}

// NewLockSet returns an empty set.
func NewLockSet() *LockSet {
	return &LockSet{Documents: make(map[Platform]*LockDocument)}
}

// Document returns the lock document for p, or nil.
func (s *LockSet) Document(p Platform) *LockDocument {
	if s == nil {
		return nil
	}
	return s.Documents[p]
}

// Platforms returns the platforms that have a document, sorted.
func (s *LockSet) Platforms() []Platform {
	if s == nil {
		return nil
	}
	out := make([]Platform, 0, len(s.Documents))
	for p := range s.Documents {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// NoarchConsistent reports whether the shared document a platform document
// references is present and unchanged.
func (s *LockSet) NoarchConsistent(p Platform) bool {
	doc := s.Document(p)
	if doc == nil {
		return false
	}
	if doc.NoarchHash == "" {
		return true
	}
	return s.Noarch != nil && s.Noarch.ContentHash() == doc.NoarchHash
}

// Effective returns the packages to install on p: the document's own
// packages plus the shared noarch packages, sorted by name.
func (s *LockSet) Effective(p Platform) []LockedPackage {
	doc := s.Document(p)
	if doc == nil {
		return nil
	}
	out := slices.Clone(doc.Packages)
	if doc.NoarchHash != "" && s.Noarch != nil {
		out = append(out, s.Noarch.Packages...)
	}
	SortPackages(out)
	return out
}

// Resolved returns the effective package set of p with its content hash.
func (s *LockSet) Resolved(p Platform) (ResolvedSet, bool) {
	if s.Document(p) == nil {
		return ResolvedSet{}, false
	}
	pkgs := s.Effective(p)
	return ResolvedSet{
		Platform:    p,
		Packages:    pkgs,
		ContentHash: ContentHash(p, pkgs),
	}, true
}

// ResolvedSet is what an installer materializes.
type ResolvedSet struct {
	Platform    Platform
	Packages    []LockedPackage
	ContentHash string
}

// SchemaSupported reports whether a lock written with version v can be read.
func SchemaSupported(v string) bool {
	return semver.IsValid(v) && semver.Major(v) == semver.Major(LockSchemaVersion)
}

// IsStale reports whether doc must be regenerated for spec.
func IsStale(doc *LockDocument, spec *Spec) bool {
	return doc.SpecFingerprint != SpecFingerprint(spec) || !SchemaSupported(doc.SchemaVersion)
}
