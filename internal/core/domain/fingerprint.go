package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// FingerprintLength is the number of hex characters kept from the digest.
const FingerprintLength = 12

// SpecFingerprint identifies the resolver-relevant content of a specification.
// Lock documents are stamped with it. Channel order is kept because it is
// channel priority; platforms and dependencies are sorted so that file
// formatting and entry order do not matter.
func SpecFingerprint(s *Spec) string {
	var b strings.Builder
	for _, c := range s.Channels {
		writeRecord(&b, "channel", c)
	}
	for _, p := range SortPlatforms(s.Platforms) {
		writeRecord(&b, "platform", string(p))
	}

	deps := slices.Clone(s.Dependencies)
	slices.SortFunc(deps, func(a, b Dependency) int {
		if c := strings.Compare(a.normalizedSelector(), b.normalizedSelector()); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	for _, d := range deps {
		writeRecord(&b, "dep", d.normalizedSelector(), d.Channel, d.Name, d.Constraint.Canonical())
	}
	return digest(b.String())
}

// EnvironmentFingerprint identifies the dependency set in effect on one platform.
// It names the materialized environment directory.
func EnvironmentFingerprint(s *Spec, p Platform) string {
	var b strings.Builder
	writeRecord(&b, "platform", string(p))
	for _, c := range s.Channels {
		writeRecord(&b, "channel", c)
	}
	for _, d := range s.EffectiveDependencies(p) {
		writeRecord(&b, "dep", d.Channel, d.Name, d.Constraint.Canonical())
	}
	return digest(b.String())
}

// writeRecord writes one canonical line. Fields are joined with a byte that
// cannot appear in names, channels or constraints.
func writeRecord(b *strings.Builder, kind string, fields ...string) {
	b.WriteString(kind)
	for _, f := range fields {
		b.WriteByte(0x1f)
		b.WriteString(f)
	}
	b.WriteByte('\n')
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// EnvIdentity names a materialized environment.
type EnvIdentity struct {
	ProjectBasename string
	Fingerprint     string
}

// DirName returns "{basename}-{fingerprint}".
func (e EnvIdentity) DirName() string {
	return e.ProjectBasename + "-" + e.Fingerprint
}
