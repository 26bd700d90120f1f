package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

var namePattern = regexp.MustCompile(`^[a-z0-9_][a-z0-9_.\-]*$`)

// Dependency is one entry of the specification.
type Dependency struct {
	Name       string
	Constraint Constraint
	// Channel pins the package to a channel ("conda-forge::numpy").
	Channel string
	// Selector restricts the entry to matching platforms. Empty applies everywhere.
	Selector string
}

// ParseDependency parses "[channel::]name[ constraint]". The constraint may
// follow the name directly ("numpy>=1.20") or after whitespace ("numpy >=1.20").
func ParseDependency(s string) (Dependency, error) {
	s = strings.TrimSpace(s)

	var dep Dependency
	if channel, rest, ok := strings.Cut(s, "::"); ok {
		dep.Channel = strings.TrimSpace(channel)
		s = strings.TrimSpace(rest)
		if dep.Channel == "" {
			return Dependency{}, zerr.Wrap(ErrInvalidPackageName, fmt.Sprintf("empty channel in %q", s))
		}
	}

	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || strings.ContainsRune("=!<>~", r)
	})
	name, rest := s, ""
	if end >= 0 {
		name, rest = s[:end], s[end:]
	}

	name = strings.ToLower(name)
	if !namePattern.MatchString(name) {
		return Dependency{}, zerr.Wrap(ErrInvalidPackageName, fmt.Sprintf("name %q", name))
	}
	dep.Name = name

	c, err := ParseConstraint(rest)
	if err != nil {
		return Dependency{}, zerr.With(err, "dependency", name)
	}
	dep.Constraint = c
	return dep, nil
}

// String returns the canonical textual form used in the specification file.
func (d Dependency) String() string {
	var b strings.Builder
	if d.Channel != "" {
		b.WriteString(d.Channel)
		b.WriteString("::")
	}
	b.WriteString(d.Name)
	if !d.Constraint.IsAny() {
		b.WriteString(" ")
		b.WriteString(d.Constraint.String())
	}
	return b.String()
}

// MatchSpec returns the dependency as a conda match spec.
func (d Dependency) MatchSpec() string {
	return d.String()
}

// AppliesTo reports whether the entry is in effect on platform p.
func (d Dependency) AppliesTo(p Platform) bool {
	return SelectorApplies(d.Selector, p)
}

// normalizedSelector folds "noarch" into the empty selector.
func (d Dependency) normalizedSelector() string {
	if d.Selector == string(PlatformNoarch) {
		return ""
	}
	return d.Selector
}

// familySelectors select a whole OS family rather than one architecture.
var familySelectors = []string{"unix", "linux", "osx", "win"}

// specificity ranks how narrowly the entry's selector targets p.
func (d Dependency) specificity(p Platform) int {
	switch sel := d.normalizedSelector(); {
	case sel == "":
		return 0
	case sel == string(p):
		return 3
	case slices.Contains(familySelectors, sel):
		return 1
	default:
		return 2
	}
}

// overrides reports whether d takes precedence over other on p. Ties are
// broken by selector name so the outcome never depends on declaration order.
func (d Dependency) overrides(other Dependency, p Platform) bool {
	if a, b := d.specificity(p), other.specificity(p); a != b {
		return a > b
	}
	return d.Selector < other.Selector
}

// SameEntry reports whether two dependencies occupy the same (name, selector) slot.
func (d Dependency) SameEntry(other Dependency) bool {
	return d.Name == other.Name && d.normalizedSelector() == other.normalizedSelector()
}

// Equal reports whether two dependencies are semantically identical.
func (d Dependency) Equal(other Dependency) bool {
	return d.SameEntry(other) && d.Channel == other.Channel && d.Constraint.Equal(other.Constraint)
}
