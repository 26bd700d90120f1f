package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
	"go.trai.ch/zerr"
)

// maxSuggestions bounds "did you mean" hints.
const maxSuggestions = 3

// maxTypoDistance is the largest edit distance still suggested as a typo.
const maxTypoDistance = 2

// Spec is the human-edited dependency specification of a project.
type Spec struct {
	// Channels are in priority order.
	Channels []string
	// Platforms are the target platforms lock documents are produced for.
	Platforms []Platform
	// Dependencies keep their declaration order.
	Dependencies []Dependency
}

// DefaultSpec returns the specification written by init.
func DefaultSpec(host Platform) *Spec {
	return &Spec{
		Channels:     []string{DefaultChannel},
		Platforms:    []Platform{host},
		Dependencies: []Dependency{},
	}
}

// Clone returns a deep copy of the specification.
func (s *Spec) Clone() *Spec {
	return &Spec{
		Channels:     slices.Clone(s.Channels),
		Platforms:    slices.Clone(s.Platforms),
		Dependencies: slices.Clone(s.Dependencies),
	}
}

// Validate checks the structural invariants of the specification.
func (s *Spec) Validate() error {
	if len(s.Platforms) == 0 {
		return zerr.Wrap(ErrSpecFormat, "at least one platform is required")
	}
	seenPlatforms := make(map[Platform]bool, len(s.Platforms))
	for _, p := range s.Platforms {
		if _, err := ParsePlatform(string(p)); err != nil {
			return zerr.Wrap(ErrSpecFormat, fmt.Sprintf("unknown platform %q", p))
		}
		if seenPlatforms[p] {
			return zerr.Wrap(ErrSpecFormat, fmt.Sprintf("duplicate platform %q", p))
		}
		seenPlatforms[p] = true
	}

	seenChannels := make(map[string]bool, len(s.Channels))
	for _, c := range s.Channels {
		if strings.TrimSpace(c) == "" {
			return zerr.Wrap(ErrSpecFormat, "empty channel")
		}
		if seenChannels[c] {
			return zerr.Wrap(ErrSpecFormat, fmt.Sprintf("duplicate channel %q", c))
		}
		seenChannels[c] = true
	}

	for i, d := range s.Dependencies {
		if !ValidSelector(d.Selector) {
			return zerr.Wrap(ErrSpecFormat, fmt.Sprintf("unknown selector %q on %s", d.Selector, d.Name))
		}
		for _, prev := range s.Dependencies[:i] {
			if prev.SameEntry(d) {
				return zerr.Wrap(ErrSpecFormat, fmt.Sprintf("%s declared twice", d.Name))
			}
			if p, ok := overlap(prev, d); ok {
				return zerr.With(zerr.Wrap(ErrSpecFormat,
					fmt.Sprintf("%s is selected twice on %s ([%s] and [%s])", d.Name, p, prev.Selector, d.Selector)),
					"platform", string(p))
			}
		}
	}
	return nil
}

// overlap reports the first known platform on which two platform-specific
// entries of the same name both apply. At most one specific entry may be in
// effect per name and platform.
func overlap(a, b Dependency) (Platform, bool) {
	if a.Name != b.Name || a.normalizedSelector() == "" || b.normalizedSelector() == "" {
		return "", false
	}
	for _, p := range KnownPlatforms {
		if a.AppliesTo(p) && b.AppliesTo(p) {
			return p, true
		}
	}
	return "", false
}

// HasPlatform reports whether p is a configured target platform.
func (s *Spec) HasPlatform(p Platform) bool {
	return slices.Contains(s.Platforms, p)
}

// EffectiveDependencies returns the entries in effect on platform p, sorted by name.
// A platform-specific entry overrides a general entry of the same name. The
// result does not depend on declaration order.
func (s *Spec) EffectiveDependencies(p Platform) []Dependency {
	byName := make(map[string]Dependency)
	for _, d := range s.Dependencies {
		if !d.AppliesTo(p) {
			continue
		}
		if prev, ok := byName[d.Name]; ok && !d.overrides(prev, p) {
			continue
		}
		byName[d.Name] = d
	}

	out := make([]Dependency, 0, len(byName))
	for _, d := range byName {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Dependency) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// MatchSpecs returns the effective dependencies on p as conda match specs.
func (s *Spec) MatchSpecs(p Platform) []string {
	deps := s.EffectiveDependencies(p)
	specs := make([]string, 0, len(deps))
	for _, d := range deps {
		specs = append(specs, d.MatchSpec())
	}
	return specs
}

// AddDependency returns a copy of spec with dep added.
// Adding a name already declared for the same selector fails with ErrDuplicateDependency
// unless replace is set, in which case the entry is replaced in place.
func AddDependency(spec *Spec, dep Dependency, replace bool) (*Spec, error) {
	if !ValidSelector(dep.Selector) {
		return nil, zerr.Wrap(ErrUnknownSelector, fmt.Sprintf("selector %q", dep.Selector))
	}

	out := spec.Clone()
	for i, existing := range out.Dependencies {
		if !existing.SameEntry(dep) {
			continue
		}
		if existing.Equal(dep) {
			return nil, zerr.Wrap(ErrNothingChanged, dep.String()+" is already declared")
		}
		if !replace {
			msg := fmt.Sprintf("cannot add %s, %s is declared", dep.Name, existing.String())
			return nil, zerr.With(zerr.Wrap(ErrDuplicateDependency, msg), "selector", dep.Selector)
		}
		out.Dependencies[i] = dep
		return out, nil
	}
	for _, existing := range out.Dependencies {
		if p, ok := overlap(existing, dep); ok {
			msg := fmt.Sprintf("cannot add %s [%s], [%s] already selects it on %s", dep.Name, dep.Selector, existing.Selector, p)
			return nil, zerr.With(zerr.Wrap(ErrDuplicateDependency, msg), "selector", dep.Selector)
		}
	}

	out.Dependencies = append(out.Dependencies, dep)
	return out, nil
}

// RemoveDependency returns a copy of spec without the entry (name, selector).
// A missing entry yields a *NotFoundError carrying close matches.
func RemoveDependency(spec *Spec, name, selector string) (*Spec, error) {
	target := Dependency{Name: strings.ToLower(name), Selector: selector}

	out := spec.Clone()
	for i, existing := range out.Dependencies {
		if existing.SameEntry(target) {
			out.Dependencies = slices.Delete(out.Dependencies, i, i+1)
			return out, nil
		}
	}

	names := make([]string, 0, len(spec.Dependencies))
	for _, d := range spec.Dependencies {
		names = append(names, d.Name)
	}
	return nil, &NotFoundError{
		Name:        name,
		Selector:    selector,
		Suggestions: Suggest(name, names),
	}
}

// AddChannel returns a copy of spec with channel appended, or prepended when first is set.
func AddChannel(spec *Spec, channel string, first bool) (*Spec, error) {
	channel = strings.TrimSpace(channel)
	if slices.Contains(spec.Channels, channel) {
		return nil, zerr.Wrap(ErrChannelExists, channel)
	}
	out := spec.Clone()
	if first {
		out.Channels = append([]string{channel}, out.Channels...)
	} else {
		out.Channels = append(out.Channels, channel)
	}
	return out, nil
}

// RemoveChannel returns a copy of spec without channel.
func RemoveChannel(spec *Spec, channel string) (*Spec, error) {
	i := slices.Index(spec.Channels, channel)
	if i < 0 {
		return nil, zerr.Wrap(ErrChannelNotFound, channel)
	}
	out := spec.Clone()
	out.Channels = slices.Delete(out.Channels, i, i+1)
	return out, nil
}

// AddPlatform returns a copy of spec targeting p as well.
func AddPlatform(spec *Spec, p Platform) (*Spec, error) {
	if _, err := ParsePlatform(string(p)); err != nil {
		return nil, err
	}
	if spec.HasPlatform(p) {
		return nil, zerr.Wrap(ErrNothingChanged, string(p)+" is already configured")
	}
	out := spec.Clone()
	out.Platforms = append(out.Platforms, p)
	return out, nil
}

// RemovePlatform returns a copy of spec no longer targeting p.
func RemovePlatform(spec *Spec, p Platform) (*Spec, error) {
	i := slices.Index(spec.Platforms, p)
	if i < 0 {
		return nil, zerr.Wrap(ErrPlatformNotConfigured, string(p))
	}
	if len(spec.Platforms) == 1 {
		return nil, zerr.Wrap(ErrLastPlatform, string(p))
	}
	out := spec.Clone()
	out.Platforms = slices.Delete(out.Platforms, i, i+1)
	return out, nil
}

// Suggest returns up to three candidates that fuzzily match name, either as
// an abbreviation of a candidate or with the candidate abbreviating name.
func Suggest(name string, candidates []string) []string {
	name = strings.ToLower(name)
	out := make([]string, 0, maxSuggestions)
	add := func(s string) {
		if len(out) < maxSuggestions && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	for _, m := range fuzzy.Find(name, candidates) {
		add(m.Str)
	}
	for _, c := range candidates {
		if len(c) > 1 && len(fuzzy.Find(c, []string{name})) > 0 {
			add(c)
		}
	}
	for _, c := range candidates {
		if levenshtein.ComputeDistance(name, c) <= maxTypoDistance {
			add(c)
		}
	}
	return out
}
