package domain

import (
	"slices"
	"strings"
)

// PackageChange is one line of an installation diff. OldVersion is empty
// for added packages and NewVersion for removed ones.
type PackageChange struct {
	Name       string `json:"name"`
	OldVersion string `json:"old_version,omitempty"`
	NewVersion string `json:"new_version,omitempty"`
	Channel    string `json:"channel"`
}

// InstallDiff compares the packages of an environment before and after an
// installation.
type InstallDiff struct {
	Removed []PackageChange `json:"removed,omitempty"`
	Updated []PackageChange `json:"updated,omitempty"`
	Added   []PackageChange `json:"added,omitempty"`
}

// Empty reports whether nothing changed.
func (d InstallDiff) Empty() bool {
	return len(d.Removed)+len(d.Updated)+len(d.Added) == 0
}

// DiffInstalled compares two package listings by name. A package whose
// version, build or channel differs counts as updated.
func DiffInstalled(before, after []PackageInfo) InstallDiff {
	old := make(map[string]PackageInfo, len(before))
	for _, p := range before {
		old[p.Name] = p
	}
	seen := make(map[string]bool, len(after))

	var d InstallDiff
	for _, p := range after {
		seen[p.Name] = true
		prev, ok := old[p.Name]
		switch {
		case !ok:
			d.Added = append(d.Added, PackageChange{Name: p.Name, NewVersion: p.Version, Channel: p.Channel})
		case prev.Version != p.Version || prev.Build != p.Build || prev.Channel != p.Channel:
			d.Updated = append(d.Updated, PackageChange{
				Name: p.Name, OldVersion: prev.Version, NewVersion: p.Version, Channel: p.Channel,
			})
		}
	}
	for _, p := range before {
		if !seen[p.Name] {
			d.Removed = append(d.Removed, PackageChange{Name: p.Name, OldVersion: p.Version, Channel: p.Channel})
		}
	}

	byName := func(a, b PackageChange) int { return strings.Compare(a.Name, b.Name) }
	slices.SortFunc(d.Removed, byName)
	slices.SortFunc(d.Updated, byName)
	slices.SortFunc(d.Added, byName)
	return d
}

// ChannelName reduces a channel URL such as
// https://conda.anaconda.org/conda-forge/linux-64 to its name. Plain names
// are returned unchanged.
func ChannelName(channel string) string {
	if !strings.Contains(channel, "://") {
		return channel
	}
	parts := strings.Split(strings.TrimRight(channel, "/"), "/")
	if last := Platform(parts[len(parts)-1]); len(parts) >= 2 &&
		(last == PlatformNoarch || slices.Contains(KnownPlatforms, last)) {
		return parts[len(parts)-2]
	}
	return parts[len(parts)-1]
}
