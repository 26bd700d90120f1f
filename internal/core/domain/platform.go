package domain

import (
	"fmt"
	"slices"

	"go.trai.ch/zerr"
)

// Platform is a conda subdir identifier such as "linux-64".
type Platform string

// Known platforms.
const (
	PlatformNoarch       Platform = "noarch"
	PlatformLinux64      Platform = "linux-64"
	PlatformLinuxAarch64 Platform = "linux-aarch64"
	PlatformLinuxPPC64le Platform = "linux-ppc64le"
	PlatformOSX64        Platform = "osx-64"
	PlatformOSXArm64     Platform = "osx-arm64"
	PlatformWin64        Platform = "win-64"
)

// KnownPlatforms lists every installable platform in canonical order.
var KnownPlatforms = []Platform{
	PlatformLinux64,
	PlatformLinuxAarch64,
	PlatformLinuxPPC64le,
	PlatformOSX64,
	PlatformOSXArm64,
	PlatformWin64,
}

// selectorGroups maps each platform to the selector names that apply to it.
var selectorGroups = map[Platform][]string{
	PlatformLinux64:      {"linux64", "unix", "linux"},
	PlatformLinuxAarch64: {"aarch64", "unix", "linux"},
	PlatformLinuxPPC64le: {"ppc64le", "unix", "linux"},
	PlatformOSX64:        {"osx", "osx64", "unix"},
	PlatformOSXArm64:     {"arm64", "osx", "unix"},
	PlatformWin64:        {"win", "win64"},
}

// hostPlatforms maps GOOS/GOARCH to a platform.
var hostPlatforms = map[string]Platform{
	"linux/amd64":   PlatformLinux64,
	"linux/arm64":   PlatformLinuxAarch64,
	"linux/ppc64le": PlatformLinuxPPC64le,
	"darwin/amd64":  PlatformOSX64,
	"darwin/arm64":  PlatformOSXArm64,
	"windows/amd64": PlatformWin64,
}

// ParsePlatform validates a platform identifier.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !slices.Contains(KnownPlatforms, p) {
		return "", zerr.With(zerr.Wrap(ErrUnknownPlatform, fmt.Sprintf("platform %q", s)), "platform", s)
	}
	return p, nil
}

// HostPlatform maps a GOOS/GOARCH pair to a platform.
func HostPlatform(goos, goarch string) (Platform, error) {
	p, ok := hostPlatforms[goos+"/"+goarch]
	if !ok {
		return "", zerr.Wrap(ErrUnsupportedHost, goos+"/"+goarch)
	}
	return p, nil
}

// IsWindows reports whether the platform uses the Windows prefix layout.
func (p Platform) IsWindows() bool {
	return p == PlatformWin64
}

// CanRunOn reports whether packages for p can be installed on host.
// osx-64 environments run on Apple Silicon hosts through Rosetta.
func (p Platform) CanRunOn(host Platform) bool {
	if p == host {
		return true
	}
	return p == PlatformOSX64 && host == PlatformOSXArm64
}

// ValidSelector reports whether s selects at least one known platform.
// The empty selector and "noarch" select every platform.
func ValidSelector(s string) bool {
	if s == "" || s == string(PlatformNoarch) {
		return true
	}
	for _, p := range KnownPlatforms {
		if SelectorApplies(s, p) {
			return true
		}
	}
	return false
}

// SelectorApplies reports whether a dependency selector applies to platform p.
func SelectorApplies(selector string, p Platform) bool {
	if selector == "" || selector == string(PlatformNoarch) || selector == string(p) {
		return true
	}
	return slices.Contains(selectorGroups[p], selector)
}

// SortPlatforms returns a sorted, de-duplicated copy of ps.
func SortPlatforms(ps []Platform) []Platform {
	out := slices.Clone(ps)
	slices.Sort(out)
	return slices.Compact(out)
}
