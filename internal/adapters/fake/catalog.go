package fake

import (
	"slices"

	"go.trai.ch/coman/internal/core/domain"
)

// Entry is one package version available from the fake index.
type Entry struct {
	Name    string
	Version string
	Build   string
	Channel string
	// Noarch entries resolve identically on every platform.
	Noarch bool
	// Platforms restricts the entry; empty means every known platform.
	Platforms []domain.Platform
	Depends   []string
}

func (e Entry) availableOn(p domain.Platform) bool {
	return len(e.Platforms) == 0 || slices.Contains(e.Platforms, p)
}

// DefaultCatalog is the fixed package set served by the fake backend.
func DefaultCatalog() []Entry {
	unix := []domain.Platform{
		domain.PlatformLinux64, domain.PlatformLinuxAarch64, domain.PlatformLinuxPPC64le,
		domain.PlatformOSX64, domain.PlatformOSXArm64,
	}
	osx := []domain.Platform{domain.PlatformOSX64, domain.PlatformOSXArm64}

	return []Entry{
		{Name: "python", Version: "3.10.14", Build: "h0_0", Channel: "conda-forge", Depends: []string{"pip", "tzdata"}},
		{Name: "python", Version: "3.11.9", Build: "h0_0", Channel: "conda-forge", Depends: []string{"pip", "tzdata"}},
		{Name: "python", Version: "3.12.4", Build: "h0_0", Channel: "conda-forge", Depends: []string{"pip", "tzdata"}},
		{Name: "pip", Version: "24.0", Build: "pyhd8ed1ab_0", Channel: "conda-forge", Noarch: true},
		{Name: "tzdata", Version: "2024a", Build: "h0c530f3_0", Channel: "conda-forge", Noarch: true},
		{Name: "numpy", Version: "1.26.4", Build: "py311h0_0", Channel: "conda-forge", Depends: []string{"python"}},
		{Name: "numpy", Version: "2.0.0", Build: "py311h0_0", Channel: "conda-forge", Depends: []string{"python"}},
		{Name: "requests", Version: "2.31.0", Build: "pyhd8ed1ab_0", Channel: "conda-forge", Noarch: true, Depends: []string{"certifi", "idna"}},
		{Name: "requests", Version: "2.32.3", Build: "pyhd8ed1ab_0", Channel: "conda-forge", Noarch: true, Depends: []string{"certifi", "idna"}},
		{Name: "certifi", Version: "2024.7.4", Build: "pyhd8ed1ab_0", Channel: "conda-forge", Noarch: true},
		{Name: "idna", Version: "3.7", Build: "pyhd8ed1ab_0", Channel: "conda-forge", Noarch: true},
		{Name: "libcxx", Version: "17.0.6", Build: "h5f092b4_0", Channel: "conda-forge", Platforms: osx},
		{Name: "pywin32", Version: "306", Build: "py311h0_2", Channel: "conda-forge", Platforms: []domain.Platform{domain.PlatformWin64}},
		{Name: "samtools", Version: "1.20", Build: "h50ea8bc_0", Channel: "bioconda", Platforms: unix},
		{Name: "zlib", Version: "1.3.1", Build: "h4ab18f5_1", Channel: "conda-forge"},
	}
}
