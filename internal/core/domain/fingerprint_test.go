package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/core/domain"
)

func mustDep(t *testing.T, s string) domain.Dependency {
	t.Helper()
	d, err := domain.ParseDependency(s)
	require.NoError(t, err)
	return d
}

func baseSpec(t *testing.T) *domain.Spec {
	t.Helper()
	return &domain.Spec{
		Channels:  []string{"conda-forge"},
		Platforms: []domain.Platform{domain.PlatformLinux64, domain.PlatformOSXArm64},
		Dependencies: []domain.Dependency{
			mustDep(t, "python 3.11.*"),
			mustDep(t, "numpy >=1.20,<2"),
		},
	}
}

func TestSpecFingerprint_Deterministic(t *testing.T) {
	s := baseSpec(t)
	assert.Equal(t, domain.SpecFingerprint(s), domain.SpecFingerprint(s.Clone()))
	assert.Len(t, domain.SpecFingerprint(s), domain.FingerprintLength)
}

func TestSpecFingerprint_OrderAndFormattingIndependent(t *testing.T) {
	a := baseSpec(t)

	b := &domain.Spec{
		Channels:  []string{"conda-forge"},
		Platforms: []domain.Platform{domain.PlatformOSXArm64, domain.PlatformLinux64},
		Dependencies: []domain.Dependency{
			mustDep(t, "NumPy  >= 1.20 , < 2"),
			mustDep(t, "python   3.11.*"),
		},
	}

	assert.Equal(t, domain.SpecFingerprint(a), domain.SpecFingerprint(b))
	for _, p := range a.Platforms {
		assert.Equal(t, domain.EnvironmentFingerprint(a, p), domain.EnvironmentFingerprint(b, p))
	}
}

func TestSpecFingerprint_ClauseOrderIndependent(t *testing.T) {
	a := baseSpec(t)
	b := baseSpec(t)
	b.Dependencies[1] = mustDep(t, "numpy <2,>=1.20")

	assert.True(t, a.Dependencies[1].Equal(b.Dependencies[1]))
	assert.Equal(t, "<2,>=1.20", a.Dependencies[1].Constraint.Canonical())
	assert.Equal(t, domain.SpecFingerprint(a), domain.SpecFingerprint(b))
	for _, p := range a.Platforms {
		assert.Equal(t, domain.EnvironmentFingerprint(a, p), domain.EnvironmentFingerprint(b, p))
	}

	alt := mustDep(t, "numpy >=2.0,<3|1.2").Constraint
	assert.True(t, alt.Equal(mustDep(t, "numpy 1.2|<3,>=2.0").Constraint))
	assert.Equal(t, ">=2.0,<3|1.2", alt.String(), "rendering keeps the written order")
}

func TestSpecFingerprint_Sensitivity(t *testing.T) {
	base := baseSpec(t)
	fp := domain.SpecFingerprint(base)

	tests := []struct {
		name   string
		mutate func(s *domain.Spec)
	}{
		{"constraint change", func(s *domain.Spec) { s.Dependencies[1] = mustDep(t, "numpy >=1.21,<2") }},
		{"add dependency", func(s *domain.Spec) { s.Dependencies = append(s.Dependencies, mustDep(t, "requests >=2.0")) }},
		{"remove dependency", func(s *domain.Spec) { s.Dependencies = s.Dependencies[:1] }},
		{"channel pin", func(s *domain.Spec) { s.Dependencies[0].Channel = "defaults" }},
		{"selector", func(s *domain.Spec) { s.Dependencies[0].Selector = "linux" }},
		{"channel added", func(s *domain.Spec) { s.Channels = append(s.Channels, "bioconda") }},
		{"platform removed", func(s *domain.Spec) { s.Platforms = s.Platforms[:1] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.Clone()
			tt.mutate(s)
			assert.NotEqual(t, fp, domain.SpecFingerprint(s))
		})
	}
}

func TestSpecFingerprint_ChannelPriorityMatters(t *testing.T) {
	a := baseSpec(t)
	a.Channels = []string{"conda-forge", "bioconda"}
	b := a.Clone()
	b.Channels = []string{"bioconda", "conda-forge"}

	assert.NotEqual(t, domain.SpecFingerprint(a), domain.SpecFingerprint(b))
}

func TestEnvironmentFingerprint_PerPlatform(t *testing.T) {
	s := baseSpec(t)
	linux := domain.EnvironmentFingerprint(s, domain.PlatformLinux64)
	osx := domain.EnvironmentFingerprint(s, domain.PlatformOSXArm64)
	assert.NotEqual(t, linux, osx, "platforms must never share an environment directory")
}

func TestEnvironmentFingerprint_IgnoresOtherPlatformsEntries(t *testing.T) {
	s := baseSpec(t)
	linuxBefore := domain.EnvironmentFingerprint(s, domain.PlatformLinux64)
	osxBefore := domain.EnvironmentFingerprint(s, domain.PlatformOSXArm64)

	dep := mustDep(t, "libcxx")
	dep.Selector = "osx"
	s.Dependencies = append(s.Dependencies, dep)

	assert.Equal(t, linuxBefore, domain.EnvironmentFingerprint(s, domain.PlatformLinux64))
	assert.NotEqual(t, osxBefore, domain.EnvironmentFingerprint(s, domain.PlatformOSXArm64))
}

func TestEnvIdentity_DirName(t *testing.T) {
	id := domain.EnvIdentity{ProjectBasename: "myproj", Fingerprint: "0123456789ab"}
	assert.Equal(t, "myproj-0123456789ab", id.DirName())
}
