package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/core/domain"
)

func pkg(name, version, subdir string) domain.LockedPackage {
	return domain.LockedPackage{
		Name:    name,
		Version: version,
		Build:   "h0_0",
		Channel: "conda-forge",
		Subdir:  subdir,
		URL:     "https://conda.anaconda.org/conda-forge/" + subdir + "/" + name + "-" + version + "-h0_0.conda",
		SHA256:  name + version,
	}
}

func TestContentHash_OrderIndependent(t *testing.T) {
	a := []domain.LockedPackage{pkg("python", "3.11.4", "linux-64"), pkg("pip", "23.0", "noarch")}
	b := []domain.LockedPackage{a[1], a[0]}

	assert.Equal(t,
		domain.ContentHash(domain.PlatformLinux64, a),
		domain.ContentHash(domain.PlatformLinux64, b))
	assert.NotEqual(t,
		domain.ContentHash(domain.PlatformLinux64, a),
		domain.ContentHash(domain.PlatformOSX64, a))
}

func TestLockSet_EffectiveIncludesNoarch(t *testing.T) {
	shared := &domain.NoarchDocument{
		SchemaVersion: domain.LockSchemaVersion,
		Packages:      []domain.LockedPackage{pkg("pip", "23.0", "noarch")},
	}
	set := domain.NewLockSet()
	set.Noarch = shared
	set.Documents[domain.PlatformLinux64] = &domain.LockDocument{
		SchemaVersion: domain.LockSchemaVersion,
		Platform:      domain.PlatformLinux64,
		NoarchHash:    shared.ContentHash(),
		Packages:      []domain.LockedPackage{pkg("python", "3.11.4", "linux-64")},
	}

	eff := set.Effective(domain.PlatformLinux64)
	require.Len(t, eff, 2)
	assert.Equal(t, "pip", eff[0].Name)
	assert.Equal(t, "python", eff[1].Name)
	assert.True(t, set.NoarchConsistent(domain.PlatformLinux64))

	inline := domain.NewLockSet()
	inline.Documents[domain.PlatformLinux64] = &domain.LockDocument{
		Platform: domain.PlatformLinux64,
		Packages: eff,
	}
	r1, ok := set.Resolved(domain.PlatformLinux64)
	require.True(t, ok)
	r2, ok := inline.Resolved(domain.PlatformLinux64)
	require.True(t, ok)
	assert.Equal(t, r1.ContentHash, r2.ContentHash, "splitting out noarch packages must not change identity")

	shared.Packages = append(shared.Packages, pkg("tzdata", "2024a", "noarch"))
	assert.False(t, set.NoarchConsistent(domain.PlatformLinux64))

	_, ok = set.Resolved(domain.PlatformWin64)
	assert.False(t, ok)
}

func TestSchemaSupported(t *testing.T) {
	assert.True(t, domain.SchemaSupported(domain.LockSchemaVersion))
	assert.True(t, domain.SchemaSupported("v1.7.0"))
	assert.False(t, domain.SchemaSupported("v2.0.0"))
	assert.False(t, domain.SchemaSupported("1.0.0"))
	assert.False(t, domain.SchemaSupported(""))
}

func TestIsStale(t *testing.T) {
	spec := domain.DefaultSpec(domain.PlatformLinux64)
	doc := &domain.LockDocument{
		SchemaVersion:   domain.LockSchemaVersion,
		Platform:        domain.PlatformLinux64,
		SpecFingerprint: domain.SpecFingerprint(spec),
	}
	assert.False(t, domain.IsStale(doc, spec))

	changed, err := domain.AddDependency(spec, mustDep(t, "requests >=2.0"), false)
	require.NoError(t, err)
	assert.True(t, domain.IsStale(doc, changed))

	doc.SchemaVersion = "v9.0.0"
	assert.True(t, domain.IsStale(doc, spec))
}
