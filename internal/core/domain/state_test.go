package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/coman/internal/core/domain"
)

func TestClassify(t *testing.T) {
	const fp = "aaaaaaaaaaaa"
	lock := &domain.LockDocument{
		SchemaVersion:   domain.LockSchemaVersion,
		Platform:        domain.PlatformLinux64,
		SpecFingerprint: fp,
	}
	marker := domain.Marker{
		Present:         true,
		LockContentHash: "hash-1",
		Platform:        domain.PlatformLinux64,
	}
	inSync := domain.Observation{
		Platform:        domain.PlatformLinux64,
		Lock:            lock,
		NoarchOK:        true,
		SpecFingerprint: fp,
		EnvExists:       true,
		Marker:          marker,
		LockContentHash: "hash-1",
	}

	tests := []struct {
		name   string
		mutate func(o *domain.Observation)
		want   domain.State
	}{
		{"in sync", func(*domain.Observation) {}, domain.InSync},
		{"lock missing wins over everything", func(o *domain.Observation) {
			o.Lock = nil
			o.EnvExists = false
		}, domain.LockMissing},
		{"fingerprint mismatch", func(o *domain.Observation) { o.SpecFingerprint = "bbbbbbbbbbbb" }, domain.LockStale},
		{"unsupported schema", func(o *domain.Observation) {
			old := *lock
			old.SchemaVersion = "v2.0.0"
			o.Lock = &old
		}, domain.LockStale},
		{"noarch companion changed", func(o *domain.Observation) { o.NoarchOK = false }, domain.LockStale},
		{"lock stale before env missing", func(o *domain.Observation) {
			o.SpecFingerprint = "bbbbbbbbbbbb"
			o.EnvExists = false
		}, domain.LockStale},
		{"env missing", func(o *domain.Observation) { o.EnvExists = false }, domain.EnvMissing},
		{"marker missing", func(o *domain.Observation) { o.Marker = domain.Marker{} }, domain.EnvStale},
		{"marker hash differs", func(o *domain.Observation) { o.LockContentHash = "hash-2" }, domain.EnvStale},
		{"marker platform differs", func(o *domain.Observation) { o.Marker.Platform = domain.PlatformOSX64 }, domain.EnvStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := inSync
			tt.mutate(&o)
			assert.Equal(t, tt.want, domain.Classify(o))
		})
	}
}

func TestState(t *testing.T) {
	assert.Equal(t, "lock-stale", domain.LockStale.String())
	assert.Equal(t, "unknown", domain.State(42).String())

	assert.True(t, domain.SpecChanged.NeedsLock())
	assert.True(t, domain.LockMissing.NeedsLock())
	assert.False(t, domain.EnvMissing.NeedsLock())
	assert.True(t, domain.EnvStale.NeedsInstall())
	assert.False(t, domain.InSync.NeedsInstall())
}
