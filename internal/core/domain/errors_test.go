package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name: "resolution",
			err: &domain.ResolutionError{
				Platform:  domain.PlatformWin64,
				Conflicts: []domain.Conflict{{Package: "python", Constraint: "=2.7", RequiredBy: []string{"numpy >=2"}}},
			},
			sentinel: domain.ErrResolution,
			message:  "dependencies could not be resolved for win-64: python =2.7 (required by numpy >=2)",
		},
		{
			name:     "resolution detail",
			err:      &domain.ResolutionError{Platform: domain.PlatformLinux64, Detail: "nothing provides foo"},
			sentinel: domain.ErrResolution,
			message:  "dependencies could not be resolved for linux-64: nothing provides foo",
		},
		{
			name: "partial install",
			err: &domain.InstallPartialFailure{
				Platform: domain.PlatformLinux64,
				Failed:   []domain.FailedPackage{{Name: "zlib", Reason: "checksum mismatch"}, {Name: "idna"}},
			},
			sentinel: domain.ErrInstallPartial,
			message:  "environment installation incomplete for linux-64: 2 package(s) failed: zlib (checksum mismatch), idna",
		},
		{
			name:     "not found",
			err:      &domain.NotFoundError{Name: "nmupy", Suggestions: []string{"numpy"}},
			sentinel: domain.ErrDependencyNotFound,
			message:  "dependency not declared: nmupy (did you mean numpy?)",
		},
		{
			name:     "command",
			err:      &domain.CommandError{Args: []string{"python", "-c", "exit(3)"}, Code: 3},
			sentinel: domain.ErrCommandFailed,
			message:  "command failed: python exited with status 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.message, tt.err.Error())

			wrapped := zerr.With(zerr.Wrap(tt.err, "install"), "project", "/work/demo")
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestCommandErrorAs(t *testing.T) {
	err := zerr.Wrap(&domain.CommandError{Args: []string{"false"}, Code: 1}, "run")
	var ce *domain.CommandError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Code)
}
