package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/coman/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  detector.OutputMode
	}{
		{name: "terminal", isTTY: true, want: detector.ModeProgress},
		{name: "pipe", isTTY: false, want: detector.ModePlain},
		{name: "CI=true", isTTY: true, ci: "true", want: detector.ModePlain},
		{name: "CI=1", isTTY: true, ci: "1", want: detector.ModePlain},
		{name: "CI=false", isTTY: true, ci: "false", want: detector.ModeProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.DetectForTest(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModePlain, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name     string
		detected detector.OutputMode
		flag     string
		want     detector.OutputMode
	}{
		{"auto keeps progress", detector.ModeProgress, "auto", detector.ModeProgress},
		{"empty keeps plain", detector.ModePlain, "", detector.ModePlain},
		{"progress overrides", detector.ModePlain, "progress", detector.ModeProgress},
		{"plain overrides", detector.ModeProgress, "plain", detector.ModePlain},
		{"ci is plain", detector.ModeProgress, "ci", detector.ModePlain},
		{"tui overrides", detector.ModePlain, "tui", detector.ModeTUI},
		{"unknown keeps detected", detector.ModeProgress, "fancy", detector.ModeProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.detected, tt.flag))
		})
	}
}
