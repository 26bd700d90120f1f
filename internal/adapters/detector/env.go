// Package detector picks the progress output mode for a terminal or CI run.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is the way reconciliation progress is presented.
type OutputMode int

const (
	// ModeAuto detects the mode from the environment.
	ModeAuto OutputMode = iota
	// ModeProgress streams per-step progress through the linear renderer.
	ModeProgress
	// ModePlain prints only log lines and results.
	ModePlain
	// ModeTUI shows the interactive step view. It is never auto-detected.
	ModeTUI
)

// DetectEnvironment returns ModeProgress when stderr is a terminal and the
// process is not running under CI.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	if !isTTY || ci == "true" || ci == "1" {
		return ModePlain
	}
	return ModeProgress
}

// ResolveMode applies the --output flag ("auto", "progress", "plain", "ci",
// "tui") to the detected mode. Unknown values keep the detected mode.
func ResolveMode(detected OutputMode, flag string) OutputMode {
	switch flag {
	case "tui":
		return ModeTUI
	case "progress":
		return ModeProgress
	case "plain", "ci":
		return ModePlain
	default:
		return detected
	}
}
