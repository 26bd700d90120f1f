package shell

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// ErrUnsupportedShell is returned for a shell without an activation hook.
var ErrUnsupportedShell = zerr.New("unsupported shell")

// Shells lists the shells Hook can render for.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// DetectShell guesses the user's shell from $SHELL, defaulting to powershell
// on Windows and bash elsewhere.
func DetectShell(getenv func(string) string, goos string) string {
	if sh := getenv("SHELL"); sh != "" {
		name := strings.TrimSuffix(filepath.Base(sh), ".exe")
		switch name {
		case "pwsh":
			return "powershell"
		case "bash", "zsh", "fish", "powershell":
			return name
		}
	}
	if goos == "windows" {
		return "powershell"
	}
	return "bash"
}

// Hook renders the statements that activate an environment in shell: the
// environment's search path is prepended to PATH and every Env entry of
// activation is exported.
func Hook(shell string, activation domain.Command) (string, error) {
	var b strings.Builder
	switch shell {
	case "bash", "zsh":
		if len(activation.PathPrepend) > 0 {
			quoted := make([]string, 0, len(activation.PathPrepend))
			for _, p := range activation.PathPrepend {
				quoted = append(quoted, posixQuote(p))
			}
			b.WriteString("export PATH=" + strings.Join(quoted, ":") + `:"$PATH"` + "\n")
		}
		for _, kv := range activation.Env {
			k, v, _ := strings.Cut(kv, "=")
			b.WriteString("export " + k + "=" + posixQuote(v) + "\n")
		}
	case "fish":
		if len(activation.PathPrepend) > 0 {
			b.WriteString("set -gx PATH")
			for _, p := range activation.PathPrepend {
				b.WriteString(" " + posixQuote(p))
			}
			b.WriteString(" $PATH\n")
		}
		for _, kv := range activation.Env {
			k, v, _ := strings.Cut(kv, "=")
			b.WriteString("set -gx " + k + " " + posixQuote(v) + "\n")
		}
	case "powershell":
		if len(activation.PathPrepend) > 0 {
			joined := strings.Join(activation.PathPrepend, string(os.PathListSeparator)) + string(os.PathListSeparator)
			b.WriteString("$env:PATH = " + psQuote(joined) + " + $env:PATH\n")
		}
		for _, kv := range activation.Env {
			k, v, _ := strings.Cut(kv, "=")
			b.WriteString("$env:" + k + " = " + psQuote(v) + "\n")
		}
	default:
		return "", zerr.With(zerr.Wrap(ErrUnsupportedShell, "render hook"), "shell", shell)
	}
	return b.String(), nil
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
