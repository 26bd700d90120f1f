package conda

import (
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Flavor is the kind of package manager executable.
type Flavor string

// Supported flavors, in the order auto discovery prefers them.
const (
	Micromamba Flavor = "micromamba"
	Mamba      Flavor = "mamba"
	Conda      Flavor = "conda"
)

// Executable is a located package manager.
type Executable struct {
	Path   string
	Flavor Flavor
}

// FlavorOf infers the flavor from an executable path.
func FlavorOf(path string) Flavor {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	switch {
	case strings.Contains(base, "micromamba"):
		return Micromamba
	case strings.Contains(base, "mamba"):
		return Mamba
	default:
		return Conda
	}
}

// Discover locates the package manager. preferred is "auto" or a flavor name.
// In auto mode $MAMBA_EXE and $CONDA_EXE are consulted before PATH.
func Discover(preferred string, getenv func(string) string, lookPath func(string) (string, error)) (Executable, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var candidates []string
	switch preferred {
	case "", "auto":
		candidates = []string{
			getenv("MAMBA_EXE"),
			string(Micromamba),
			string(Mamba),
			getenv("CONDA_EXE"),
			string(Conda),
		}
	default:
		candidates = []string{preferred}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		path, err := lookPath(c)
		if err != nil {
			continue
		}
		return Executable{Path: path, Flavor: FlavorOf(path)}, nil
	}
	return Executable{}, zerr.With(zerr.Wrap(domain.ErrBackendNotFound, "backend discovery"), "backend", preferred)
}
