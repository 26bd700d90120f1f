// Package config resolves user settings and locates projects.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the configuration.
const (
	BackendAuto       = "auto"
	BackendMicromamba = "micromamba"
	BackendMamba      = "mamba"
	BackendConda      = "conda"
	BackendFake       = "fake"
)

var knownBackends = []string{BackendAuto, BackendMicromamba, BackendMamba, BackendConda, BackendFake}

// Loader implements ports.ConfigLoader from a YAML file and the environment.
type Loader struct {
	Logger ports.Logger
	// Getenv reads environment variables. Tests replace it.
	Getenv func(string) string
	// Path is the configuration file. Empty uses COMAN_CONFIG or the default location.
	Path string
	// GOOS and GOARCH identify the host.
	GOOS, GOARCH string
}

// NewLoader creates a Loader reading the process environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger: logger,
		Getenv: os.Getenv,
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
	}
}

// Settings merges the configuration file with environment overrides.
func (l *Loader) Settings() (*domain.Settings, error) {
	file, err := l.readFile()
	if err != nil {
		return nil, err
	}

	s := &domain.Settings{
		EnvsRoot: l.envsRoot(file),
		PkgsDirs: firstNonEmpty(l.Getenv("COMAN_PKGS_DIRS"), l.Getenv("CONDA_PKGS_DIRS"), file.PkgsDirs),
		Backend:  strings.ToLower(firstNonEmpty(l.Getenv("COMAN_BACKEND"), file.Backend, BackendAuto)),
		Jobs:     max(file.Jobs, 1),
		JSON:     strings.EqualFold(firstNonEmpty(l.Getenv("COMAN_LOG_FORMAT"), file.LogFormat), "json"),
	}

	if !slices.Contains(knownBackends, s.Backend) {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigFormat, fmt.Sprintf("unknown backend %q", s.Backend)),
			"valid", strings.Join(knownBackends, ", "))
	}

	if raw := l.Getenv("COMAN_JOBS"); raw != "" {
		jobs, err := strconv.Atoi(raw)
		if err != nil || jobs < 1 {
			return nil, zerr.Wrap(domain.ErrConfigFormat, fmt.Sprintf("COMAN_JOBS must be a positive integer, got %q", raw))
		}
		s.Jobs = jobs
	}

	platform := firstNonEmpty(l.Getenv("COMAN_PLATFORM"), file.Platform)
	if platform == "" {
		host, err := domain.HostPlatform(l.GOOS, l.GOARCH)
		if err != nil {
			return nil, err
		}
		s.Platform = host
	} else {
		p, err := domain.ParsePlatform(platform)
		if err != nil {
			return nil, zerr.Wrap(err, "platform override")
		}
		s.Platform = p
	}

	return s, nil
}

// FindProject walks up from start to the first directory containing the
// specification file.
func (l *Loader) FindProject(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, domain.SpecFileName)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(zerr.Wrap(domain.ErrSpecNotFound, "project lookup"), "cwd", start)
		}
		dir = parent
	}
}

func (l *Loader) configPath() string {
	if l.Path != "" {
		return l.Path
	}
	if p := l.Getenv("COMAN_CONFIG"); p != "" {
		return p
	}
	return domain.DefaultConfigPath()
}

func (l *Loader) readFile() (File, error) {
	var file File
	path := l.configPath()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own environment
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, zerr.With(zerr.Wrap(err, "failed to read configuration"), "path", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		wrapped := zerr.Wrap(domain.ErrConfigFormat, err.Error())
		return file, zerr.With(wrapped, "path", path)
	}
	if file.Jobs < 0 {
		return file, zerr.With(zerr.Wrap(domain.ErrConfigFormat, "jobs must not be negative"), "path", path)
	}
	return file, nil
}

// envsRoot applies the precedence COMAN_ENVS_PATH, CONDA_ENVS_PATH,
// $MAMBA_ROOT_PREFIX/envs, the config file, then the default.
func (l *Loader) envsRoot(file File) string {
	root := l.Getenv("COMAN_ENVS_PATH")
	if root == "" {
		// CONDA_ENVS_PATH may list several directories; the first one wins.
		if list := filepath.SplitList(l.Getenv("CONDA_ENVS_PATH")); len(list) > 0 {
			root = list[0]
			if len(list) > 1 && l.Logger != nil {
				l.Logger.Warn(fmt.Sprintf("CONDA_ENVS_PATH lists %d directories, using %s", len(list), root))
			}
		}
	}
	if root == "" {
		if prefix := l.Getenv("MAMBA_ROOT_PREFIX"); prefix != "" {
			root = filepath.Join(prefix, domain.EnvsDirName)
		}
	}
	if root == "" {
		root = file.EnvsRoot
	}
	if root == "" {
		return domain.DefaultEnvsRoot()
	}

	root = expandHome(root)
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
