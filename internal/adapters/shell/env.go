package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// strippedEnvVars belong to other activated environments and would make
// tools inside the coman environment resolve the wrong prefix.
var strippedEnvVars = map[string]struct{}{
	"CONDA_PREFIX":          {},
	"CONDA_DEFAULT_ENV":     {},
	"CONDA_SHLVL":           {},
	"CONDA_PROMPT_MODIFIER": {},
	"VIRTUAL_ENV":           {},
	"PYTHONHOME":            {},
	"PYTHONPATH":            {},
}

// resolveEnvironment merges the host environment with the environment's
// search path and explicit overrides, in that priority order. The result is
// sorted for reproducible child environments.
func resolveEnvironment(sysEnv, pathPrepend, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, stripped := strippedEnvVars[k]; stripped {
			continue
		}
		envMap[k] = v
	}

	if len(pathPrepend) > 0 {
		parts := slices.Clone(pathPrepend)
		if sysPath := envMap["PATH"]; sysPath != "" {
			parts = append(parts, sysPath)
		}
		envMap["PATH"] = strings.Join(parts, string(os.PathListSeparator))
	}

	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for file in the PATH of env rather than the current process.
func lookPath(file string, env []string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) {
		if err := findExecutable(file); err != nil {
			return "", err
		}
		return file, nil
	}

	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		for _, candidate := range executableNames(filepath.Join(dir, file)) {
			if err := findExecutable(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && (m&0o111 != 0 || isWindows()) {
		return nil
	}
	return os.ErrPermission
}
