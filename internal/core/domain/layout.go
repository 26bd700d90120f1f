package domain

import (
	"os"
	"path/filepath"
)

const (
	// SpecFileName is the name of the project specification file.
	SpecFileName = "environment.yml"

	// LockFilePrefix is the prefix shared by all lock files.
	LockFilePrefix = "coman-"

	// LockFileExt is the extension shared by all lock files.
	LockFileExt = ".lock"

	// LockFileGlob matches every lock file in a project directory.
	LockFileGlob = LockFilePrefix + "*" + LockFileExt

	// MarkerFileName is the name of the consistency marker inside a materialized environment.
	MarkerFileName = ".coman-marker.json"

	// LocksDirName is the directory under the environments root holding project lock files.
	LocksDirName = ".locks"

	// CatalogFileName is the name of the environment catalog database under the environments root.
	CatalogFileName = ".coman-catalog.db"

	// ComanDirName is the name of the per-user coman directory.
	ComanDirName = ".coman"

	// EnvsDirName is the name of the environments directory inside the coman home.
	EnvsDirName = "envs"

	// ConfigDirName is the name of the coman directory under the user config directory.
	ConfigDirName = "coman"

	// ConfigFileName is the name of the user configuration file.
	ConfigFileName = "config.yaml"

	// DefaultChannel is the channel used by a freshly initialized specification.
	DefaultChannel = "conda-forge"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// LockFileName returns the lock file name for a platform.
// The noarch platform names the shared lock file.
func LockFileName(p Platform) string {
	return LockFilePrefix + string(p) + LockFileExt
}

// DefaultEnvsRoot returns ~/.coman/envs, or a relative .coman/envs if the home
// directory cannot be determined.
func DefaultEnvsRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(ComanDirName, EnvsDirName)
	}
	return filepath.Join(home, ComanDirName, EnvsDirName)
}

// DefaultConfigPath returns the path of the user configuration file.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(ComanDirName, ConfigFileName)
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}

// ProjectLocksPath returns the directory holding advisory lock files.
func ProjectLocksPath(envsRoot string) string {
	return filepath.Join(envsRoot, LocksDirName)
}

// CatalogPath returns the path of the environment catalog database.
func CatalogPath(envsRoot string) string {
	return filepath.Join(envsRoot, CatalogFileName)
}
