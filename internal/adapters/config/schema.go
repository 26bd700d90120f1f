package config

// File is the on-disk shape of the user configuration file.
type File struct {
	// EnvsRoot is the directory environments are created under.
	EnvsRoot string `yaml:"envs_root"`
	// PkgsDirs is forwarded to the package manager as its package cache.
	PkgsDirs string `yaml:"pkgs_dirs"`
	// Backend selects the package manager: auto, micromamba, mamba, conda or fake.
	Backend string `yaml:"backend"`
	// Platform overrides host platform detection.
	Platform string `yaml:"platform"`
	// Jobs bounds how many platforms are resolved in parallel.
	Jobs int `yaml:"jobs"`
	// LogFormat is "pretty" (default) or "json".
	LogFormat string `yaml:"log_format"`
}
