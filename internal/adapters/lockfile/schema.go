package lockfile

// document is the TOML shape shared by platform and noarch lock files.
type document struct {
	SchemaVersion   string   `toml:"schema_version"`
	Platform        string   `toml:"platform"`
	SpecFingerprint string   `toml:"spec_fingerprint"`
	NoarchHash      string   `toml:"noarch_hash,omitempty"`
	Platforms       []string `toml:"platforms,omitempty"`
	Packages        []pkg    `toml:"package"`
}

// header is decoded first so files from an unsupported schema can still be
// classified without failing on fields this version does not know.
type header struct {
	SchemaVersion   string `toml:"schema_version"`
	Platform        string `toml:"platform"`
	SpecFingerprint string `toml:"spec_fingerprint"`
}

type pkg struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Build   string `toml:"build"`
	Channel string `toml:"channel"`
	Subdir  string `toml:"subdir"`
	URL     string `toml:"url"`
	SHA256  string `toml:"sha256,omitempty"`
	MD5     string `toml:"md5,omitempty"`
}
