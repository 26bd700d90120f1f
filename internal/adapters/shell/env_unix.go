//go:build !windows

package shell

func isWindows() bool { return false }

func executableNames(path string) []string {
	return []string{path}
}
