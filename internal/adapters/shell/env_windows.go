//go:build windows

package shell

import (
	"os"
	"path/filepath"
	"strings"
)

func isWindows() bool { return true }

func executableNames(path string) []string {
	if filepath.Ext(path) != "" {
		return []string{path}
	}
	exts := os.Getenv("PATHEXT")
	if exts == "" {
		exts = ".COM;.EXE;.BAT;.CMD"
	}
	names := []string{}
	for _, ext := range strings.Split(strings.ToLower(exts), ";") {
		if ext != "" {
			names = append(names, path+ext)
		}
	}
	return names
}
