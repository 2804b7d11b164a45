package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const DefaultStateDir = "~/.text2cw"

// ExpandHomePath replaces a leading ~ with the home directory.
func ExpandHomePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// ResolveStateDir returns the expanded state dir, DefaultStateDir when empty.
func ResolveStateDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultStateDir
	}
	return filepath.Clean(ExpandHomePath(dir))
}

// ResolveStateChildDir resolves a directory configured by name. An absolute
// or ~ path is used as is, a relative one lives under the state dir.
func ResolveStateChildDir(stateDir, name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	name = ExpandHomePath(name)
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(ResolveStateDir(stateDir), name)
}

// ResolveStateFile resolves a file like ResolveStateChildDir.
func ResolveStateFile(stateDir, name string) string {
	return ResolveStateChildDir(stateDir, name, "")
}
