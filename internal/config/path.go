package config

import (
	"os"
	"path/filepath"
)

// DefaultMountDir returns the default removable-media mount path based on
// the host OS conventions, falling back to a local directory.
func DefaultMountDir() string {
	// Common Linux removable-media roots.
	for _, base := range []string{"/media", "/run/media", "/mnt"} {
		if isDir(filepath.Join(base, "umod4")) {
			return filepath.Join(base, "umod4")
		}
	}

	// macOS removable volumes.
	if isDir("/Volumes/UMOD4") {
		return "/Volumes/UMOD4"
	}

	return "./mnt/umod4"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
