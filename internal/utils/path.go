// Package utils provides path handling helpers shared by the CLI and
// the public facade.
package utils

import (
	"os"
	"path/filepath"
)

// CanonicalizePath converts a path to its canonical form: absolute,
// with symlinks resolved. If either step fails it falls back to the
// best available form.
func CanonicalizePath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	canonical, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath
	}
	return canonical
}

// FindDataDir discovers the spool data directory:
//  1. $SPOOL_DATA_DIR
//  2. .spool/ in the current directory or an ancestor
//
// Returns empty string if neither exists.
func FindDataDir() string {
	if envDir := os.Getenv("SPOOL_DATA_DIR"); envDir != "" {
		return CanonicalizePath(envDir)
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		spoolDir := filepath.Join(dir, ".spool")
		if info, err := os.Stat(spoolDir); err == nil && info.IsDir() {
			return spoolDir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
