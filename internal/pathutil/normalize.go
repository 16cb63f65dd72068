package pathutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// Normalize returns a canonical filesystem path string.
// It trims surrounding whitespace, removes trailing slashes, collapses
// "." and "..", and preserves relative paths when provided.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// Resolve returns the absolute, symlink-free form of path. When the path
// cannot be resolved (for example it no longer exists) the cleaned
// absolute path is returned instead, so lookups stay stable.
func Resolve(path string) string {
	path = Normalize(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Key returns the case-folded lookup key for a name.
func Key(name string) string {
	// A Caser keeps state, so one is built per call.
	return cases.Fold().String(strings.TrimSpace(name))
}

// Extension returns the lowercase extension of name without the leading dot.
func Extension(name string) string {
	name = strings.TrimSpace(name)
	ext := filepath.Ext(name)
	// Dotfiles like ".bashrc" have no extension.
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext[1:])
}
