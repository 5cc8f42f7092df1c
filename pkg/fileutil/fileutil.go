// Package fileutil provides file system helpers shared by the loader, the
// drawing builtins and the output sinks.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// FindFileCaseInsensitive searches for a file with the given name in the specified directory.
// The search is case-insensitive, so sketches written on case-insensitive
// file systems find their assets elsewhere too.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "Photo.PNG")
//	// Will find "photo.png", "PHOTO.PNG", "Photo.png", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, os.ErrNotExist)
}

// Expand expands a leading "~" in path.
func Expand(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return expanded, nil
}
