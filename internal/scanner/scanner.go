// Package scanner finds the stylesheets and scripts of a directory tree.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDirectory is returned when the input path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// DefaultIncludes are used when no include pattern is configured.
var DefaultIncludes = []string{"**/*.css", "**/*.js"}

// Files holds the scanned files as full paths, sorted lexicographically.
type Files struct {
	CSS []string
	JS  []string
}

// Empty reports whether nothing was found.
func (f Files) Empty() bool {
	return len(f.CSS) == 0 && len(f.JS) == 0
}

// Under returns the files located below dir.
func (f Files) Under(dir string) Files {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out Files
	for _, p := range f.CSS {
		if strings.HasPrefix(p, prefix) {
			out.CSS = append(out.CSS, p)
		}
	}
	for _, p := range f.JS {
		if strings.HasPrefix(p, prefix) {
			out.JS = append(out.JS, p)
		}
	}
	return out
}

// Scan walks dir and returns the CSS and JS files matching at least one
// include pattern and no exclude pattern. Patterns are relative to dir.
// Extensions are matched case-insensitively.
func Scan(dir string, includes, excludes []string) (Files, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Files{}, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if !info.IsDir() {
		return Files{}, fmt.Errorf("scanning %s: %w", dir, ErrNotDirectory)
	}
	if len(includes) == 0 {
		includes = DefaultIncludes
	}

	var files Files
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if !included(rel, includes) || IsExcluded(rel, excludes) {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".css":
			files.CSS = append(files.CSS, path)
		case ".js":
			files.JS = append(files.JS, path)
		}
		return nil
	})
	if err != nil {
		return Files{}, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Strings(files.CSS)
	sort.Strings(files.JS)
	return files, nil
}

func included(rel string, includes []string) bool {
	for _, pattern := range includes {
		if matchAny(pattern, rel) {
			return true
		}
	}
	return false
}

// SubDirs returns the immediate sub-directories of dir, sorted.
func SubDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs, nil
}
