package scanner

import (
	"path"
	"path/filepath"
	"strings"
)

// Match reports whether the slash separated relative path rel matches
// pattern. A "**" segment matches zero or more directories, the other
// segments follow path.Match. A pattern ending in "/" matches everything
// below that directory.
func Match(pattern, rel string) bool {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			// Collapse repeated ** segments
			for len(pattern) > 0 && pattern[0] == "**" {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := range parts {
				if matchSegments(pattern, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		matched, err := path.Match(pattern[0], parts[0])
		if err != nil || !matched {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

// containsGlobChars checks if a pattern contains glob special characters
func containsGlobChars(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// IsExcluded checks if a path matches any of the exclude patterns
func IsExcluded(rel string, excludes []string) bool {
	for _, pattern := range excludes {
		if matchAny(pattern, rel) {
			return true
		}
	}
	return false
}

// matchAny matches the pattern against the path, or against the file
// name when the pattern has no directory part and no wildcards.
func matchAny(pattern, rel string) bool {
	if Match(pattern, rel) {
		return true
	}
	if !strings.Contains(pattern, "/") && !containsGlobChars(pattern) {
		return path.Base(filepath.ToSlash(rel)) == pattern
	}
	return false
}
