package scan

import (
	"path/filepath"
	"strings"
)

// Matches reports whether path matches any of the glob patterns. A pattern
// in the **/name form matches a directory literally named that way at any
// depth: the name is tried against the final path segment and against each
// individual path component, in addition to the full path string.
func Matches(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	base := filepath.Base(path)
	parts := splitComponents(path)

	for _, pattern := range patterns {
		name := strings.ReplaceAll(pattern, "**/", "")
		name = strings.ReplaceAll(name, "**", "")

		if name != "" {
			if ok, _ := filepath.Match(name, base); ok {
				return true
			}
			for _, part := range parts {
				if ok, _ := filepath.Match(name, part); ok {
					return true
				}
			}
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func splitComponents(path string) []string {
	sep := string(filepath.Separator)
	trimmed := strings.Trim(path, sep)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, sep)
}
