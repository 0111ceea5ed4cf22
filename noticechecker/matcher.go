package main

import (
	"os"
	"path"
	"strings"
)

// PathMatcher matches slash-separated relative paths against ignore-style
// patterns. Matching anchors at the right: the last pattern segment must
// match the last path segment, and unmatched leading path segments are
// fine unless the pattern starts with /. A ** segment spans any number of
// path segments.
type PathMatcher struct {
	patterns []string
}

func NewPathMatcher(patterns ...string) *PathMatcher {
	return &PathMatcher{patterns: patterns}
}

// NewPathMatcherFromFile reads patterns in the .gitignore manner: one per
// line, blank lines and # comments discarded. A missing file is an empty
// matcher.
func NewPathMatcherFromFile(filePath string) (*PathMatcher, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewPathMatcher(), nil
		}
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		stripped := strings.TrimSpace(line)
		if stripped != "" && !strings.HasPrefix(stripped, "#") {
			patterns = append(patterns, stripped)
		}
	}
	return NewPathMatcher(patterns...), nil
}

// Match returns the first pattern that matches filePath, or the empty
// string.
func (m *PathMatcher) Match(filePath string) string {
	for _, pattern := range m.patterns {
		if matchPattern(filePath, pattern) {
			return pattern
		}
	}
	return ""
}

// matchPattern works through the pattern segments from the right. Each
// plain segment must match the current path segment, path.Match style. A
// ** segment skips path segments until one matches the segment to its
// left, which then gets compared again on the next turn of the loop, or
// matches everything that's left when the pattern starts with it.
func matchPattern(filePath, pattern string) bool {
	pathParts := strings.Split(filePath, "/")
	patternParts := strings.Split(path.Clean(pattern), "/")
	pathIndex := len(pathParts) - 1

	for patternIndex := len(patternParts) - 1; patternIndex >= 0; patternIndex-- {
		patternPart := patternParts[patternIndex]
		if patternPart == "**" {
			if patternIndex == 0 {
				return true
			}
			needle := patternParts[patternIndex-1]
			if needle == "**" {
				continue // Collapse **/** to **.
			}
			// Stop at zero: the needle segment gets its own comparison
			// next time around.
			for pathIndex > 0 {
				if matched, _ := path.Match(
					needle, pathParts[pathIndex]); matched {
					break
				}
				pathIndex--
			}
			continue
		}
		if pathIndex >= 0 {
			if matched, _ := path.Match(
				patternPart, pathParts[pathIndex]); matched {
				pathIndex--
				continue
			}
		}
		return false
	}
	return true
}
