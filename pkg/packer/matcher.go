package packer

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// WebOutputDir is the build output of the web UI. Paths inside it are never excluded.
const WebOutputDir = "web/dist"

var webOutputSegments = strings.Split(WebOutputDir, "/")

// PatternError is returned for ignore patterns that aren't valid globs
type PatternError struct {
	Pattern string
	Err     error
}

var _ error = (*PatternError)(nil)

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid ignore pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Matcher decides which project paths are left out of the archive
type Matcher struct {
	patterns []string
}

// NewMatcher compiles ignore patterns. A pattern matches at any depth, so "node_modules/**" also matches
// "web/node_modules/x", unless it starts with "/" or "./", which anchors it to the project root.
func NewMatcher(patterns []string) (*Matcher, error) {
	compiled := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		normalized := pattern
		anchored := false
		for _, prefix := range []string{"./", "/"} {
			if strings.HasPrefix(normalized, prefix) {
				normalized = strings.TrimPrefix(normalized, prefix)
				anchored = true
			}
		}

		glob := normalized
		if !anchored {
			glob = "**/" + normalized
		}
		if normalized == "" || !doublestar.ValidatePattern(glob) {
			return nil, &PatternError{Pattern: pattern, Err: doublestar.ErrBadPattern}
		}

		compiled = append(compiled, glob)
	}

	return &Matcher{patterns: compiled}, nil
}

// Matches reports whether relPath (relative to the project root, '/'-separated) matches an ignore pattern
func (m *Matcher) Matches(relPath string) bool {
	for _, pattern := range m.patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// Excluded applies the ignore patterns and the web output override
func (m *Matcher) Excluded(relPath string) bool {
	return m.Matches(relPath) && !IsWebOutput(relPath)
}

// IsWebOutput reports whether relPath lies in (or is) a web/dist directory at any depth
func IsWebOutput(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := 0; i+len(webOutputSegments) <= len(parts); i++ {
		found := true
		for j, segment := range webOutputSegments {
			if parts[i+j] != segment {
				found = false
				break
			}
		}

		if found {
			return true
		}
	}
	return false
}
