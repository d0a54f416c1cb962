package engine

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFilter excludes entries from folder copies and moves by glob pattern.
// Patterns without a separator also match against the base name, so "*.tmp"
// excludes temporary files at any depth.
type GlobFilter struct {
	normalizedPattern string
	matchBase         bool
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern.
// An empty pattern excludes nothing.
func NewGlobFilter(pattern string) *GlobFilter {
	normalized := strings.ToLower(filepath.ToSlash(pattern))

	return &GlobFilter{
		normalizedPattern: normalized,
		matchBase:         !strings.Contains(normalized, "/"),
		isEmpty:           pattern == "",
	}
}

// Valid reports whether the pattern is well-formed.
func (f *GlobFilter) Valid() bool {
	return f.isEmpty || doublestar.ValidatePattern(f.normalizedPattern)
}

// Excludes reports whether the entry at relativePath should be left out.
// Matching is case-insensitive.
func (f *GlobFilter) Excludes(relativePath string) bool {
	if f.isEmpty {
		return false
	}

	normalizedPath := strings.ToLower(filepath.ToSlash(strings.TrimLeft(relativePath, `/\`)))

	matched, err := doublestar.Match(f.normalizedPattern, normalizedPath)
	if err != nil {
		return false
	}

	if !matched && f.matchBase {
		matched, _ = doublestar.Match(f.normalizedPattern, filepath.Base(normalizedPath))
	}

	return matched
}

// ExcludesPath reports whether relativePath or any directory above it is excluded.
func (f *GlobFilter) ExcludesPath(relativePath string) bool {
	if f.isEmpty {
		return false
	}

	rel := strings.TrimLeft(filepath.ToSlash(relativePath), "/")

	for rel != "" && rel != "." {
		if f.Excludes(rel) {
			return true
		}

		rel = path.Dir(rel)
	}

	return false
}
