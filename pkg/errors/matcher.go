package errors

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"
)

// PatternMatcher maps an error to a category.
type PatternMatcher interface {
	Match(err error) ErrorCategory
}

// NewPatternMatcher creates a PatternMatcher that first checks well-known
// sentinel errors and then falls back to message substrings. Rules are tried
// in order, so the first matching category wins.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		sentinels: []sentinelRule{
			{fs.ErrPermission, CategoryPermission},
			{syscall.ENOSPC, CategoryDiskSpace},
			{syscall.ENOTEMPTY, CategoryDelete},
			{fs.ErrNotExist, CategoryPath},
		},
		patterns: []patternRule{
			{CategoryName, []string{"invalid file name", "invalid name"}},
			{CategoryCrypto, []string{"authentication failed", "wrong password", "not an encrypted file"}},
			{CategoryPermission, []string{"permission denied", "access denied", "operation not permitted"}},
			{CategoryDiskSpace, []string{"no space left on device", "disk full", "quota exceeded"}},
			{CategoryDelete, []string{"directory not empty", "cannot remove"}},
			{CategoryPath, []string{"no such file or directory", "file not found", "does not exist", "not a directory"}},
			{CategoryCopy, []string{"short write", "input/output error", "i/o error"}},
		},
	}
}

type sentinelRule struct {
	target   error
	category ErrorCategory
}

type patternRule struct {
	category ErrorCategory
	patterns []string
}

type patternMatcher struct {
	sentinels []sentinelRule
	patterns  []patternRule
}

// Match returns the category of err, or CategoryUnknown.
func (m *patternMatcher) Match(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	for _, rule := range m.sentinels {
		if errors.Is(err, rule.target) {
			return rule.category
		}
	}

	lowerMsg := strings.ToLower(err.Error())

	for _, rule := range m.patterns {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}
