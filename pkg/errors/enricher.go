package errors

import (
	"errors"
	"regexp"
	"strings"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates a new Enricher with default pattern matcher and suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

//nolint:gochecknoglobals // Compiled once and shared by every enricher
var pathExtractionPatterns = []*regexp.Regexp{
	// "open /path/to/file: permission denied"
	regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
	// Windows paths with backslashes
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
	// Windows paths with forward slashes
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
}

type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich takes a standard error and enriches it with category and actionable suggestions.
// If the error is already an ActionableError, it is returned unchanged.
// If affectedPath is empty, attempts to extract a path from the error message.
func (e *enricher) Enrich(err error, affectedPath string) error {
	if err == nil {
		return nil
	}

	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	if affectedPath == "" {
		affectedPath = extractPath(err.Error())
	}

	category := e.matcher.Match(err)

	return &actionableError{
		cause:        err,
		category:     category,
		suggestions:  e.generator.Generate(category, affectedPath),
		affectedPath: affectedPath,
	}
}

// extractPath pulls the path out of "verb /some/path: reason" style messages.
func extractPath(errorMsg string) string {
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			path := strings.TrimSpace(matches[1])
			if path != "" {
				return path
			}
		}
	}

	return ""
}
