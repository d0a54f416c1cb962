// Package errors turns low-level filesystem and crypto failures into
// user-facing messages with a category and a few concrete suggestions.
//
//	enricher := errors.NewEnricher()
//	if err := fs.Remove(path); err != nil {
//	    msg := enricher.Enrich(err, path)
//	    fmt.Println(msg.Error())
//	    fmt.Println(errors.FormatSuggestions(msg))
//	}
package errors

import (
	"errors"
	"strings"
)

// Exported constants.
const (
	CategoryCopy       ErrorCategory = "copy"
	CategoryCrypto     ErrorCategory = "crypto"
	CategoryDelete     ErrorCategory = "delete"
	CategoryDiskSpace  ErrorCategory = "disk_space"
	CategoryName       ErrorCategory = "name"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        errors.New(originalError), //nolint:err113 // message-only error
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list
// for display in the TUI. Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	var actionable ActionableError
	if err == nil || !errors.As(err, &actionable) {
		return ""
	}

	var builder strings.Builder

	for i, suggestion := range actionable.Suggestions() {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
// It keeps the cause so errors.Is still sees the original sentinel.
type actionableError struct {
	cause        error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

func (e *actionableError) AffectedPath() string    { return e.affectedPath }
func (e *actionableError) Category() ErrorCategory { return e.category }
func (e *actionableError) Error() string           { return e.cause.Error() }
func (e *actionableError) OriginalError() string   { return e.cause.Error() }
func (e *actionableError) Suggestions() []string   { return e.suggestions }
func (e *actionableError) Unwrap() error           { return e.cause }
