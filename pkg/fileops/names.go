package fileops

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength is the longest file name accepted, in bytes.
const MaxNameLength = 255

const reservedNameChars = `/\<>:"|?*`

// ValidateFileName rejects names that cannot be used as a single path
// component on the platforms this tool targets.
func ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	}

	for _, r := range name {
		if strings.ContainsRune(reservedNameChars, r) {
			return fmt.Errorf("%w: contains %q", ErrInvalidName, r)
		}

		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains a control character", ErrInvalidName)
		}
	}

	return nil
}

// IsValidFileName is the boolean form of ValidateFileName.
func IsValidFileName(name string) bool {
	return ValidateFileName(name) == nil
}
