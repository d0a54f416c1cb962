//go:build !unix

package filesystem

import "os"

// access falls back to the owner permission bits where access(2) is unavailable.
func access(path string, mode AccessMode) error {
	info, err := os.Stat(path)
	if err != nil {
		return err //nolint:wrapcheck // wrapped by caller
	}

	return modeAllows(info.Mode(), mode)
}
