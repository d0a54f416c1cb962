//go:build unix

package filesystem

import "golang.org/x/sys/unix"

func access(path string, mode AccessMode) error {
	return unix.Access(path, uint32(mode)) //nolint:wrapcheck // wrapped by caller
}
