// Package fileops provides the filesystem primitives the operation engine is
// built from: tree flattening, destination conflict detection, and file
// copy/move/remove with progress and cancellation.
package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (64KB)
	BufferSize = 64 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// Exported variables.
var (
	ErrCancelled    = errors.New("cancelled")
	ErrNotDirectory = errors.New("not a directory")
	ErrInvalidName  = errors.New("invalid file name")
)

// ProgressCallback is called during file operations to report progress
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// RemoveCallback is called for every entry RemoveTree attempts to delete.
// err is nil when the entry was removed.
type RemoveCallback func(path string, isDir bool, err error)

// WalkError reports an I/O failure while enumerating a directory tree.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("failed to enumerate %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// checkCancellation checks if the operation has been cancelled.
func checkCancellation(cancelChan <-chan struct{}) error {
	if cancelChan == nil {
		return nil
	}

	select {
	case <-cancelChan:
		return ErrCancelled
	default:
		return nil
	}
}

// isMissing reports whether err means nothing exists at the path, including
// the case where a parent component is a file.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// isCrossDevice reports whether a rename failed because source and
// destination are on different devices.
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
