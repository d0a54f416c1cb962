package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joe/file-modifier/pkg/filesystem"
)

// FileOps provides file operations with dependency injection for filesystem access.
// This allows for testing without actual filesystem I/O.
type FileOps struct {
	FS filesystem.FileSystem
}

// NewFileOps creates a new FileOps instance with the given filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{FS: fs}
}

// NewRealFileOps creates a new FileOps instance using the real filesystem.
func NewRealFileOps() *FileOps {
	return &FileOps{FS: filesystem.NewRealFileSystem()}
}

// CopyFile copies src to dst, replacing dst if it exists. Symbolic links are
// recreated rather than followed. If cancelChan is closed mid-copy the partial
// destination is removed and ErrCancelled is returned.
//
//nolint:lll // Long function signature with channel parameter
func (fo *FileOps) CopyFile(src, dst string, progress ProgressCallback, cancelChan <-chan struct{}) (int64, error) {
	linfo, err := fo.FS.Lstat(src)
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	if linfo.Mode()&os.ModeSymlink != 0 {
		return 0, fo.copySymlink(src, dst)
	}

	sourceFile, err := fo.FS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	dstDir := filepath.Dir(dst)

	err = fo.FS.MkdirAll(dstDir, DefaultDirPermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	destFile, err := fo.FS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	copyCompleted := false

	defer func() {
		if !copyCompleted {
			_ = destFile.Close()
			_ = fo.FS.Remove(dst)
		}
	}()

	written, err := fo.copyLoop(sourceFile, destFile, sourceInfo.Size(), src, progress, cancelChan)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Close before Chtimes; network filesystems reset mtime on close.
	err = destFile.Close()
	if err != nil {
		_ = fo.FS.Remove(dst)
		copyCompleted = true

		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	copyCompleted = true

	err = fo.FS.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	return written, nil
}

// MoveFile renames src to dst, replacing dst. When the rename crosses devices
// it falls back to CopyFile followed by removing src.
//
//nolint:lll // Long function signature with channel parameter
func (fo *FileOps) MoveFile(src, dst string, progress ProgressCallback, cancelChan <-chan struct{}) error {
	err := checkCancellation(cancelChan)
	if err != nil {
		return err
	}

	err = fo.FS.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	_, err = fo.CopyFile(src, dst, progress, cancelChan)
	if err != nil {
		return err
	}

	err = fo.FS.Remove(src)
	if err != nil {
		return fmt.Errorf("copied %s but failed to remove source: %w", src, err)
	}

	return nil
}

// Remove removes a file or empty directory.
func (fo *FileOps) Remove(path string) error {
	err := fo.FS.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// RemoveIfEmpty removes dir when it has no entries. It reports whether the
// directory was removed.
func (fo *FileOps) RemoveIfEmpty(dir string) (bool, error) {
	entries, err := fo.FS.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if len(entries) > 0 {
		return false, nil
	}

	err = fo.FS.Remove(dir)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", dir, err)
	}

	return true, nil
}

// RemoveTree deletes root and everything below it in post-order: every file
// as it is encountered, each directory once its children are gone. Failures
// are reported through onEntry and do not stop the traversal. The only error
// returned is ErrCancelled.
func (fo *FileOps) RemoveTree(root string, onEntry RemoveCallback, cancelChan <-chan struct{}) error {
	if onEntry == nil {
		onEntry = func(string, bool, error) {}
	}

	return fo.removeTree(root, onEntry, cancelChan)
}

func (fo *FileOps) removeTree(dir string, onEntry RemoveCallback, cancelChan <-chan struct{}) error {
	entries, err := fo.FS.ReadDir(dir)
	if err != nil {
		onEntry(dir, true, &WalkError{Path: dir, Err: err})
		return nil
	}

	for _, entry := range entries {
		err = checkCancellation(cancelChan)
		if err != nil {
			return err
		}

		path := fo.FS.Join(dir, entry.Name())

		if entry.IsDir() {
			err = fo.removeTree(path, onEntry, cancelChan)
			if err != nil {
				return err
			}

			continue
		}

		onEntry(path, false, fo.Remove(path))
	}

	onEntry(dir, true, fo.Remove(dir))

	return nil
}

// CountFiles counts the non-directory entries below rootPath.
func (fo *FileOps) CountFiles(rootPath string) (int, error) {
	scanner := fo.FS.Scan(rootPath)
	count := 0

	for info, ok := scanner.Next(); ok; info, ok = scanner.Next() {
		if !info.IsDir {
			count++
		}
	}

	err := scanner.Err()
	if err != nil {
		return count, fmt.Errorf("failed to count files in %s: %w", rootPath, err)
	}

	return count, nil
}

// Exists reports whether anything (including a dangling symlink) exists at path.
func (fo *FileOps) Exists(path string) (bool, error) {
	_, err := fo.FS.Lstat(path)
	if err == nil {
		return true, nil
	}

	if isMissing(err) {
		return false, nil
	}

	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// Stat returns file information
func (fo *FileOps) Stat(path string) (os.FileInfo, error) {
	info, err := fo.FS.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}

func (fo *FileOps) copySymlink(src, dst string) error {
	target, err := fo.FS.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}

	err = fo.FS.Remove(dst)
	if err != nil && !isMissing(err) {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}

	err = fo.FS.Symlink(target, dst)
	if err != nil {
		return fmt.Errorf("failed to link %s: %w", dst, err)
	}

	return nil
}

// copyLoop performs the actual file copy with progress tracking.
//
//nolint:lll // Long function signature with many parameters including channel
func (fo *FileOps) copyLoop(sourceFile filesystem.File, destFile filesystem.File, sourceSize int64, srcPath string, progress ProgressCallback, cancelChan <-chan struct{}) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		err := checkCancellation(cancelChan)
		if err != nil {
			return written, err
		}

		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, werr := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
