package filesystem

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/sftp"
)

// SFTPFileSystem implements FileSystem over a single SFTP session.
type SFTPFileSystem struct {
	conn   *SFTPConnection
	client *sftp.Client
}

// NewSFTPFileSystem creates a new SFTP filesystem using an established connection.
func NewSFTPFileSystem(conn *SFTPConnection) *SFTPFileSystem {
	return &SFTPFileSystem{
		conn:   conn,
		client: conn.Client(),
	}
}

// Access approximates access(2) with the owner bits reported by the server.
// The server still enforces its own checks when the mutation happens.
func (fs *SFTPFileSystem) Access(path string, mode AccessMode) error {
	info, err := fs.client.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat remote file %s: %w", path, err)
	}

	if err := modeAllows(info.Mode(), mode); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	return nil
}

// Chtimes changes the access and modification times of a remote file.
func (fs *SFTPFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	err := fs.client.Chtimes(path, atime, mtime)
	if err != nil {
		return fmt.Errorf("failed to change times for remote file %s: %w", path, err)
	}

	return nil
}

// Close closes the SFTP session and SSH connection.
func (fs *SFTPFileSystem) Close() error {
	if fs.conn != nil {
		return fs.conn.Close()
	}

	return nil
}

// Create creates a remote file for writing.
func (fs *SFTPFileSystem) Create(path string) (File, error) {
	file, err := fs.client.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file %s: %w", path, err)
	}

	return file, nil
}

// Join joins remote path elements with forward slashes.
func (fs *SFTPFileSystem) Join(elem ...string) string {
	return fs.client.Join(elem...)
}

// Lstat returns remote file information without following a final link.
func (fs *SFTPFileSystem) Lstat(path string) (os.FileInfo, error) {
	info, err := fs.client.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat remote file %s: %w", path, err)
	}

	return info, nil
}

// Mkdir creates a single remote directory. perm is left to the server's umask.
func (fs *SFTPFileSystem) Mkdir(path string, _ os.FileMode) error {
	err := fs.client.Mkdir(path)
	if err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", path, err)
	}

	return nil
}

// MkdirAll creates a remote directory and all necessary parents.
func (fs *SFTPFileSystem) MkdirAll(path string, _ os.FileMode) error {
	err := fs.client.MkdirAll(path)
	if err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", path, err)
	}

	return nil
}

// Open opens a remote file for reading.
func (fs *SFTPFileSystem) Open(path string) (File, error) {
	file, err := fs.client.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", path, err)
	}

	return file, nil
}

// ReadDir lists a remote directory; entries come back lstat'ed and sorted.
func (fs *SFTPFileSystem) ReadDir(path string) ([]os.FileInfo, error) {
	infos, err := fs.client.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote directory %s: %w", path, err)
	}

	return infos, nil
}

// Readlink returns the target of a remote symlink.
func (fs *SFTPFileSystem) Readlink(path string) (string, error) {
	target, err := fs.client.ReadLink(path)
	if err != nil {
		return "", fmt.Errorf("failed to read remote link %s: %w", path, err)
	}

	return target, nil
}

// Remove removes a remote file or empty directory.
func (fs *SFTPFileSystem) Remove(path string) error {
	err := fs.client.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", path, err)
	}

	return nil
}

// Rename uses the posix-rename extension so an existing destination is replaced.
func (fs *SFTPFileSystem) Rename(oldPath, newPath string) error {
	err := fs.client.PosixRename(oldPath, newPath)
	if err != nil {
		return fmt.Errorf("failed to rename remote file %s to %s: %w", oldPath, newPath, err)
	}

	return nil
}

// Scan lists a remote tree through this filesystem's ReadDir and Lstat.
func (fs *SFTPFileSystem) Scan(path string) FileScanner {
	return walkScanner(fs, path)
}

// Stat returns file information for a remote file.
func (fs *SFTPFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := fs.client.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote file %s: %w", path, err)
	}

	return info, nil
}

// Symlink creates a remote symlink.
func (fs *SFTPFileSystem) Symlink(target, link string) error {
	err := fs.client.Symlink(target, link)
	if err != nil {
		return fmt.Errorf("failed to create remote symlink %s: %w", link, err)
	}

	return nil
}
