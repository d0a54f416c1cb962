package filesystem

import (
	"errors"
	"fmt"
)

// ErrMixedFileSystems is returned when a destination lives on a different
// filesystem than the target. Operations run against one FileSystem.
var ErrMixedFileSystems = errors.New("target and destination must be on the same filesystem")

// CreateFileSystem creates a FileSystem for the given path.
// Returns (filesystem, basePath, closer, error).
// - filesystem: The FileSystem to use for operations
// - basePath: The actual path to use with the filesystem (stripped of URL prefix)
// - closer: A function to call when done (closes SFTP connections), or nil for local
func CreateFileSystem(pathStr string) (FileSystem, string, func(), error) {
	parsed, err := ParsePath(pathStr)
	if err != nil {
		return nil, "", nil, err
	}

	if !parsed.IsRemote {
		return NewRealFileSystem(), parsed.LocalPath, nil, nil
	}

	conn, err := Connect(parsed)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to %s@%s: %w", parsed.User, parsed.Address(), err)
	}

	fs := NewSFTPFileSystem(conn)
	closer := func() {
		_ = fs.Close()
	}

	return fs, parsed.Path, closer, nil
}

// ResolveOperationPaths opens the filesystem holding target and maps an
// optional destination onto it. A destination may be a plain path (taken as a
// path on the target's filesystem) or a URL naming the same remote.
func ResolveOperationPaths(target, dest string) (
	fs FileSystem,
	targetPath string,
	destPath string,
	closer func(),
	err error,
) {
	fs, targetPath, closer, err = CreateFileSystem(target)
	if err != nil {
		return nil, "", "", nil, fmt.Errorf("failed to open target filesystem: %w", err)
	}

	if dest == "" {
		return fs, targetPath, "", closer, nil
	}

	targetParsed, _ := ParsePath(target)

	destParsed, err := ParsePath(dest)
	if err != nil {
		if closer != nil {
			closer()
		}

		return nil, "", "", nil, err
	}

	switch {
	case !destParsed.IsRemote:
		destPath = destParsed.LocalPath
	case targetParsed.SameRemote(destParsed):
		destPath = destParsed.Path
	default:
		if closer != nil {
			closer()
		}

		return nil, "", "", nil, fmt.Errorf("%w: %s and %s", ErrMixedFileSystems, target, dest)
	}

	return fs, targetPath, destPath, closer, nil
}
