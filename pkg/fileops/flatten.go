package fileops

import (
	"fmt"

	krfs "github.com/kr/fs"
)

// Flatten lists root and every directory below it in pre-order: root first,
// siblings by name, each directory before its descendants. Files are not
// included. The walk uses Lstat, so symbolic links are never descended and a
// link cycle cannot recurse.
func (fo *FileOps) Flatten(root string) ([]string, error) {
	root = fo.FS.Join(root)
	walker := krfs.WalkFS(root, fo.FS)

	var dirs []string

	for walker.Step() {
		if err := walker.Err(); err != nil { //nolint:noinlineerr // Inline error check is idiomatic for walker error handling
			return nil, &WalkError{Path: walker.Path(), Err: err}
		}

		if walker.Stat().IsDir() {
			dirs = append(dirs, walker.Path())
			continue
		}

		if walker.Path() == root {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
		}
	}

	return dirs, nil
}

// ListFiles returns the non-directory entries directly inside dir, by name.
func (fo *FileOps) ListFiles(dir string) ([]string, error) {
	infos, err := fo.FS.ReadDir(dir)
	if err != nil {
		return nil, &WalkError{Path: dir, Err: err}
	}

	files := make([]string, 0, len(infos))

	for _, info := range infos {
		if !info.IsDir() {
			files = append(files, fo.FS.Join(dir, info.Name()))
		}
	}

	return files, nil
}
