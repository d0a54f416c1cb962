package fileops

import (
	"fmt"
)

// RewritePath replaces the first prefixLen characters of path with destRoot.
func RewritePath(path, destRoot string, prefixLen int) string {
	if prefixLen > len(path) {
		prefixLen = len(path)
	}

	return destRoot + path[prefixLen:]
}

// FindConflicts returns, in traversal order, the destination paths that
// already hold a non-directory entry and would be overwritten when the files
// directly inside each of sourceDirs are rewritten onto destRoot.
//
// sourceDirs is normally the output of Flatten.
func (fo *FileOps) FindConflicts(sourceDirs []string, destRoot string, prefixLen int) ([]string, error) {
	var conflicts []string

	for _, dir := range sourceDirs {
		files, err := fo.ListFiles(dir)
		if err != nil {
			return nil, err
		}

		for _, file := range files {
			dest := RewritePath(file, destRoot, prefixLen)

			info, err := fo.FS.Lstat(dest)
			if err != nil {
				if isMissing(err) {
					continue
				}

				return nil, &WalkError{Path: dest, Err: fmt.Errorf("checking destination: %w", err)}
			}

			if !info.IsDir() {
				conflicts = append(conflicts, dest)
			}
		}
	}

	return conflicts, nil
}
