package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// newRealFileScanner lists a local tree with fastwalk. Directories are read
// in parallel, so entries are appended under a mutex and sorted afterwards.
func newRealFileScanner(root string) FileScanner {
	return newCollectedScanner(func() ([]FileInfo, error) {
		var (
			mu      sync.Mutex
			entries []FileInfo
		)

		conf := fastwalk.Config{Follow: false}

		err := fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err //nolint:wrapcheck // wrapped once below
			}

			if relPath == "." {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err //nolint:wrapcheck // wrapped once below
			}

			mu.Lock()
			defer mu.Unlock()

			entries = append(entries, FileInfo{
				RelativePath: relPath,
				Size:         info.Size(),
				ModTime:      info.ModTime(),
				IsDir:        d.IsDir(),
				IsSymlink:    d.Type()&os.ModeSymlink != 0,
			})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}

		return entries, nil
	})
}
