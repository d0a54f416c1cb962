package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	krfs "github.com/kr/fs"
)

// FileScanner iterates over every entry below a directory, sorted by
// relative path. Check Err after Next returns false.
type FileScanner interface {
	Next() (FileInfo, bool)
	Err() error
}

// FileInfo contains metadata about a scanned entry.
type FileInfo struct {
	// RelativePath is the path relative to the scan root
	RelativePath string

	Size    int64
	ModTime time.Time
	IsDir   bool

	// IsSymlink is set for symbolic links, which are never descended into.
	IsSymlink bool
}

// collectedScanner gathers the whole listing on the first Next and then
// hands it out one entry at a time.
type collectedScanner struct {
	collect func() ([]FileInfo, error)
	entries []FileInfo
	pos     int
	err     error
	ran     bool
}

func newCollectedScanner(collect func() ([]FileInfo, error)) *collectedScanner {
	return &collectedScanner{collect: collect}
}

// Next returns the next entry, or false once the listing is exhausted or failed.
func (s *collectedScanner) Next() (FileInfo, bool) {
	if !s.ran {
		s.ran = true
		s.entries, s.err = s.collect()

		sort.Slice(s.entries, func(i, j int) bool {
			return s.entries[i].RelativePath < s.entries[j].RelativePath
		})
	}

	if s.err != nil || s.pos >= len(s.entries) {
		return FileInfo{}, false
	}

	info := s.entries[s.pos]
	s.pos++

	return info, true
}

// Err returns the error that ended the listing, if any.
func (s *collectedScanner) Err() error {
	return s.err
}

// walkScanner lists root through fsys itself with a kr/fs walker. Symbolic
// links are reported but not followed.
func walkScanner(fsys FileSystem, root string) FileScanner {
	return newCollectedScanner(func() ([]FileInfo, error) {
		root = fsys.Join(root)
		walker := krfs.WalkFS(root, fsys)

		var entries []FileInfo

		for walker.Step() {
			if err := walker.Err(); err != nil { //nolint:noinlineerr // Inline error check is idiomatic for walker error handling
				return nil, fmt.Errorf("failed to scan %s: %w", walker.Path(), err)
			}

			if walker.Path() == root {
				continue
			}

			stat := walker.Stat()
			entries = append(entries, FileInfo{
				RelativePath: relativeTo(root, walker.Path()),
				Size:         stat.Size(),
				ModTime:      stat.ModTime(),
				IsDir:        stat.IsDir(),
				IsSymlink:    stat.Mode()&os.ModeSymlink != 0,
			})
		}

		return entries, nil
	})
}

// relativeTo strips root from a path produced by joining onto it. Both
// separators are trimmed since remote paths always use forward slashes.
func relativeTo(root, path string) string {
	return strings.TrimLeft(strings.TrimPrefix(path, root), "/"+string(filepath.Separator))
}
