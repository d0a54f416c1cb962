package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Mock filesystem errors.
var (
	ErrMockIsDirectory = errors.New("is a directory")
	ErrMockNotEmpty    = errors.New("directory not empty")
	ErrMockNotLink     = errors.New("not a symlink")
)

const (
	mockFilePerm os.FileMode = 0o644
	mockDirPerm  os.FileMode = 0o755
)

// MockFileSystem is an in-memory filesystem implementation for testing.
// Paths are cleaned with filepath.Clean before use.
type MockFileSystem struct {
	mu     sync.RWMutex
	files  map[string]*mockFile
	faults map[string]error
}

// mockFile represents an entry in the mock filesystem.
type mockFile struct {
	path    string
	data    []byte
	modTime time.Time
	isDir   bool
	target  string // symlink target; empty for regular entries
	perm    os.FileMode
}

func (f *mockFile) info() *mockFileInfo {
	mode := f.perm
	if f.isDir {
		mode |= os.ModeDir
	}

	if f.target != "" {
		mode |= os.ModeSymlink
	}

	return &mockFileInfo{
		name:    filepath.Base(f.path),
		size:    int64(len(f.data)),
		modTime: f.modTime,
		isDir:   f.isDir,
		mode:    mode,
	}
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
	mode    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() any           { return nil }

// mockFileHandle implements the File interface for reading/writing.
type mockFileHandle struct {
	fs     *MockFileSystem
	path   string
	reader *bytes.Reader
	writer *bytes.Buffer
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.reader == nil {
		return 0, io.EOF
	}

	return f.reader.Read(p) //nolint:wrapcheck // mirrors *os.File
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.writer == nil {
		f.writer = &bytes.Buffer{}
	}

	return f.writer.Write(p) //nolint:wrapcheck // mirrors *os.File
}

func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}

	f.closed = true

	if f.writer == nil {
		return nil
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if file, exists := f.fs.files[f.path]; exists {
		file.data = f.writer.Bytes()
		return nil
	}

	f.fs.files[f.path] = &mockFile{
		path:    f.path,
		data:    f.writer.Bytes(),
		modTime: time.Now(),
		perm:    mockFilePerm,
	}

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	file, exists := f.fs.files[f.path]
	if !exists {
		return nil, os.ErrNotExist
	}

	return file.info(), nil
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:  make(map[string]*mockFile),
		faults: make(map[string]error),
	}
}

// Access checks the owner permission bits of the entry.
func (fs *MockFileSystem) Access(path string, mode AccessMode) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return os.ErrNotExist
	}

	if err := modeAllows(file.perm, mode); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	return nil
}

// Chtimes changes the access and modification times of a file.
func (fs *MockFileSystem) Chtimes(path string, _, mtime time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return os.ErrNotExist
	}

	file.modTime = mtime

	return nil
}

// Create creates or truncates a file for writing. Missing parents are created.
func (fs *MockFileSystem) Create(path string) (File, error) {
	path = filepath.Clean(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.faultLocked("create", path); err != nil {
		return nil, err
	}

	if existing, ok := fs.files[path]; ok && existing.isDir {
		return nil, ErrMockIsDirectory
	}

	if err := fs.checkWritableParentLocked(path); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		_ = fs.mkdirAllLocked(dir, mockDirPerm)
	}

	fs.files[path] = &mockFile{
		path:    path,
		data:    []byte{},
		modTime: time.Now(),
		perm:    mockFilePerm,
	}

	return &mockFileHandle{
		fs:     fs,
		path:   path,
		writer: &bytes.Buffer{},
	}, nil
}

// Join joins path elements with the OS separator.
func (fs *MockFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Lstat returns entry information without following symlinks.
func (fs *MockFileSystem) Lstat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, os.ErrNotExist
	}

	return file.info(), nil
}

// Mkdir creates a single directory. The parent must exist and be writable.
func (fs *MockFileSystem) Mkdir(path string, perm os.FileMode) error {
	path = filepath.Clean(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.faultLocked("mkdir", path); err != nil {
		return err
	}

	if _, exists := fs.files[path]; exists {
		return os.ErrExist
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		parent, ok := fs.files[dir]
		if !ok || !parent.isDir {
			return os.ErrNotExist
		}
	}

	if err := fs.checkWritableParentLocked(path); err != nil {
		return err
	}

	fs.files[path] = &mockFile{path: path, modTime: time.Now(), isDir: true, perm: perm.Perm()}

	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (fs *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.mkdirAllLocked(filepath.Clean(path), perm)
}

// Open opens a file for reading.
func (fs *MockFileSystem) Open(path string) (File, error) {
	path = filepath.Clean(path)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if err := fs.faultLocked("open", path); err != nil {
		return nil, err
	}

	file, exists := fs.files[path]
	if !exists {
		return nil, os.ErrNotExist
	}

	if file.isDir {
		return nil, ErrMockIsDirectory
	}

	return &mockFileHandle{
		fs:     fs,
		path:   path,
		reader: bytes.NewReader(file.data),
	}, nil
}

// ReadDir lists direct children of path sorted by name.
func (fs *MockFileSystem) ReadDir(path string) ([]os.FileInfo, error) {
	path = filepath.Clean(path)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if err := fs.faultLocked("readdir", path); err != nil {
		return nil, err
	}

	dir, exists := fs.files[path]
	if !exists {
		return nil, os.ErrNotExist
	}

	if !dir.isDir {
		return nil, fmt.Errorf("not a directory: %s", path) //nolint:err113 // mirrors ENOTDIR
	}

	infos := make([]os.FileInfo, 0)

	for p, file := range fs.files {
		if p != path && filepath.Dir(p) == path {
			infos = append(infos, file.info())
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Readlink returns the target of a symlink.
func (fs *MockFileSystem) Readlink(path string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return "", os.ErrNotExist
	}

	if file.target == "" {
		return "", ErrMockNotLink
	}

	return file.target, nil
}

// Remove removes a file or empty directory.
func (fs *MockFileSystem) Remove(path string) error {
	path = filepath.Clean(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.faultLocked("remove", path); err != nil {
		return err
	}

	file, exists := fs.files[path]
	if !exists {
		return os.ErrNotExist
	}

	if file.isDir && fs.hasChildrenLocked(path) {
		return ErrMockNotEmpty
	}

	if err := fs.checkWritableParentLocked(path); err != nil {
		return err
	}

	delete(fs.files, path)

	return nil
}

// Rename moves an entry and everything below it.
func (fs *MockFileSystem) Rename(oldPath, newPath string) error {
	oldPath = filepath.Clean(oldPath)
	newPath = filepath.Clean(newPath)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.faultLocked("rename", oldPath); err != nil {
		return err
	}

	file, exists := fs.files[oldPath]
	if !exists {
		return os.ErrNotExist
	}

	if existing, ok := fs.files[newPath]; ok && existing.isDir && fs.hasChildrenLocked(newPath) {
		return ErrMockNotEmpty
	}

	delete(fs.files, oldPath)
	file.path = newPath
	fs.files[newPath] = file

	prefix := oldPath + string(filepath.Separator)

	for p, child := range fs.files {
		if strings.HasPrefix(p, prefix) {
			delete(fs.files, p)
			child.path = filepath.Join(newPath, strings.TrimPrefix(p, prefix))
			fs.files[child.path] = child
		}
	}

	return nil
}

// Scan lists a tree through the mock's own ReadDir and Lstat, so injected
// faults and permissions apply to scans too.
func (fs *MockFileSystem) Scan(path string) FileScanner {
	return walkScanner(fs, path)
}

// Stat returns entry information, resolving one level of symlink.
func (fs *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path = filepath.Clean(path)

	file, exists := fs.files[path]
	if !exists {
		return nil, os.ErrNotExist
	}

	if file.target != "" {
		target := file.target
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}

		resolved, ok := fs.files[filepath.Clean(target)]
		if !ok {
			return nil, os.ErrNotExist
		}

		return resolved.info(), nil
	}

	return file.info(), nil
}

// Symlink creates link pointing at target.
func (fs *MockFileSystem) Symlink(target, link string) error {
	link = filepath.Clean(link)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.files[link]; exists {
		return os.ErrExist
	}

	fs.files[link] = &mockFile{path: link, modTime: time.Now(), target: target, perm: 0o777}

	return nil
}

func (fs *MockFileSystem) checkWritableParentLocked(path string) error {
	parent, ok := fs.files[filepath.Dir(path)]
	if ok && parent.perm&0o200 == 0 {
		return fmt.Errorf("%w: %s", ErrPermission, filepath.Dir(path))
	}

	return nil
}

func (fs *MockFileSystem) faultLocked(op, path string) error {
	if err, ok := fs.faults[op+":"+path]; ok {
		return err
	}

	return nil
}

func (fs *MockFileSystem) hasChildrenLocked(path string) bool {
	prefix := path + string(filepath.Separator)

	for p := range fs.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}

	return false
}

// mkdirAllLocked is the internal implementation that assumes the lock is held.
func (fs *MockFileSystem) mkdirAllLocked(path string, perm os.FileMode) error {
	if path == "." || path == "/" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := fs.mkdirAllLocked(dir, perm); err != nil {
			return err
		}
	}

	existing, exists := fs.files[path]
	if !exists {
		fs.files[path] = &mockFile{path: path, modTime: time.Now(), isDir: true, perm: perm.Perm()}
		return nil
	}

	if !existing.isDir {
		return fmt.Errorf("not a directory: %s", path) //nolint:err113 // mirrors ENOTDIR
	}

	return nil
}

// Helper methods for testing

// AddFile adds a file to the mock filesystem with the given content and modtime.
func (fs *MockFileSystem) AddFile(path string, content []byte, modTime time.Time) {
	path = filepath.Clean(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		_ = fs.mkdirAllLocked(dir, mockDirPerm)
	}

	fs.files[path] = &mockFile{
		path:    path,
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    mockFilePerm,
	}
}

// AddDir adds a directory (and any missing parents) to the mock filesystem.
func (fs *MockFileSystem) AddDir(path string, modTime time.Time) {
	path = filepath.Clean(path)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	_ = fs.mkdirAllLocked(path, mockDirPerm)
	fs.files[path].modTime = modTime
}

// SetPerm changes the permission bits of an existing entry.
func (fs *MockFileSystem) SetPerm(path string, perm os.FileMode) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if file, ok := fs.files[filepath.Clean(path)]; ok {
		file.perm = perm
	}
}

// InjectFault makes op ("open", "create", "mkdir", "readdir", "remove",
// "rename") on path fail with err.
func (fs *MockFileSystem) InjectFault(op, path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.faults[op+":"+filepath.Clean(path)] = err
}

// GetFile retrieves a file's content from the mock filesystem.
func (fs *MockFileSystem) GetFile(path string) ([]byte, time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, time.Time{}, os.ErrNotExist
	}

	if file.isDir {
		return nil, time.Time{}, ErrMockIsDirectory
	}

	return append([]byte(nil), file.data...), file.modTime, nil
}

// Exists checks if a path exists in the mock filesystem.
func (fs *MockFileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[filepath.Clean(path)]

	return exists
}

// ListFiles returns all paths in the mock filesystem.
func (fs *MockFileSystem) ListFiles() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}
