//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

func TestFlatten_PreOrderDirectoriesOnly(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	for _, dir := range []string{"b", "a/inner", "a/z"} {
		g.Expect(os.MkdirAll(filepath.Join(root, dir), 0o755)).Should(Succeed())
	}
	g.Expect(os.WriteFile(filepath.Join(root, "a", "file.txt"), nil, 0o644)).Should(Succeed())

	dirs, err := fileops.NewRealFileOps().Flatten(root)

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(dirs).Should(Equal([]string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "inner"),
		filepath.Join(root, "a", "z"),
		filepath.Join(root, "b"),
	}))
}

func TestFlatten_EveryDirectoryBeforeItsDescendants(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/r/x/y/z", time.Now())
	fs.AddDir("/r/w", time.Now())
	fs.AddFile("/r/x/f.txt", nil, time.Now())

	dirs, err := fileops.NewFileOps(fs).Flatten("/r")
	g.Expect(err).ShouldNot(HaveOccurred())

	g.Expect(dirs[0]).Should(Equal("/r"))
	g.Expect(dirs).Should(ConsistOf("/r", "/r/w", "/r/x", "/r/x/y", "/r/x/y/z"))

	seen := map[string]int{}
	for i, dir := range dirs {
		seen[dir] = i
	}

	for _, dir := range dirs[1:] {
		g.Expect(seen[filepath.Dir(dir)]).Should(BeNumerically("<", seen[dir]))
	}
}

func TestFlatten_DoesNotFollowSymlinkCycles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.Mkdir(filepath.Join(root, "sub"), 0o755)).Should(Succeed())
	g.Expect(os.Symlink(root, filepath.Join(root, "sub", "loop"))).Should(Succeed())

	dirs, err := fileops.NewRealFileOps().Flatten(root)

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(dirs).Should(Equal([]string{root, filepath.Join(root, "sub")}))
}

func TestFlatten_FileRootIsError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/f.txt", nil, time.Now())

	_, err := fileops.NewFileOps(fs).Flatten("/f.txt")

	g.Expect(err).Should(MatchError(fileops.ErrNotDirectory))
}

func TestFlatten_EnumerationFailureIsStructured(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	boom := errors.New("io failure")
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/r/bad", time.Now())
	fs.InjectFault("readdir", "/r/bad", boom)

	_, err := fileops.NewFileOps(fs).Flatten("/r")

	var walkErr *fileops.WalkError
	g.Expect(errors.As(err, &walkErr)).Should(BeTrue())
	g.Expect(walkErr.Path).Should(Equal("/r/bad"))
	g.Expect(err).Should(MatchError(boom))
}

func TestFlatten_MissingRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := fileops.NewFileOps(filesystem.NewMockFileSystem()).Flatten("/missing")

	g.Expect(err).Should(MatchError(os.ErrNotExist))
}
