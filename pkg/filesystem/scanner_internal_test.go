//nolint:varnamelen,testpackage // Test files use idiomatic short variable names
package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

func TestRealFileScanner_YieldsEveryEntrySorted(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tmpDir := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(tmpDir, "sub", "deeper"), 0o755)).Should(Succeed())

	for _, name := range []string{"b.txt", "a.txt", "sub/c.txt", "sub/deeper/d.txt"} {
		g.Expect(os.WriteFile(filepath.Join(tmpDir, name), []byte("content"), 0o644)).Should(Succeed())
	}

	scanner := newRealFileScanner(tmpDir)

	var paths []string
	for info, ok := scanner.Next(); ok; info, ok = scanner.Next() {
		paths = append(paths, info.RelativePath)
	}

	g.Expect(scanner.Err()).ShouldNot(HaveOccurred())
	g.Expect(paths).Should(Equal([]string{
		"a.txt",
		"b.txt",
		"sub",
		filepath.Join("sub", "c.txt"),
		filepath.Join("sub", "deeper"),
		filepath.Join("sub", "deeper", "d.txt"),
	}))
}

func TestRealFileScanner_EmptyDirectory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	scanner := newRealFileScanner(t.TempDir())

	_, ok := scanner.Next()
	g.Expect(ok).Should(BeFalse())
	g.Expect(scanner.Err()).ShouldNot(HaveOccurred())
}

func TestRealFileScanner_MissingRootReportsError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	scanner := newRealFileScanner(filepath.Join(t.TempDir(), "missing"))

	_, ok := scanner.Next()
	g.Expect(ok).Should(BeFalse())
	g.Expect(scanner.Err()).Should(HaveOccurred())
}

func TestRealFileScanner_MarksSymlinks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tmpDir := t.TempDir()
	g.Expect(os.Mkdir(filepath.Join(tmpDir, "dir"), 0o755)).Should(Succeed())
	g.Expect(os.WriteFile(filepath.Join(tmpDir, "dir", "f.txt"), nil, 0o644)).Should(Succeed())
	g.Expect(os.Symlink(filepath.Join(tmpDir, "dir"), filepath.Join(tmpDir, "link"))).Should(Succeed())

	scanner := newRealFileScanner(tmpDir)

	found := map[string]FileInfo{}
	for info, ok := scanner.Next(); ok; info, ok = scanner.Next() {
		found[info.RelativePath] = info
	}

	g.Expect(found).Should(HaveKey("link"))
	g.Expect(found["link"].IsSymlink).Should(BeTrue())
	g.Expect(found).ShouldNot(HaveKey(filepath.Join("link", "f.txt")))
}

func TestWalkScanner_MockTreeIsRelativeAndSorted(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := NewMockFileSystem()
	fs.AddFile("/root/z.txt", []byte("zz"), time.Time{})
	fs.AddFile("/root/sub/a.txt", []byte("a"), time.Time{})
	fs.AddDir("/root/empty", time.Time{})

	scanner := fs.Scan("/root/")

	var paths []string

	sizes := map[string]int64{}
	for info, ok := scanner.Next(); ok; info, ok = scanner.Next() {
		paths = append(paths, info.RelativePath)
		sizes[info.RelativePath] = info.Size
	}

	g.Expect(scanner.Err()).ShouldNot(HaveOccurred())
	g.Expect(paths).Should(Equal([]string{"empty", "sub", filepath.Join("sub", "a.txt"), "z.txt"}))
	g.Expect(sizes["z.txt"]).Should(Equal(int64(2)))
}

func TestWalkScanner_MissingRootReportsError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	scanner := NewMockFileSystem().Scan("/nowhere")

	_, ok := scanner.Next()
	g.Expect(ok).Should(BeFalse())
	g.Expect(scanner.Err()).Should(HaveOccurred())
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(relativeTo("/home/joe", "/home/joe/data/a.txt")).Should(Equal("data/a.txt"))
	g.Expect(relativeTo("/", "/etc")).Should(Equal("etc"))
	g.Expect(relativeTo("backups", "backups/x")).Should(Equal("x"))
}
