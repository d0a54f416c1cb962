//nolint:varnamelen // Test files use idiomatic short variable names (t, g)
package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRealFS_CopyFolderKeepsSymlinks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	src := filepath.Join(root, "src", "proj")
	dst := filepath.Join(root, "dst")

	writeFile(t, filepath.Join(src, "main.go"), "package main")
	writeFile(t, filepath.Join(src, "lib", "lib.go"), "package lib")
	g.Expect(os.Symlink("lib/lib.go", filepath.Join(src, "link.go"))).To(Succeed())
	g.Expect(os.Symlink(src, filepath.Join(src, "loop"))).To(Succeed())
	g.Expect(os.Mkdir(dst, 0o750)).To(Succeed())

	eng := engine.NewEngine(engine.Options{})
	defer eng.Close()

	id, err := eng.Submit(folderRequest(engine.KindCopy, src, dst))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(waitResult(t, eng, id)).To(Equal(engine.ResultCompleted))

	data, err := os.ReadFile(filepath.Join(dst, "proj", "lib", "lib.go"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(Equal("package lib"))

	target, err := os.Readlink(filepath.Join(dst, "proj", "link.go"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(target).To(Equal("lib/lib.go"))

	info, err := os.Lstat(filepath.Join(dst, "proj", "loop"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(info.Mode() & os.ModeSymlink).NotTo(BeZero())
}

func TestRealFS_MoveFolder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	src := filepath.Join(root, "photos")
	dst := filepath.Join(root, "archive")

	writeFile(t, filepath.Join(src, "2024", "a.jpg"), "a")
	writeFile(t, filepath.Join(src, "2025", "b.jpg"), "b")
	g.Expect(os.Mkdir(dst, 0o750)).To(Succeed())

	eng := engine.NewEngine(engine.Options{})
	defer eng.Close()

	id, err := eng.Submit(folderRequest(engine.KindMove, src, dst))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(waitResult(t, eng, id)).To(Equal(engine.ResultCompleted))

	_, err = os.Stat(src)
	g.Expect(os.IsNotExist(err)).To(BeTrue())
	g.Expect(filepath.Join(dst, "photos", "2024", "a.jpg")).To(BeAnExistingFile())
	g.Expect(filepath.Join(dst, "photos", "2025", "b.jpg")).To(BeAnExistingFile())
}

func TestRealFS_DeleteFolder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	target := filepath.Join(root, "junk")

	writeFile(t, filepath.Join(target, "a"), "a")
	writeFile(t, filepath.Join(target, "nested", "b"), "b")

	eng := engine.NewEngine(engine.Options{})
	defer eng.Close()

	id, err := eng.Submit(engine.Request{Target: target, Kind: engine.KindDelete})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(waitResult(t, eng, id)).To(Equal(engine.ResultCompleted))
	g.Expect(target).NotTo(BeAnExistingFile())
	g.Expect(root).To(BeADirectory())
}
