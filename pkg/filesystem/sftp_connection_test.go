//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package filesystem_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/pkg/filesystem"
)

func TestConnect_UnreachableHostReturnsConnectionError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	remote, err := filesystem.ParsePath("sftp://testuser@nonexistent.invalid/data")
	g.Expect(err).ShouldNot(HaveOccurred())

	conn, err := filesystem.Connect(remote)

	g.Expect(conn).Should(BeNil())
	g.Expect(err).Should(HaveOccurred())
	g.Expect(err.Error()).Should(Or(
		ContainSubstring("SSH connection failed"),
		ContainSubstring("no SSH authentication methods"),
	))
}

func TestCreateFileSystem_UnreachableRemoteFails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs, _, closer, err := filesystem.CreateFileSystem("sftp://user@nonexistent.invalid/data")

	g.Expect(err).Should(HaveOccurred())
	g.Expect(fs).Should(BeNil())
	g.Expect(closer).Should(BeNil())
}

func TestCreateFileSystem_LocalPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs, path, closer, err := filesystem.CreateFileSystem("/tmp/data")

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(fs).Should(BeAssignableToTypeOf(&filesystem.RealFileSystem{}))
	g.Expect(path).Should(Equal("/tmp/data"))
	g.Expect(closer).Should(BeNil())
}

func TestResolveOperationPaths_LocalDestination(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs, target, dest, _, err := filesystem.ResolveOperationPaths("/src/a.txt", "/dst")

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(fs).ShouldNot(BeNil())
	g.Expect(target).Should(Equal("/src/a.txt"))
	g.Expect(dest).Should(Equal("/dst"))
}

func TestResolveOperationPaths_RemoteDestinationForLocalTargetRejected(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, _, _, _, err := filesystem.ResolveOperationPaths("/src/a.txt", "sftp://user@host/dst")

	g.Expect(err).Should(MatchError(filesystem.ErrMixedFileSystems))
}
