//nolint:varnamelen // Test files use idiomatic short variable names (t, g, fx)
package engine_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// gatedFS holds the first Open of one path until release is closed.
type gatedFS struct {
	*filesystem.MockFileSystem

	path    string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (fs *gatedFS) Open(path string) (filesystem.File, error) {
	if filepath.Clean(path) == fs.path {
		fs.once.Do(func() {
			close(fs.entered)
			<-fs.release
		})
	}

	return fs.MockFileSystem.Open(path)
}

func TestCopyFolder_CancelWhileExecuting(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/src/a.txt", []byte("a"), time.Unix(0, 0))
	mock.AddFile("/src/b.txt", []byte("b"), time.Unix(0, 0))
	mock.AddFile("/src/c.txt", []byte("c"), time.Unix(0, 0))
	mock.AddDir("/dst", time.Unix(0, 0))

	gated := &gatedFS{
		MockFileSystem: mock,
		path:           "/src/b.txt",
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}

	emitter := &testEventEmitter{}
	eng := engine.NewEngine(engine.Options{
		FS:           gated,
		Presenter:    newTestPresenter(),
		Emitter:      emitter,
		TimeProvider: engine.NewManualClock(time.Unix(0, 0)),
	})
	t.Cleanup(eng.Close)

	id, err := eng.Submit(folderRequest(engine.KindCopy, "/src", "/dst"))
	g.Expect(err).NotTo(HaveOccurred())

	g.Eventually(gated.entered).WithTimeout(testTimeout).Should(BeClosed())

	state, ok := eng.State(id)
	g.Expect(ok).To(BeTrue())
	g.Expect(state).To(Equal(engine.StateExecuting))

	progressBeforeCancel := emitter.percents(id)

	g.Expect(eng.Cancel(id)).To(BeTrue())
	g.Expect(eng.Cancel(id)).To(BeFalse())
	close(gated.release)

	g.Expect(waitResult(t, eng, id)).To(Equal(engine.ResultCancelled))

	terminals := emitter.terminals(id)
	g.Expect(terminals).To(HaveLen(1))
	g.Expect(terminals[0].Result).To(Equal(engine.ResultCancelled))

	events := emitter.forOperation(id)
	g.Expect(events[len(events)-1]).To(BeAssignableToTypeOf(engine.OperationTerminal{}))
	g.Expect(emitter.percents(id)).To(Equal(progressBeforeCancel))

	g.Expect(mock.Exists("/dst/src/a.txt")).To(BeTrue())
	g.Expect(mock.Exists("/dst/src/b.txt")).To(BeFalse())
	g.Expect(mock.Exists("/dst/src/c.txt")).To(BeFalse())
	g.Expect(mock.Exists("/src/c.txt")).To(BeTrue())

	state, _ = eng.State(id)
	g.Expect(state).To(Equal(engine.StateCancelled))
}
