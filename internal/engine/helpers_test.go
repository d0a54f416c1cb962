package engine_test

import (
	"sync"
	"testing"
	"time"

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/pkg/filesystem"
)

const testTimeout = 5 * time.Second

// testEventEmitter is a simple test double for capturing events.
type testEventEmitter struct {
	mu     sync.Mutex
	events []engine.Event
}

func (e *testEventEmitter) Emit(event engine.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, event)
}

func (e *testEventEmitter) forOperation(id engine.OperationID) []engine.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []engine.Event

	for _, event := range e.events {
		if eventID(event) == id {
			out = append(out, event)
		}
	}

	return out
}

func (e *testEventEmitter) percents(id engine.OperationID) []int {
	var out []int

	for _, event := range e.forOperation(id) {
		if p, ok := event.(engine.OperationProgress); ok {
			out = append(out, p.Percent)
		}
	}

	return out
}

func (e *testEventEmitter) terminals(id engine.OperationID) []engine.OperationTerminal {
	var out []engine.OperationTerminal

	for _, event := range e.forOperation(id) {
		if term, ok := event.(engine.OperationTerminal); ok {
			out = append(out, term)
		}
	}

	return out
}

func (e *testEventEmitter) messages(id engine.OperationID) []engine.OperationMessage {
	var out []engine.OperationMessage

	for _, event := range e.forOperation(id) {
		if msg, ok := event.(engine.OperationMessage); ok {
			out = append(out, msg)
		}
	}

	return out
}

func eventID(event engine.Event) engine.OperationID {
	switch ev := event.(type) {
	case engine.OperationSubmitted:
		return ev.ID
	case engine.OperationStateChanged:
		return ev.ID
	case engine.OperationProgress:
		return ev.ID
	case engine.PromptRequested:
		return ev.Request.OperationID
	case engine.OperationMessage:
		return ev.ID
	case engine.OperationTerminal:
		return ev.ID
	default:
		return 0
	}
}

// testPresenter queues every prompt for the test to answer.
type testPresenter struct {
	requests chan engine.PromptRequest
}

func newTestPresenter() *testPresenter {
	return &testPresenter{requests: make(chan engine.PromptRequest, 32)}
}

func (p *testPresenter) AskYesNo(req engine.PromptRequest)         { p.requests <- req }
func (p *testPresenter) AskYesNoRemember(req engine.PromptRequest) { p.requests <- req }
func (p *testPresenter) AskTextOrCancel(req engine.PromptRequest)  { p.requests <- req }

func (p *testPresenter) next(t *testing.T) engine.PromptRequest {
	t.Helper()

	select {
	case req := <-p.requests:
		return req
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a prompt")
		return engine.PromptRequest{}
	}
}

type fixture struct {
	fs        *filesystem.MockFileSystem
	engine    *engine.Engine
	emitter   *testEventEmitter
	presenter *testPresenter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fx := &fixture{
		fs:        filesystem.NewMockFileSystem(),
		emitter:   &testEventEmitter{},
		presenter: newTestPresenter(),
	}

	fx.engine = engine.NewEngine(engine.Options{
		FS:           fx.fs,
		Presenter:    fx.presenter,
		Emitter:      fx.emitter,
		TimeProvider: engine.NewManualClock(time.Unix(0, 0)),
	})

	t.Cleanup(fx.engine.Close)

	return fx
}

func (fx *fixture) addFile(path, content string) {
	fx.fs.AddFile(path, []byte(content), time.Unix(0, 0))
}

func (fx *fixture) addDir(path string) {
	fx.fs.AddDir(path, time.Unix(0, 0))
}

func (fx *fixture) content(t *testing.T, path string) string {
	t.Helper()

	data, _, err := fx.fs.GetFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}

	return string(data)
}

func (fx *fixture) submit(t *testing.T, req engine.Request) engine.OperationID {
	t.Helper()

	id, err := fx.engine.Submit(req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	return id
}

func waitResult(t *testing.T, eng *engine.Engine, id engine.OperationID) engine.Result {
	t.Helper()

	select {
	case result := <-eng.Wait(id):
		return result
	case <-time.After(testTimeout):
		t.Fatalf("timed out waiting for operation %d", id)
		return engine.ResultNone
	}
}
