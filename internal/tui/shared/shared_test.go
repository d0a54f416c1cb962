//nolint:varnamelen // Test files use idiomatic short variable names (g, etc.)
package shared_test

import (
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/tui/shared"
)

func TestEventBridge_ImplementsEngineHooks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	var emitter engine.EventEmitter = bridge

	var presenter engine.PromptPresenter = bridge

	g.Expect(emitter).ToNot(BeNil())
	g.Expect(presenter).ToNot(BeNil())
}

func TestEventBridge_DeliversInOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	bridge.Emit(engine.OperationSubmitted{ID: 1, Kind: engine.KindDelete})
	bridge.AskYesNo(engine.PromptRequest{Token: "tok", Kind: engine.PromptYesNo})
	bridge.Emit(engine.OperationTerminal{ID: 1, Result: engine.ResultCompleted})

	listen := bridge.ListenCmd()

	first, ok := listen().(shared.EngineEventMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(first.Event).To(Equal(engine.OperationSubmitted{ID: 1, Kind: engine.KindDelete}))

	prompt, ok := listen().(shared.PromptMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(prompt.Request.Token).To(Equal(engine.Token("tok")))

	last, ok := listen().(shared.EngineEventMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(last.Event).To(BeAssignableToTypeOf(engine.OperationTerminal{}))
}

func TestEventBridge_CloseUnblocksListenAndDropsEvents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	bridge.Close()
	bridge.Close()

	bridge.Emit(engine.OperationSubmitted{ID: 1})

	done := make(chan any, 1)

	go func() { done <- bridge.ListenCmd()() }()

	select {
	case msg := <-done:
		g.Expect(msg).To(BeNil())
	case <-time.After(time.Second):
		t.Fatal("ListenCmd did not return after Close")
	}
}

func TestRenderMessages(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.RenderMessages(nil, shared.MessageLimit, 80)).To(BeEmpty())

	messages := []engine.OperationMessage{
		{ID: 1, Message: "failed to remove /a: permission denied", Suggestions: []string{"Check permissions"}},
		{ID: 1, Message: "failed to remove /b: busy"},
	}

	out := shared.RenderMessages(messages, shared.MessageLimit, 80)
	g.Expect(out).To(ContainSubstring("/a: permission denied"))
	g.Expect(out).To(ContainSubstring("Check permissions"))
	g.Expect(out).To(ContainSubstring("/b: busy"))
	g.Expect(out).NotTo(ContainSubstring("earlier"))
}

func TestRenderMessages_KeepsNewest(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var messages []engine.OperationMessage
	for _, name := range []string{"one", "two", "three", "four"} {
		messages = append(messages, engine.OperationMessage{Message: "msg " + name})
	}

	out := shared.RenderMessages(messages, 2, 0)

	g.Expect(out).To(ContainSubstring("2 earlier message(s)"))
	g.Expect(out).NotTo(ContainSubstring("msg two"))
	g.Expect(out).To(ContainSubstring("msg three"))
	g.Expect(out).To(ContainSubstring("msg four"))
}

func TestRenderMessages_TruncatesLongLines(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	long := strings.Repeat("x", 50)
	out := shared.RenderMessages([]engine.OperationMessage{{Message: long}}, 0, 20)

	g.Expect(out).To(ContainSubstring(strings.Repeat("x", 17) + "..."))
	g.Expect(out).NotTo(ContainSubstring(strings.Repeat("x", 18)))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.FormatDuration(4 * time.Second)).To(Equal("4s"))
	g.Expect(shared.FormatDuration(150 * time.Second)).To(Equal("2m 30s"))
	g.Expect(shared.FormatDuration(time.Hour + 61*time.Second)).To(Equal("1h 1m 1s"))
}

func TestRenderHelpersKeepText(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.RenderTitle("title")).To(ContainSubstring("title"))
	g.Expect(shared.RenderBox("boxed")).To(ContainSubstring("boxed"))
	g.Expect(shared.RenderDim("dim")).To(ContainSubstring("dim"))
	g.Expect(shared.RenderLabel("label")).To(ContainSubstring("label"))
	g.Expect(shared.RenderError("error")).To(ContainSubstring("error"))
	g.Expect(shared.RenderSuccess("ok")).To(ContainSubstring("ok"))
	g.Expect(shared.RenderWarning("warn")).To(ContainSubstring("warn"))
}
