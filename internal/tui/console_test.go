//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package tui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/tui"
)

type reply struct {
	token  engine.Token
	answer engine.Answer
}

type chanAnswerer chan reply

func (c chanAnswerer) Answer(token engine.Token, answer engine.Answer) bool {
	c <- reply{token: token, answer: answer}
	return true
}

func nextReply(t *testing.T, c chanAnswerer) reply {
	t.Helper()

	select {
	case r := <-c:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an answer")
		return reply{}
	}
}

func TestConsole_AnswersYesNoFromInput(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var out bytes.Buffer

	answers := make(chanAnswerer, 1)
	console := tui.NewConsole(strings.NewReader("yes\n"), &out)
	console.Attach(answers)

	console.AskYesNo(engine.PromptRequest{Token: "t1", OperationID: 3, Kind: engine.PromptYesNo, Question: "a.txt already exists in /d. Overwrite?"})

	r := nextReply(t, answers)
	g.Expect(r.token).To(Equal(engine.Token("t1")))
	g.Expect(r.answer).To(Equal(engine.Answer{Yes: true}))
	g.Expect(out.String()).To(ContainSubstring("[3] a.txt already exists in /d. Overwrite? [y/N]"))
}

func TestConsole_RememberChoices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected engine.Answer
	}{
		{"y\n", engine.Answer{Yes: true}},
		{"\n", engine.Answer{Yes: false}},
		{"a\n", engine.Answer{Yes: true, Remember: true}},
		{"S\n", engine.Answer{Yes: false, Remember: true}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			answers := make(chanAnswerer, 1)
			console := tui.NewConsole(strings.NewReader(tt.input), &bytes.Buffer{})
			console.Attach(answers)

			console.AskYesNoRemember(engine.PromptRequest{Token: "t", Kind: engine.PromptYesNoRemember, Remaining: 2})

			g.Expect(nextReply(t, answers).answer).To(Equal(tt.expected))
		})
	}
}

func TestConsole_TextAndEndOfInput(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	answers := make(chanAnswerer, 2)
	console := tui.NewConsole(strings.NewReader("new-folder\n"), &bytes.Buffer{})
	console.Attach(answers)

	console.AskTextOrCancel(engine.PromptRequest{Token: "t1", Kind: engine.PromptTextOrCancel})
	g.Expect(nextReply(t, answers).answer).To(Equal(engine.Answer{Text: "new-folder"}))

	console.AskTextOrCancel(engine.PromptRequest{Token: "t2", Kind: engine.PromptTextOrCancel})

	r := nextReply(t, answers)
	g.Expect(r.token).To(Equal(engine.Token("t2")))
	g.Expect(r.answer.Cancelled).To(BeTrue())
}

func TestConsole_PrintsEvents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var out bytes.Buffer

	console := tui.NewConsole(strings.NewReader(""), &out)

	console.Emit(engine.OperationSubmitted{ID: 1, DisplayName: "Delete /tmp/x"})
	console.Emit(engine.OperationProgress{ID: 1, Percent: 50})
	console.Emit(engine.OperationMessage{ID: 1, Message: "failed to remove /tmp/x/a", Suggestions: []string{"Check permissions"}})
	console.Emit(engine.OperationTerminal{ID: 1, DisplayName: "Delete /tmp/x", Result: engine.ResultCompletedWithErrors})

	text := out.String()
	g.Expect(text).To(ContainSubstring("[1] Delete /tmp/x\n"))
	g.Expect(text).To(ContainSubstring("[1]  50%"))
	g.Expect(text).To(ContainSubstring("failed to remove /tmp/x/a"))
	g.Expect(text).To(ContainSubstring("• Check permissions"))
	g.Expect(text).To(ContainSubstring("[1] Delete /tmp/x: " + engine.ResultCompletedWithErrors.String()))
}

func TestAutoConfirm(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	answers := make(chanAnswerer, 3)
	auto := tui.AutoConfirm{Answerer: answers}

	auto.AskYesNo(engine.PromptRequest{Token: "a"})
	g.Expect(nextReply(t, answers).answer).To(Equal(engine.Answer{Yes: true}))

	auto.AskYesNoRemember(engine.PromptRequest{Token: "b"})
	g.Expect(nextReply(t, answers).answer).To(Equal(engine.Answer{Yes: true, Remember: true}))

	auto.AskTextOrCancel(engine.PromptRequest{Token: "c"})
	g.Expect(nextReply(t, answers).answer.Cancelled).To(BeTrue())
}

func TestAutoConfirm_PassesTextPromptsOn(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	answers := make(chanAnswerer, 1)
	console := tui.NewConsole(strings.NewReader("secret\n"), &bytes.Buffer{})
	console.Attach(answers)

	auto := tui.AutoConfirm{Next: console, Answerer: answers}
	auto.AskTextOrCancel(engine.PromptRequest{Token: "p", Secret: true})

	g.Expect(nextReply(t, answers).answer).To(Equal(engine.Answer{Text: "secret"}))
}
