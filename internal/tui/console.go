package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term" //nolint:depguard // Required for masked password input

	"github.com/joe/file-modifier/internal/engine"
)

// Answerer receives replies to prompts.
type Answerer interface {
	Answer(token engine.Token, answer engine.Answer) bool
}

// Console is the plain terminal front end. It prints events as lines and
// asks questions one at a time on its input.
type Console struct {
	in  *bufio.Reader
	fd  int
	tty bool

	outMu sync.Mutex
	out   io.Writer

	askMu    sync.Mutex
	answerer Answerer
}

// NewConsole creates a Console reading answers from in. Secret prompts are
// read without echo when in is a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	console := &Console{
		in:  bufio.NewReader(in),
		out: out,
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		console.fd = int(f.Fd())
		console.tty = true
	}

	return console
}

// Attach sets where answers go. Call it before any prompt can arrive.
func (c *Console) Attach(answerer Answerer) {
	c.askMu.Lock()
	defer c.askMu.Unlock()

	c.answerer = answerer
}

// Emit implements engine.EventEmitter.
func (c *Console) Emit(event engine.Event) {
	switch ev := event.(type) {
	case engine.OperationSubmitted:
		c.printf("[%d] %s\n", ev.ID, ev.DisplayName)
	case engine.OperationProgress:
		c.printf("[%d] %3d%%\n", ev.ID, ev.Percent)
	case engine.OperationMessage:
		c.printf("[%d] %s\n", ev.ID, ev.Message)

		for _, suggestion := range ev.Suggestions {
			c.printf("      • %s\n", suggestion)
		}
	case engine.OperationTerminal:
		c.printf("[%d] %s: %s\n", ev.ID, ev.DisplayName, ev.Result)
	case engine.OperationStateChanged, engine.PromptRequested:
	}
}

// AskYesNo implements engine.PromptPresenter.
func (c *Console) AskYesNo(req engine.PromptRequest) {
	go c.ask(req, "[y/N] ", parseYesNo)
}

// AskYesNoRemember implements engine.PromptPresenter.
func (c *Console) AskYesNoRemember(req engine.PromptRequest) {
	hint := "[y]es / [N]o / [a]ll / [s]kip all "
	if req.Remaining > 1 {
		hint = fmt.Sprintf("(%d left) %s", req.Remaining, hint)
	}

	go c.ask(req, hint, parseYesNoRemember)
}

// AskTextOrCancel implements engine.PromptPresenter. An empty line or end of
// input cancels.
func (c *Console) AskTextOrCancel(req engine.PromptRequest) {
	go c.ask(req, "", func(line string) engine.Answer {
		if line == "" {
			return engine.CancelAnswer()
		}

		return engine.Answer{Text: line}
	})
}

func (c *Console) ask(req engine.PromptRequest, hint string, parse func(string) engine.Answer) {
	c.askMu.Lock()
	defer c.askMu.Unlock()

	c.printf("[%d] %s %s", req.OperationID, req.Question, hint)

	line, err := c.readLine(req.Secret)
	if err != nil {
		c.printf("\n")
		c.reply(req.Token, engine.CancelAnswer())

		return
	}

	c.reply(req.Token, parse(line))
}

func (c *Console) reply(token engine.Token, answer engine.Answer) {
	if c.answerer != nil {
		c.answerer.Answer(token, answer)
	}
}

func (c *Console) readLine(secret bool) (string, error) {
	if secret && c.tty {
		raw, err := term.ReadPassword(c.fd)
		c.printf("\n")

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(raw), nil
	}

	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	_, _ = fmt.Fprintf(c.out, format, args...)
}

func parseYesNo(line string) engine.Answer {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return engine.Answer{Yes: true}
	default:
		return engine.Answer{Yes: false}
	}
}

func parseYesNoRemember(line string) engine.Answer {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return engine.Answer{Yes: true}
	case "a", "all":
		return engine.Answer{Yes: true, Remember: true}
	case "s", "skip all":
		return engine.Answer{Yes: false, Remember: true}
	default:
		return engine.Answer{Yes: false}
	}
}
