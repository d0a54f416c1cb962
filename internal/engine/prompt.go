package engine

import (
	"sync"

	"github.com/google/uuid"
)

// PromptKind selects which question shape an operation is asking.
type PromptKind int

// Prompt kinds.
const (
	PromptYesNo PromptKind = iota
	PromptYesNoRemember
	PromptTextOrCancel
)

func (k PromptKind) String() string {
	switch k {
	case PromptYesNo:
		return "yes/no"
	case PromptYesNoRemember:
		return "yes/no/remember"
	case PromptTextOrCancel:
		return "text"
	default:
		return "unknown"
	}
}

// Token correlates an answer with the prompt it answers.
type Token string

// Answer is a user's reply to a prompt. Cancelled wins over every other field.
type Answer struct {
	Yes       bool
	Remember  bool
	Text      string
	Cancelled bool
}

// CancelAnswer is the reply used when a prompt is dismissed.
func CancelAnswer() Answer {
	return Answer{Cancelled: true}
}

// PromptRequest describes one pending question.
type PromptRequest struct {
	Token       Token
	OperationID OperationID
	Kind        PromptKind
	Question    string
	// Remaining is the number of conflicts still unresolved, for YesNoRemember prompts.
	Remaining int
	// Secret asks the presenter to mask typed text.
	Secret bool
}

// PromptPresenter shows questions to the user. Calls must not block on the
// user's answer; the answer comes back through Engine.Answer or one of the
// AnswerXxx entry points.
type PromptPresenter interface {
	AskYesNo(req PromptRequest)
	AskYesNoRemember(req PromptRequest)
	AskTextOrCancel(req PromptRequest)
}

type pendingPrompt struct {
	token  Token
	opID   OperationID
	resume func(Answer)
}

// PromptChannel holds the prompts currently awaiting an answer. Each kind is a
// stack: answering by kind resolves the most recently registered prompt.
type PromptChannel struct {
	mu     sync.Mutex
	stacks map[PromptKind][]pendingPrompt
	kinds  map[Token]PromptKind
}

// NewPromptChannel returns an empty PromptChannel.
func NewPromptChannel() *PromptChannel {
	return &PromptChannel{
		stacks: make(map[PromptKind][]pendingPrompt),
		kinds:  make(map[Token]PromptKind),
	}
}

// Register parks resume until an answer for the returned token arrives.
func (pc *PromptChannel) Register(kind PromptKind, opID OperationID, resume func(Answer)) Token {
	token := Token(uuid.NewString())

	pc.mu.Lock()
	pc.stacks[kind] = append(pc.stacks[kind], pendingPrompt{token: token, opID: opID, resume: resume})
	pc.kinds[token] = kind
	pc.mu.Unlock()

	return token
}

// Resolve delivers answer to the prompt registered under token. It reports
// false when the token is unknown or already answered.
func (pc *PromptChannel) Resolve(token Token, answer Answer) bool {
	pc.mu.Lock()

	kind, ok := pc.kinds[token]
	if !ok {
		pc.mu.Unlock()
		return false
	}

	stack := pc.stacks[kind]

	var found pendingPrompt

	for i := range stack {
		if stack[i].token == token {
			found = stack[i]
			pc.stacks[kind] = append(stack[:i:i], stack[i+1:]...)

			break
		}
	}

	delete(pc.kinds, token)
	pc.mu.Unlock()

	found.resume(answer)

	return true
}

// AnswerLatest delivers answer to the most recently registered prompt of kind.
// It reports false when nothing of that kind is pending.
func (pc *PromptChannel) AnswerLatest(kind PromptKind, answer Answer) bool {
	pc.mu.Lock()

	stack := pc.stacks[kind]
	if len(stack) == 0 {
		pc.mu.Unlock()
		return false
	}

	top := stack[len(stack)-1]
	pc.stacks[kind] = stack[:len(stack)-1]
	delete(pc.kinds, top.token)
	pc.mu.Unlock()

	top.resume(answer)

	return true
}

// Remove drops every prompt owned by opID without resuming it.
func (pc *PromptChannel) Remove(opID OperationID) int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	removed := 0

	for kind, stack := range pc.stacks {
		kept := stack[:0]

		for _, p := range stack {
			if p.opID == opID {
				delete(pc.kinds, p.token)
				removed++

				continue
			}

			kept = append(kept, p)
		}

		pc.stacks[kind] = kept
	}

	return removed
}

// Pending returns how many prompts of kind await an answer.
func (pc *PromptChannel) Pending(kind PromptKind) int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	return len(pc.stacks[kind])
}
