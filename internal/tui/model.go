// Package tui shows running file operations and answers their prompts, either
// as a bubble tea program or on a plain line-oriented terminal.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/tui/shared"
)

// Controller is the part of the engine the UI drives.
type Controller interface {
	Answer(token engine.Token, answer engine.Answer) bool
	Cancel(id engine.OperationID) bool
	Running() []engine.OperationID
}

// OperationView is what the UI knows about one operation.
type OperationView struct {
	ID       engine.OperationID
	Name     string
	Kind     engine.Kind
	State    engine.State
	Percent  int
	TimeLeft time.Duration
	Result   engine.Result
	Done     bool
}

// Model is the bubble tea model for the operation screen.
type Model struct {
	ctrl   Controller
	bridge *shared.EventBridge

	ops   map[engine.OperationID]*OperationView
	order []engine.OperationID

	// prompts is a stack; the newest question is shown first.
	prompts  []engine.PromptRequest
	messages []engine.OperationMessage

	input   textinput.Model
	bar     progress.Model
	spinner spinner.Model

	width      int
	cancelling bool
	quitting   bool
}

// NewModel creates a model fed by bridge. ids are operations already
// submitted; the program quits once all known operations are over.
func NewModel(ctrl Controller, bridge *shared.EventBridge, ids ...engine.OperationID) Model {
	input := textinput.New()
	input.Prompt = shared.PromptArrow
	input.CharLimit = maxInputLength

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(shared.PrimaryColor())

	model := Model{
		ctrl:    ctrl,
		bridge:  bridge,
		ops:     make(map[engine.OperationID]*OperationView),
		input:   input,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(shared.ProgressBarWidth)),
		spinner: spin,
	}

	for _, id := range ids {
		model.view(id)
	}

	return model
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.ListenCmd(), m.spinner.Tick)
}

// Operations returns the operations in submission order.
func (m Model) Operations() []OperationView {
	views := make([]OperationView, 0, len(m.order))
	for _, id := range m.order {
		views = append(views, *m.ops[id])
	}

	return views
}

// Messages returns every message received so far.
func (m Model) Messages() []engine.OperationMessage {
	return m.messages
}

// CurrentPrompt returns the question on screen, if any.
func (m Model) CurrentPrompt() (engine.PromptRequest, bool) {
	if len(m.prompts) == 0 {
		return engine.PromptRequest{}, false
	}

	return m.prompts[len(m.prompts)-1], true
}

// Finished reports whether every known operation has reached a result.
func (m Model) Finished() bool {
	if len(m.order) == 0 {
		return false
	}

	for _, id := range m.order {
		if !m.ops[id].Done {
			return false
		}
	}

	return true
}

func (m *Model) view(id engine.OperationID) *OperationView {
	if v, ok := m.ops[id]; ok {
		return v
	}

	v := &OperationView{ID: id, Percent: -1}
	m.ops[id] = v
	m.order = append(m.order, id)

	return v
}

const maxInputLength = 255
