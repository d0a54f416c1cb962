package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/file-modifier/internal/engine"
	"github.com/joe/file-modifier/internal/tui/shared"
)

// Update implements tea.Model. Engine calls are made from commands so the
// update loop never waits on the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-shared.ProgressBarWidth, shared.ProgressBarWidth), shared.MaxProgressBarWidth)

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case shared.EngineEventMsg:
		m.handleEvent(msg.Event)
		return m, m.next()

	case shared.PromptMsg:
		m.pushPrompt(msg.Request)
		return m, m.bridge.ListenCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == shared.KeyCtrlC {
		if m.cancelling || m.Finished() {
			m.quitting = true
			return m, tea.Quit
		}

		m.cancelling = true

		return m, m.cancelAll()
	}

	req, ok := m.CurrentPrompt()
	if !ok {
		if msg.String() == "q" && m.Finished() {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil
	}

	if msg.String() == shared.KeyEsc {
		return m.answer(req, engine.CancelAnswer())
	}

	switch req.Kind {
	case engine.PromptYesNo:
		switch msg.String() {
		case "y", "Y":
			return m.answer(req, engine.Answer{Yes: true})
		case "n", "N":
			return m.answer(req, engine.Answer{Yes: false})
		}
	case engine.PromptYesNoRemember:
		switch msg.String() {
		case "y", "Y":
			return m.answer(req, engine.Answer{Yes: true})
		case "n", "N":
			return m.answer(req, engine.Answer{Yes: false})
		case "a", "A":
			return m.answer(req, engine.Answer{Yes: true, Remember: true})
		case "s", "S":
			return m.answer(req, engine.Answer{Yes: false, Remember: true})
		}
	case engine.PromptTextOrCancel:
		if msg.Type == tea.KeyEnter {
			return m.answer(req, engine.Answer{Text: m.input.Value()})
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) handleEvent(event engine.Event) {
	switch ev := event.(type) {
	case engine.OperationSubmitted:
		v := m.view(ev.ID)
		v.Name = ev.DisplayName
		v.Kind = ev.Kind
	case engine.OperationStateChanged:
		m.view(ev.ID).State = ev.To
	case engine.OperationProgress:
		v := m.view(ev.ID)
		v.Percent = ev.Percent
		v.TimeLeft = ev.EstimatedTimeLeft
	case engine.OperationMessage:
		m.messages = append(m.messages, ev)
	case engine.OperationTerminal:
		v := m.view(ev.ID)
		v.Done = true
		v.Result = ev.Result
		v.State = ev.Result.State()

		if v.Name == "" {
			v.Name = ev.DisplayName
		}

		m.dropPrompts(ev.ID)
	case engine.PromptRequested:
		// Prompts arrive through the presenter side of the bridge.
	}
}

func (m *Model) next() tea.Cmd {
	if m.Finished() {
		m.quitting = true
		return tea.Quit
	}

	return m.bridge.ListenCmd()
}

func (m *Model) pushPrompt(req engine.PromptRequest) {
	if v, ok := m.ops[req.OperationID]; ok && v.Done {
		return
	}

	m.prompts = append(m.prompts, req)
	m.resetInput()
}

func (m *Model) dropPrompts(id engine.OperationID) {
	before := len(m.prompts)

	m.prompts = slices.DeleteFunc(m.prompts, func(req engine.PromptRequest) bool {
		return req.OperationID == id
	})

	if len(m.prompts) != before {
		m.resetInput()
	}
}

func (m Model) answer(req engine.PromptRequest, answer engine.Answer) (tea.Model, tea.Cmd) {
	m.prompts = slices.DeleteFunc(m.prompts, func(p engine.PromptRequest) bool {
		return p.Token == req.Token
	})
	m.resetInput()

	ctrl := m.ctrl

	return m, func() tea.Msg {
		ctrl.Answer(req.Token, answer)
		return nil
	}
}

func (m Model) cancelAll() tea.Cmd {
	ctrl := m.ctrl

	return func() tea.Msg {
		for _, id := range ctrl.Running() {
			ctrl.Cancel(id)
		}

		return nil
	}
}

// resetInput prepares the text field for the prompt now on top.
func (m *Model) resetInput() {
	m.input.Reset()
	m.input.EchoMode = textinput.EchoNormal

	req, ok := m.CurrentPrompt()
	if !ok || req.Kind != engine.PromptTextOrCancel {
		m.input.Blur()
		return
	}

	if req.Secret {
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	}

	m.input.Focus()
}
