package shared

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/file-modifier/internal/engine"
)

// EngineEventMsg wraps an engine.Event for use as a tea.Msg.
type EngineEventMsg struct {
	Event engine.Event
}

// PromptMsg asks the model to show a question to the user.
type PromptMsg struct {
	Request engine.PromptRequest
}

// EventBridge adapts engine events and prompts to bubble tea messages.
// It implements engine.EventEmitter and engine.PromptPresenter.
type EventBridge struct {
	eventChan chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, eventBuffer),
		done:      make(chan struct{}),
	}
}

// Emit implements engine.EventEmitter. It blocks while the buffer is full
// so terminal events are never dropped, and returns at once after Close.
func (b *EventBridge) Emit(event engine.Event) {
	b.send(EngineEventMsg{Event: event})
}

// AskYesNo implements engine.PromptPresenter.
func (b *EventBridge) AskYesNo(req engine.PromptRequest) {
	b.send(PromptMsg{Request: req})
}

// AskYesNoRemember implements engine.PromptPresenter.
func (b *EventBridge) AskYesNoRemember(req engine.PromptRequest) {
	b.send(PromptMsg{Request: req})
}

// AskTextOrCancel implements engine.PromptPresenter.
func (b *EventBridge) AskTextOrCancel(req engine.PromptRequest) {
	b.send(PromptMsg{Request: req})
}

// Subscribe returns the event channel for receiving events.
func (b *EventBridge) Subscribe() <-chan tea.Msg {
	return b.eventChan
}

// ListenCmd returns a tea.Cmd that blocks until an event is received.
// Use this in Init() or after processing an event to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.eventChan:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close stops delivery. Later events are discarded.
func (b *EventBridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *EventBridge) send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.eventChan <- msg:
	case <-b.done:
	}
}

const eventBuffer = 256
