package engine

import "time"

// Event is the interface implemented by all engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// OperationSubmitted is emitted once when Submit accepts a request.
type OperationSubmitted struct {
	ID          OperationID
	Kind        Kind
	Target      string
	DisplayName string
}

func (OperationSubmitted) isEvent() {}

// OperationStateChanged is emitted on every state transition, terminal ones included.
type OperationStateChanged struct {
	ID   OperationID
	From State
	To   State
}

func (OperationStateChanged) isEvent() {}

// OperationProgress is emitted each time an operation's whole-number percentage changes.
type OperationProgress struct {
	ID                OperationID
	DisplayName       string
	Percent           int
	Done              int64
	Total             int64
	EstimatedTimeLeft time.Duration
}

func (OperationProgress) isEvent() {}

// PromptRequested is emitted when an operation parks waiting for an answer.
type PromptRequested struct {
	Request PromptRequest
}

func (PromptRequested) isEvent() {}

// OperationMessage carries a user-facing message, usually a per-file failure
// or the reason validation rejected the request.
type OperationMessage struct {
	ID          OperationID
	Message     string
	Suggestions []string
	Err         error
}

func (OperationMessage) isEvent() {}

// OperationTerminal is emitted exactly once per operation, as its last event.
type OperationTerminal struct {
	ID          OperationID
	DisplayName string
	Result      Result
	Errors      []error
}

func (OperationTerminal) isEvent() {}
