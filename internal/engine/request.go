package engine

import (
	"fmt"
	"strings"
)

// Kind selects what an operation does to its target.
type Kind int

// Operation kinds.
const (
	KindMove Kind = iota
	KindCopy
	KindDelete
	KindCreateFolder
	KindEncrypt
	KindDecrypt
)

// String returns the lower-case name used on the command line.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindCopy:
		return "copy"
	case KindDelete:
		return "delete"
	case KindCreateFolder:
		return "mkdir"
	case KindEncrypt:
		return "encrypt"
	case KindDecrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts a kind name or one of its short aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move", "mv":
		return KindMove, nil
	case "copy", "cp":
		return KindCopy, nil
	case "delete", "rm":
		return KindDelete, nil
	case "mkdir", "create-folder", "createfolder":
		return KindCreateFolder, nil
	case "encrypt":
		return KindEncrypt, nil
	case "decrypt":
		return KindDecrypt, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Recognised Params keys.
const (
	ParamDestinationDirectory = "destinationDirectory"
	ParamNewName              = "newName"
	ParamEncryptionPassword   = "encryptionPassword"
	ParamOutputFileName       = "outputFileName"
	ParamExcludePattern       = "excludePattern"
)

// Params carries operation-specific arguments keyed by the Param* constants.
type Params map[string]string

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}

	return p[key]
}

// Request asks the engine to run one operation on Target.
type Request struct {
	Target string
	Kind   Kind
	Params Params
}

// OperationID identifies a submitted operation for the life of the process.
type OperationID int64

// State is a position in the operation state machine.
type State int

// Operation states.
const (
	StateCreated State = iota
	StateValidatingArgs
	StateAwaitingUserInput
	StateExecuting
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidatingArgs:
		return "validating"
	case StateAwaitingUserInput:
		return "awaiting input"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Result is how an operation ended.
type Result int

// Results. ResultNone is the zero value and is never reported for a real operation.
const (
	ResultNone Result = iota
	ResultCompleted
	ResultCompletedWithErrors
	ResultCancelled
	ResultValidationFailed
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultNone:
		return "none"
	case ResultCompleted:
		return "completed"
	case ResultCompletedWithErrors:
		return "completed with errors"
	case ResultCancelled:
		return "cancelled"
	case ResultValidationFailed:
		return "validation failed"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// State returns the terminal state an operation with this result ends in.
func (r Result) State() State {
	switch r {
	case ResultCompleted, ResultCompletedWithErrors:
		return StateCompleted
	case ResultCancelled, ResultValidationFailed:
		return StateCancelled
	case ResultFailed:
		return StateFailed
	default:
		return StateCreated
	}
}
