// Package engine runs file operations (move, copy, delete, create folder,
// encrypt, decrypt) as independent state machines that validate, ask the
// user for missing input, and then execute with progress and cancellation.
package engine

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/joe/file-modifier/pkg/cryptostream"
	pkgerrors "github.com/joe/file-modifier/pkg/errors"
	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// Options configures an Engine. Zero values select the real filesystem, the
// default cipher, the wall clock, no logging and one execution at a time.
type Options struct {
	FS           filesystem.FileSystem
	Crypto       CryptoTransform
	Presenter    PromptPresenter
	Emitter      EventEmitter
	Logger       *zerolog.Logger
	TimeProvider TimeProvider

	// MaxConcurrent bounds how many operations execute at once.
	MaxConcurrent int64
}

// Engine accepts requests and drives each one to a terminal result.
type Engine struct {
	fs       filesystem.FileSystem
	fileOps  *fileops.FileOps
	crypto   CryptoTransform
	clock    TimeProvider
	log      zerolog.Logger
	enricher pkgerrors.Enricher
	prompts  *PromptChannel
	dispatch *dispatcher
	slots    *semaphore.Weighted

	baseCtx context.Context //nolint:containedctx // parent of every operation context
	stop    context.CancelFunc
	execWG  sync.WaitGroup

	hooksMu   sync.RWMutex
	emitter   EventEmitter
	presenter PromptPresenter

	mu      sync.Mutex
	nextID  OperationID
	running map[OperationID]*Operation
	results map[OperationID]Result
	closed  bool
}

// NewEngine creates an Engine and starts its dispatch goroutine. Call Close
// when done with it.
func NewEngine(opts Options) *Engine {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewRealFileSystem()
	}

	crypto := opts.Crypto
	if crypto == nil {
		crypto = cryptostream.New()
	}

	clock := opts.TimeProvider
	if clock == nil {
		clock = RealTimeProvider{}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		fs:        fs,
		fileOps:   fileops.NewFileOps(fs),
		crypto:    crypto,
		clock:     clock,
		log:       logger.With().Str("component", "engine").Logger(),
		enricher:  pkgerrors.NewEnricher(),
		prompts:   NewPromptChannel(),
		dispatch:  newDispatcher(),
		slots:     semaphore.NewWeighted(maxConcurrent),
		baseCtx:   ctx,
		stop:      cancel,
		emitter:   opts.Emitter,
		presenter: opts.Presenter,
		running:   make(map[OperationID]*Operation),
		results:   make(map[OperationID]Result),
	}
}

// SetEventEmitter sets the event emitter for the engine.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()

	e.emitter = emitter
}

// GetEventEmitter returns the current event emitter.
func (e *Engine) GetEventEmitter() EventEmitter {
	e.hooksMu.RLock()
	defer e.hooksMu.RUnlock()

	return e.emitter
}

// SetPromptPresenter sets who is asked when an operation needs input.
// Without one every prompt is answered with cancel.
func (e *Engine) SetPromptPresenter(presenter PromptPresenter) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()

	e.presenter = presenter
}

// Submit starts a new operation and returns its ID. Everything after picking
// the operator happens asynchronously; watch events or Wait for the outcome.
func (e *Engine) Submit(req Request) (OperationID, error) {
	if strings.TrimSpace(req.Target) == "" {
		return 0, ErrEmptyTarget
	}

	req.Target = e.fs.Join(req.Target)

	isDir, exists := false, false

	info, err := e.fs.Lstat(req.Target)
	if err == nil {
		isDir, exists = info.IsDir(), true
	}

	factory, err := lookupOperator(req.Kind, isDir, exists)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return 0, ErrEngineClosed
	}

	e.nextID++
	op := newOperation(e, e.nextID, req, factory)
	e.running[op.id] = op
	e.mu.Unlock()

	op.log.Info().Str("target", req.Target).Msg("operation submitted")
	op.emit(OperationSubmitted{ID: op.id, Kind: req.Kind, Target: req.Target, DisplayName: op.DisplayName()})

	e.dispatch.post(op.run)

	return op.id, nil
}

// Cancel stops the operation. It reports false if the operation is unknown
// or already finished.
func (e *Engine) Cancel(id OperationID) bool {
	op := e.lookup(id)
	if op == nil {
		return false
	}

	return op.cancel()
}

// State returns the operation's current state, or its terminal state once it
// has finished.
func (e *Engine) State(id OperationID) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if op, ok := e.running[id]; ok {
		return op.State(), true
	}

	if result, ok := e.results[id]; ok {
		return result.State(), true
	}

	return StateCreated, false
}

// Running returns the IDs of operations that have not finished, oldest first.
func (e *Engine) Running() []OperationID {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]OperationID, 0, len(e.running))
	for id := range e.running {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Wait returns a channel that delivers the operation's result once it
// finishes. The channel is closed without a value for unknown IDs.
func (e *Engine) Wait(id OperationID) <-chan Result {
	ch := make(chan Result, 1)

	e.mu.Lock()
	op, running := e.running[id]
	result, finished := e.results[id]
	e.mu.Unlock()

	switch {
	case running:
		go func() {
			<-op.done
			ch <- op.Result()
			close(ch)
		}()
	case finished:
		ch <- result
		close(ch)
	default:
		close(ch)
	}

	return ch
}

// Answer resolves the prompt identified by token.
func (e *Engine) Answer(token Token, answer Answer) bool {
	return e.prompts.Resolve(token, answer)
}

// AnswerYesNo answers the most recent yes/no prompt.
func (e *Engine) AnswerYesNo(yes bool) bool {
	return e.prompts.AnswerLatest(PromptYesNo, Answer{Yes: yes})
}

// AnswerYesNoRemember answers the most recent conflict prompt.
func (e *Engine) AnswerYesNoRemember(accept, remember bool) bool {
	return e.prompts.AnswerLatest(PromptYesNoRemember, Answer{Yes: accept, Remember: remember})
}

// AnswerTextOrCancel answers the most recent text prompt; nil cancels.
func (e *Engine) AnswerTextOrCancel(text *string) bool {
	if text == nil {
		return e.prompts.AnswerLatest(PromptTextOrCancel, CancelAnswer())
	}

	return e.prompts.AnswerLatest(PromptTextOrCancel, Answer{Text: *text})
}

// PendingPrompts returns how many prompts of kind are waiting.
func (e *Engine) PendingPrompts(kind PromptKind) int {
	return e.prompts.Pending(kind)
}

// Close cancels every live operation, waits for executions to stop and
// shuts down the dispatch goroutine.
func (e *Engine) Close() {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return
	}

	e.closed = true

	ops := make([]*Operation, 0, len(e.running))
	for _, op := range e.running {
		ops = append(ops, op)
	}

	e.mu.Unlock()

	for _, op := range ops {
		op.cancel()
	}

	e.stop()
	e.dispatch.stop()
	e.execWG.Wait()
	e.log.Debug().Msg("engine closed")
}

func (e *Engine) lookup(id OperationID) *Operation {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running[id]
}

func (e *Engine) retire(op *Operation, result Result) {
	if op.silent {
		return
	}

	e.mu.Lock()
	delete(e.running, op.id)
	e.results[op.id] = result
	e.mu.Unlock()
}

func (e *Engine) present(req PromptRequest) {
	e.hooksMu.RLock()
	presenter := e.presenter
	e.hooksMu.RUnlock()

	if presenter == nil {
		e.prompts.Resolve(req.Token, CancelAnswer())
		return
	}

	switch req.Kind {
	case PromptYesNo:
		presenter.AskYesNo(req)
	case PromptYesNoRemember:
		presenter.AskYesNoRemember(req)
	case PromptTextOrCancel:
		presenter.AskTextOrCancel(req)
	}
}

// emit sends an event if an emitter is configured.
func (e *Engine) emit(event Event) {
	e.hooksMu.RLock()
	emitter := e.emitter
	e.hooksMu.RUnlock()

	if emitter != nil {
		emitter.Emit(event)
	}
}
