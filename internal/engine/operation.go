package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	pkgerrors "github.com/joe/file-modifier/pkg/errors"
	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// Operation is one submitted request moving through the state machine:
//
//	Created -> ValidatingArgs -> AwaitingUserInput -> Executing -> Completed
//	                   |                 |                 |
//	                   +-----------------+-----------------+-> Cancelled / Failed
//
// Validation and prompting run on the engine's dispatch goroutine; execution
// runs on its own goroutine once an execution slot is free.
type Operation struct {
	id     OperationID
	kind   Kind
	target string
	args   Params
	silent bool

	engine   *Engine
	impl     operator
	ctx      context.Context //nolint:containedctx // operation lifetime
	cancelFn context.CancelFunc
	progress *Progress
	log      zerolog.Logger

	mu        sync.Mutex
	state     State
	cancelled bool
	result    Result
	errs      []error

	emitMu   sync.Mutex
	finished bool

	finishOnce sync.Once
	done       chan struct{}
}

func newOperation(e *Engine, id OperationID, req Request, factory operatorFactory) *Operation {
	ctx, cancel := context.WithCancel(e.baseCtx)

	op := &Operation{
		id:       id,
		kind:     req.Kind,
		target:   req.Target,
		args:     req.Params,
		engine:   e,
		ctx:      ctx,
		cancelFn: cancel,
		progress: NewProgress(e.clock),
		log:      e.log.With().Int64("op", int64(id)).Str("kind", req.Kind.String()).Logger(),
		state:    StateCreated,
		done:     make(chan struct{}),
	}
	op.impl = factory(op)

	return op
}

// ID returns the operation's identifier.
func (op *Operation) ID() OperationID { return op.id }

// Kind returns what the operation does.
func (op *Operation) Kind() Kind { return op.kind }

// Target returns the path the operation acts on.
func (op *Operation) Target() string { return op.target }

// DisplayName returns a short human description such as "Copying photos".
func (op *Operation) DisplayName() string { return op.impl.displayName() }

// State returns the current state.
func (op *Operation) State() State {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.state
}

// Result returns how the operation ended, or ResultNone while it is live.
func (op *Operation) Result() Result {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.result
}

// Errors returns the per-file failures recorded so far.
func (op *Operation) Errors() []error {
	op.mu.Lock()
	defer op.mu.Unlock()

	return append([]error(nil), op.errs...)
}

// Done is closed after the terminal event has been emitted.
func (op *Operation) Done() <-chan struct{} { return op.done }

// run validates the request and starts gathering input. It executes on the
// dispatch goroutine.
func (op *Operation) run() {
	if !op.transition(StateValidatingArgs) {
		return
	}

	err := op.impl.validate(op)
	if err != nil {
		op.reject(err)
		return
	}

	if op.ctx.Err() != nil {
		return
	}

	op.impl.gatherInput(op)
}

// proceed hands the operation to an execution goroutine. Every gatherInput
// path that does not cancel or reject ends here.
func (op *Operation) proceed() {
	if !op.transition(StateExecuting) {
		return
	}

	op.engine.execWG.Add(1)

	go op.execute()
}

func (op *Operation) execute() {
	defer op.engine.execWG.Done()

	err := op.engine.slots.Acquire(op.ctx, 1)
	if err != nil {
		op.finish(ResultCancelled)
		return
	}

	defer op.engine.slots.Release(1)

	op.log.Debug().Msg("execution started")

	err = op.safeExecute()

	switch {
	case errors.Is(err, fileops.ErrCancelled) || errors.Is(err, context.Canceled):
		op.finish(ResultCancelled)
	case err != nil:
		op.recordError(err, op.target)
		op.finish(ResultFailed)
	case len(op.Errors()) > 0:
		op.finish(ResultCompletedWithErrors)
	default:
		op.finish(ResultCompleted)
	}
}

func (op *Operation) safeExecute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrOperationPanicked, r)
		}
	}()

	return op.impl.execute(op)
}

// ask parks the operation on a prompt. resume runs on the dispatch goroutine
// with the answer, unless the operation ended in the meantime.
func (op *Operation) ask(kind PromptKind, question string, remaining int, secret bool, resume func(Answer)) {
	op.mu.Lock()

	if op.cancelled || op.state.Terminal() {
		op.mu.Unlock()
		return
	}

	from := op.state
	op.state = StateAwaitingUserInput

	token := op.engine.prompts.Register(kind, op.id, func(answer Answer) {
		op.engine.dispatch.post(func() {
			if op.isOver() {
				return
			}

			resume(answer)
		})
	})

	op.mu.Unlock()

	if from != StateAwaitingUserInput {
		op.emit(OperationStateChanged{ID: op.id, From: from, To: StateAwaitingUserInput})
	}

	req := PromptRequest{
		Token:       token,
		OperationID: op.id,
		Kind:        kind,
		Question:    question,
		Remaining:   remaining,
		Secret:      secret,
	}

	op.emit(PromptRequested{Request: req})
	op.log.Debug().Str("prompt", kind.String()).Str("question", question).Msg("waiting for answer")
	op.engine.present(req)
}

// cancel stops the operation. An executing operation finishes from its own
// goroutine once it notices; anything earlier finishes here.
func (op *Operation) cancel() bool {
	op.mu.Lock()

	if op.cancelled || op.state.Terminal() {
		op.mu.Unlock()
		return false
	}

	op.cancelled = true
	state := op.state
	op.mu.Unlock()

	op.cancelFn()
	op.engine.prompts.Remove(op.id)

	if state != StateExecuting {
		op.finish(ResultCancelled)
	}

	return true
}

// reject ends the operation because the request cannot be carried out.
func (op *Operation) reject(err error) {
	op.log.Info().Err(err).Msg("validation failed")
	op.message(err, op.target)
	op.finish(ResultValidationFailed)
}

// recordError notes a per-file failure. The operation keeps going.
func (op *Operation) recordError(err error, path string) {
	if op.silent {
		op.mu.Lock()
		op.errs = append(op.errs, err)
		op.mu.Unlock()

		return
	}

	enriched := op.engine.enricher.Enrich(err, path)

	op.mu.Lock()
	op.errs = append(op.errs, enriched)
	op.mu.Unlock()

	op.log.Warn().Err(err).Str("path", path).Msg("operation error")
	op.message(enriched, path)
}

func (op *Operation) message(err error, path string) {
	enriched := op.engine.enricher.Enrich(err, path)

	msg := OperationMessage{ID: op.id, Message: enriched.Error(), Err: err}

	var actionable pkgerrors.ActionableError
	if errors.As(enriched, &actionable) {
		msg.Suggestions = actionable.Suggestions()
	}

	op.emit(msg)
}

// report records done out of total and emits progress when the percentage moves.
func (op *Operation) report(done, total int64) {
	if op.silent {
		return
	}

	percent, changed := op.progress.Update(done, total)
	if !changed {
		return
	}

	op.emit(OperationProgress{
		ID:                op.id,
		DisplayName:       op.DisplayName(),
		Percent:           percent,
		Done:              done,
		Total:             total,
		EstimatedTimeLeft: op.progress.EstimatedTimeLeft(),
	})
}

func (op *Operation) transition(to State) bool {
	op.mu.Lock()

	if op.cancelled || op.state.Terminal() {
		op.mu.Unlock()
		return false
	}

	from := op.state
	op.state = to
	op.mu.Unlock()

	if from != to {
		op.emit(OperationStateChanged{ID: op.id, From: from, To: to})
	}

	return true
}

// finish moves the operation to its terminal state and emits the terminal
// event. Only the first call has any effect.
func (op *Operation) finish(result Result) {
	op.finishOnce.Do(func() {
		op.mu.Lock()
		from := op.state
		op.state = result.State()
		op.result = result
		errs := append([]error(nil), op.errs...)
		op.mu.Unlock()

		op.emitMu.Lock()

		if !op.silent {
			if (result == ResultCompleted || result == ResultCompletedWithErrors) && op.progress.Finish() {
				done, total := op.progress.Counts()
				op.engine.emit(OperationProgress{
					ID:          op.id,
					DisplayName: op.DisplayName(),
					Percent:     100,
					Done:        done,
					Total:       total,
				})
			}

			if from != result.State() {
				op.engine.emit(OperationStateChanged{ID: op.id, From: from, To: result.State()})
			}

			op.engine.emit(OperationTerminal{
				ID:          op.id,
				DisplayName: op.DisplayName(),
				Result:      result,
				Errors:      errs,
			})
		}

		op.finished = true
		op.emitMu.Unlock()

		op.cancelFn()
		op.engine.prompts.Remove(op.id)
		op.engine.retire(op, result)

		op.log.Info().Str("result", result.String()).Int("errors", len(errs)).Msg("operation finished")
		close(op.done)
	})
}

func (op *Operation) emit(event Event) {
	if op.silent {
		return
	}

	op.emitMu.Lock()
	defer op.emitMu.Unlock()

	if op.finished {
		return
	}

	op.engine.emit(event)
}

func (op *Operation) isOver() bool {
	op.mu.Lock()
	defer op.mu.Unlock()

	return op.cancelled || op.state.Terminal()
}

func (op *Operation) cancelChan() <-chan struct{} {
	return op.ctx.Done()
}

func (op *Operation) fs() filesystem.FileSystem {
	return op.engine.fs
}

func (op *Operation) fileOps() *fileops.FileOps {
	return op.engine.fileOps
}

// runChild performs a single-file kind from src to dst synchronously, as
// part of this operation. The child never prompts and emits nothing.
func (op *Operation) runChild(kind Kind, src, dst string) error {
	factory, err := lookupOperator(kind, false, true)
	if err != nil {
		return err
	}

	child := &Operation{
		id:       op.id,
		kind:     kind,
		target:   src,
		args:     childParams(dst),
		silent:   true,
		engine:   op.engine,
		ctx:      op.ctx,
		cancelFn: func() {},
		progress: NewProgress(op.engine.clock),
		log:      op.log,
		state:    StateExecuting,
		done:     make(chan struct{}),
	}
	child.impl = factory(child)

	err = child.impl.validate(child)
	if err != nil {
		return err
	}

	err = child.impl.execute(child)
	if err != nil {
		return err
	}

	return errors.Join(child.Errors()...)
}
