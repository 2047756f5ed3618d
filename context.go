package scalems

import (
	"context"
	"fmt"
)

// ContextState tracks the lifecycle of an execution context.
type ContextState int

const (
	// StateUninitialized is the state of a context that has been created
	// but not yet entered.
	StateUninitialized ContextState = iota

	// StateActive is the state of a context that may dispatch work.
	StateActive

	// StateFinalized is the state of a context that has been exited.
	// Finalized contexts never dispatch again.
	StateFinalized
)

// String returns the lowercase name of the state.
func (s ContextState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("ContextState(%d)", int(s))
	}
}

// Future is the handle for dispatched work. Result blocks until the task
// completes, the context is canceled, or the future is canceled.
type Future interface {
	// Done is closed when the result is available or the future failed.
	Done() <-chan struct{}

	// Result blocks for completion and returns the task outcome.
	Result(ctx context.Context) (*Result, error)

	// Cancel requests cancellation of pending work. Contexts that cannot
	// cancel return ErrNotSupported.
	Cancel() error
}

// Context is an execution environment for workflow tasks. Contexts are
// entered and exited through a Stack; between Activate and Finalize they
// accept work through Run.
type Context interface {
	// Name identifies the context for logs and diagnostics.
	Name() string

	// State reports the current lifecycle state.
	State() ContextState

	// Activate transitions the context from uninitialized to active,
	// acquiring whatever runtime resources dispatch needs.
	Activate(ctx context.Context) error

	// Run dispatches a task and returns a handle for its result.
	Run(ctx context.Context, task *Task) (Future, error)

	// Finalize transitions the context to finalized, waiting for
	// in-flight work and releasing resources. Finalize is idempotent.
	Finalize(ctx context.Context) error
}

// rootContext is the implicit bottom of every context stack. It is always
// active, never finalizes, and cannot dispatch: real work requires
// entering a concrete execution context first.
type rootContext struct{}

func (rootContext) Name() string                   { return "root" }
func (rootContext) State() ContextState            { return StateActive }
func (rootContext) Activate(context.Context) error { return nil }
func (rootContext) Finalize(context.Context) error { return nil }

func (rootContext) Run(_ context.Context, task *Task) (Future, error) {
	return nil, fmt.Errorf("run %q in root scope: %w", task.Name, ErrDispatchNotImplemented)
}

// Root returns the implicit root execution context.
func Root() Context { return rootContext{} }

// resolvedFuture is a Future that already holds its outcome. Immediate
// execution contexts return these.
type resolvedFuture struct {
	res  *Result
	err  error
	done chan struct{}
}

// Resolved wraps an already-computed outcome in a Future.
func Resolved(res *Result, err error) Future {
	done := make(chan struct{})
	close(done)
	return &resolvedFuture{res: res, err: err, done: done}
}

func (f *resolvedFuture) Done() <-chan struct{} { return f.done }

func (f *resolvedFuture) Result(context.Context) (*Result, error) {
	return f.res, f.err
}

func (f *resolvedFuture) Cancel() error { return ErrNotSupported }
