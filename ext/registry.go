package ext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/workflow"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type itemAddedEntry struct {
	name string
	hook ItemAdded
}

type taskStartedEntry struct {
	name string
	hook TaskStarted
}

type taskCompletedEntry struct {
	name string
	hook TaskCompleted
}

type taskFailedEntry struct {
	name string
	hook TaskFailed
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	itemAdded     []itemAddedEntry
	taskStarted   []taskStartedEntry
	taskCompleted []taskCompletedEntry
	taskFailed    []taskFailedEntry
	shutdown      []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(ItemAdded); ok {
		r.itemAdded = append(r.itemAdded, itemAddedEntry{name, h})
	}
	if h, ok := e.(TaskStarted); ok {
		r.taskStarted = append(r.taskStarted, taskStartedEntry{name, h})
	}
	if h, ok := e.(TaskCompleted); ok {
		r.taskCompleted = append(r.taskCompleted, taskCompletedEntry{name, h})
	}
	if h, ok := e.(TaskFailed); ok {
		r.taskFailed = append(r.taskFailed, taskFailedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitItemAdded notifies extensions that a sealed item entered the record.
func (r *Registry) EmitItemAdded(ctx context.Context, item *workflow.Item) {
	for _, e := range r.itemAdded {
		if err := r.invoke("OnItemAdded", e.name, func() error {
			return e.hook.OnItemAdded(ctx, item)
		}); err != nil {
			r.logHookError("OnItemAdded", e.name, err)
		}
	}
}

// EmitTaskStarted notifies extensions that a task began executing.
func (r *Registry) EmitTaskStarted(ctx context.Context, task *scalems.Task) {
	for _, e := range r.taskStarted {
		if err := r.invoke("OnTaskStarted", e.name, func() error {
			return e.hook.OnTaskStarted(ctx, task)
		}); err != nil {
			r.logHookError("OnTaskStarted", e.name, err)
		}
	}
}

// EmitTaskCompleted notifies extensions that a task finished.
func (r *Registry) EmitTaskCompleted(ctx context.Context, task *scalems.Task, res *scalems.Result, elapsed time.Duration) {
	for _, e := range r.taskCompleted {
		if err := r.invoke("OnTaskCompleted", e.name, func() error {
			return e.hook.OnTaskCompleted(ctx, task, res, elapsed)
		}); err != nil {
			r.logHookError("OnTaskCompleted", e.name, err)
		}
	}
}

// EmitTaskFailed notifies extensions that dispatch or execution failed.
func (r *Registry) EmitTaskFailed(ctx context.Context, task *scalems.Task, taskErr error) {
	for _, e := range r.taskFailed {
		if err := r.invoke("OnTaskFailed", e.name, func() error {
			return e.hook.OnTaskFailed(ctx, task, taskErr)
		}); err != nil {
			r.logHookError("OnTaskFailed", e.name, err)
		}
	}
}

// EmitShutdown notifies extensions of graceful shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := r.invoke("OnShutdown", e.name, func() error {
			return e.hook.OnShutdown(ctx)
		}); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// invoke runs a single hook, converting a panic into an error so one
// misbehaving extension cannot take down the dispatch goroutine.
func (r *Registry) invoke(hook, extName string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s hook of extension %s: %v", hook, extName, rec)
		}
	}()
	return fn()
}

func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
