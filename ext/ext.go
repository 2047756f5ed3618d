package ext

import (
	"context"
	"time"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/workflow"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ItemAdded is called after a sealed item is added to the workflow record.
type ItemAdded interface {
	OnItemAdded(ctx context.Context, item *workflow.Item) error
}

// TaskStarted is called when an execution context begins running a task.
type TaskStarted interface {
	OnTaskStarted(ctx context.Context, task *scalems.Task) error
}

// TaskCompleted is called after a task finishes. The result may carry a
// nonzero exit code; dispatch itself succeeded.
type TaskCompleted interface {
	OnTaskCompleted(ctx context.Context, task *scalems.Task, res *scalems.Result, elapsed time.Duration) error
}

// TaskFailed is called when dispatch or execution fails with an error.
type TaskFailed interface {
	OnTaskFailed(ctx context.Context, task *scalems.Task, err error) error
}

// Shutdown is called during graceful shutdown of the workflow manager.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
