package pilot

import (
	"context"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
)

// Executor is the remote-executor capability: an external resource
// manager that accepts task descriptions and reports their completion.
//
// Await resolves one task. Implementations must support waiting on a
// single task's completion without blocking on unrelated tasks in the
// same session.
type Executor interface {
	// Connect verifies the coordination endpoint is reachable.
	Connect(ctx context.Context) error

	// Submit pushes a task description and returns without waiting for
	// execution.
	Submit(ctx context.Context, task *scalems.Task) error

	// Poll checks whether the named task has completed without
	// blocking. The second return reports completion; the result is
	// left in place for Await to consume.
	Poll(ctx context.Context, taskID id.InstanceID) (bool, error)

	// Await blocks until the named task completes and returns its
	// outcome.
	Await(ctx context.Context, taskID id.InstanceID) (*scalems.Result, error)

	// Close releases the session.
	Close() error
}
