package local

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
)

var _ scalems.Context = (*ImmediateContext)(nil)

// ImmediateContext executes tasks synchronously through a ProcessRunner.
// Run returns only after the child process has exited, so the returned
// future is always resolved. There is no concurrency and no cancellation.
type ImmediateContext struct {
	runner ProcessRunner
	logger *slog.Logger

	mu    sync.Mutex
	state scalems.ContextState
}

// NewImmediateContext creates a synchronous local execution context. A
// nil runner defaults to an ExecRunner in the process working directory;
// a nil logger falls back to slog.Default().
func NewImmediateContext(runner ProcessRunner, logger *slog.Logger) *ImmediateContext {
	if runner == nil {
		runner = &ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImmediateContext{runner: runner, logger: logger}
}

// Name implements scalems.Context.
func (c *ImmediateContext) Name() string { return "local.immediate" }

// State implements scalems.Context.
func (c *ImmediateContext) State() scalems.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate implements scalems.Context.
func (c *ImmediateContext) Activate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != scalems.StateUninitialized {
		return fmt.Errorf("local: activate from %s: %w", c.state, scalems.ErrScopeCorruption)
	}
	c.state = scalems.StateActive
	return nil
}

// Run implements scalems.Context. The task executes before Run returns.
func (c *ImmediateContext) Run(ctx context.Context, task *scalems.Task) (scalems.Future, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state != scalems.StateActive {
		return nil, fmt.Errorf("local: run in %s context: %w", state, scalems.ErrDispatchNotImplemented)
	}

	c.logger.DebugContext(ctx, "running task", "task", task.ID.String(), "argv", task.Argv)
	result, err := c.runner.Run(ctx, task)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "task finished",
		"task", task.ID.String(), "exitcode", result.ExitCode)
	return scalems.Resolved(result, nil), nil
}

// Finalize implements scalems.Context. It is idempotent.
func (c *ImmediateContext) Finalize(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = scalems.StateFinalized
	return nil
}
