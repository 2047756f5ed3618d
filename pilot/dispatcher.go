package pilot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
)

// EnvCoordinationURL names the environment variable carrying the
// coordination endpoint for the default executor.
const EnvCoordinationURL = "SCALEMS_COORDINATION_URL"

var _ scalems.Context = (*Context)(nil)

// Context dispatches tasks to a remote pilot-job session. Activation
// fails fast with ErrConfiguration when the coordination endpoint is
// missing or unreachable, before any remote resources are allocated.
type Context struct {
	executor Executor
	logger   *slog.Logger

	mu      sync.Mutex
	state   scalems.ContextState
	session string
}

// NewContext creates a remote dispatch context over an executor. A nil
// executor defers to Activate, which builds a RedisExecutor from the
// SCALEMS_COORDINATION_URL environment variable.
func NewContext(executor Executor, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		executor: executor,
		logger:   logger,
		session:  "session-" + id.NewContextID().String(),
	}
}

// Name implements scalems.Context.
func (c *Context) Name() string { return "pilot" }

// State implements scalems.Context.
func (c *Context) State() scalems.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate implements scalems.Context. It establishes the remote session
// and verifies the endpoint before the context becomes active.
func (c *Context) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != scalems.StateUninitialized {
		return fmt.Errorf("pilot: activate from %s: %w", c.state, scalems.ErrScopeCorruption)
	}

	if c.executor == nil {
		url := os.Getenv(EnvCoordinationURL)
		if url == "" {
			return fmt.Errorf("pilot: %s is not set: %w", EnvCoordinationURL, scalems.ErrConfiguration)
		}
		executor, err := NewRedisExecutor(url, c.session, WithLogger(c.logger))
		if err != nil {
			return err
		}
		c.executor = executor
	}

	if err := c.executor.Connect(ctx); err != nil {
		return err
	}

	c.state = scalems.StateActive
	c.logger.InfoContext(ctx, "pilot session active", "session", c.session)
	return nil
}

// Run implements scalems.Context. The task is submitted immediately and
// the returned future resolves when the remote system reports that task's
// completion. Resolving one future never waits on unrelated tasks.
func (c *Context) Run(ctx context.Context, task *scalems.Task) (scalems.Future, error) {
	c.mu.Lock()
	state := c.state
	executor := c.executor
	c.mu.Unlock()
	if state != scalems.StateActive {
		return nil, fmt.Errorf("pilot: run in %s context: %w", state, scalems.ErrDispatchNotImplemented)
	}

	if err := executor.Submit(ctx, task); err != nil {
		return nil, err
	}

	f := &pilotFuture{done: make(chan struct{})}
	go func() {
		res, err := executor.Await(context.Background(), task.ID)
		f.resolve(res, err)
	}()
	return f, nil
}

// Finalize implements scalems.Context. It is idempotent.
func (c *Context) Finalize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == scalems.StateFinalized {
		return nil
	}
	c.state = scalems.StateFinalized

	if c.executor != nil {
		if err := c.executor.Close(); err != nil {
			return fmt.Errorf("pilot: close session: %w", err)
		}
	}
	c.logger.InfoContext(ctx, "pilot session finalized", "session", c.session)
	return nil
}

// pilotFuture resolves when the remote system reports completion.
type pilotFuture struct {
	done chan struct{}
	once sync.Once
	res  *scalems.Result
	err  error
}

func (f *pilotFuture) resolve(res *scalems.Result, err error) {
	f.once.Do(func() {
		f.res = res
		f.err = err
		close(f.done)
	})
}

// Done implements scalems.Future.
func (f *pilotFuture) Done() <-chan struct{} { return f.done }

// Result implements scalems.Future.
func (f *pilotFuture) Result(ctx context.Context) (*scalems.Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel implements scalems.Future. Remote cancellation is not
// supported; the request is rejected rather than ignored.
func (f *pilotFuture) Cancel() error { return scalems.ErrNotSupported }
