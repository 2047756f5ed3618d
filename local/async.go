package local

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	scalems "github.com/eirrgang/scale-ms"
)

var _ scalems.Context = (*AsyncContext)(nil)

// AsyncContext schedules tasks on a bounded local worker pool. Run
// returns a future immediately; the caller suspends only when resolving
// it. Completion order of independently submitted tasks is unspecified.
type AsyncContext struct {
	cfg    scalems.Config
	runner ProcessRunner
	logger *slog.Logger

	mu       sync.Mutex
	state    scalems.ContextState
	queue    chan *pending
	closing  chan struct{}
	intake   sync.WaitGroup
	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc
	limiter  *rate.Limiter
}

type pending struct {
	task   *scalems.Task
	future *taskFuture
}

// NewAsyncContext creates a pooled local execution context. Concurrency,
// queue depth, launch rate, and shutdown deadline come from cfg.
func NewAsyncContext(cfg scalems.Config, runner ProcessRunner, logger *slog.Logger) *AsyncContext {
	if runner == nil {
		runner = &ExecRunner{WorkDir: cfg.WorkDir}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = scalems.DefaultConfig().Concurrency
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = scalems.DefaultConfig().QueueDepth
	}
	return &AsyncContext{cfg: cfg, runner: runner, logger: logger}
}

// Name implements scalems.Context.
func (c *AsyncContext) Name() string { return "local.async" }

// State implements scalems.Context.
func (c *AsyncContext) State() scalems.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate implements scalems.Context: it starts the worker pool.
func (c *AsyncContext) Activate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != scalems.StateUninitialized {
		return fmt.Errorf("local: activate from %s: %w", c.state, scalems.ErrScopeCorruption)
	}

	poolCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.group, c.groupCtx = errgroup.WithContext(poolCtx)
	c.queue = make(chan *pending, c.cfg.QueueDepth)
	c.closing = make(chan struct{})
	if c.cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.cfg.RatePerSecond), 1)
	}

	for range c.cfg.Concurrency {
		c.group.Go(c.work)
	}

	c.state = scalems.StateActive
	c.logger.Info("worker pool started",
		slog.Int("concurrency", c.cfg.Concurrency),
		slog.Int("queue_depth", c.cfg.QueueDepth),
	)
	return nil
}

func (c *AsyncContext) work() error {
	for p := range c.queue {
		if c.limiter != nil {
			if err := c.limiter.Wait(c.groupCtx); err != nil {
				p.future.resolve(nil, err)
				continue
			}
		}
		res, err := c.runner.Run(c.groupCtx, p.task)
		if err != nil {
			c.logger.Error("task failed",
				"task", p.task.ID.String(), "error", err)
		} else {
			c.logger.Debug("task finished",
				"task", p.task.ID.String(), "exitcode", res.ExitCode)
		}
		p.future.resolve(res, err)
	}
	return nil
}

// Run implements scalems.Context. It enqueues the task, blocking when
// the queue is full, and returns a handle resolved on completion.
func (c *AsyncContext) Run(ctx context.Context, task *scalems.Task) (scalems.Future, error) {
	c.mu.Lock()
	if c.state != scalems.StateActive {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("local: run in %s context: %w", state, scalems.ErrDispatchNotImplemented)
	}
	// Registering with intake under the same lock that Finalize takes to
	// flip state guarantees Finalize waits for this send before closing
	// the queue.
	c.intake.Add(1)
	queue, closing := c.queue, c.closing
	c.mu.Unlock()
	defer c.intake.Done()

	p := &pending{task: task, future: newTaskFuture()}
	select {
	case queue <- p:
		return p.future, nil
	case <-closing:
		return nil, fmt.Errorf("local: run in %s context: %w", scalems.StateFinalized, scalems.ErrDispatchNotImplemented)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Finalize implements scalems.Context: it stops intake and waits for
// in-flight tasks up to the shutdown timeout.
func (c *AsyncContext) Finalize(ctx context.Context) error {
	c.mu.Lock()
	if c.state != scalems.StateActive {
		c.state = scalems.StateFinalized
		c.mu.Unlock()
		return nil
	}
	c.state = scalems.StateFinalized
	queue, closing := c.queue, c.closing
	c.mu.Unlock()

	// Unpark senders blocked on a full queue, then wait for every Run
	// that passed the state check before closing the channel they hold.
	close(closing)
	c.intake.Wait()
	close(queue)

	done := make(chan struct{})
	go func() {
		_ = c.group.Wait()
		close(done)
	}()

	timeout := c.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = scalems.DefaultConfig().ShutdownTimeout
	}

	select {
	case <-done:
		c.cancel()
		c.logger.Info("worker pool stopped")
		return nil
	case <-time.After(timeout):
		c.cancel()
		return fmt.Errorf("local: shutdown deadline exceeded after %s", timeout)
	case <-ctx.Done():
		c.cancel()
		return ctx.Err()
	}
}

// taskFuture resolves exactly once when its task completes.
type taskFuture struct {
	done chan struct{}
	once sync.Once
	res  *scalems.Result
	err  error
}

func newTaskFuture() *taskFuture {
	return &taskFuture{done: make(chan struct{})}
}

func (f *taskFuture) resolve(res *scalems.Result, err error) {
	f.once.Do(func() {
		f.res = res
		f.err = err
		close(f.done)
	})
}

// Done implements scalems.Future.
func (f *taskFuture) Done() <-chan struct{} { return f.done }

// Result implements scalems.Future.
func (f *taskFuture) Result(ctx context.Context) (*scalems.Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel implements scalems.Future. Local execution has no cancellation;
// the request is rejected rather than ignored.
func (f *taskFuture) Cancel() error { return scalems.ErrNotSupported }
