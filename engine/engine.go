package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/ext"
	"github.com/eirrgang/scale-ms/id"
	mw "github.com/eirrgang/scale-ms/middleware"
	"github.com/eirrgang/scale-ms/store"
	"github.com/eirrgang/scale-ms/store/memory"
	"github.com/eirrgang/scale-ms/subprocess"
	"github.com/eirrgang/scale-ms/workflow"
)

// instrumentationName is the scope name for engine-level OTel providers.
const instrumentationName = "github.com/eirrgang/scale-ms"

// Manager is the workflow manager: it owns the item record, the codec
// surfaces, the extension registry, and the execution scope stack, and
// dispatches tasks through the current scope.
//
// Use Build() to create one.
type Manager struct {
	cfg        scalems.Config
	logger     *slog.Logger
	items      store.ItemStore
	encoder    *codec.Encoder
	registry   *codec.Registry
	decoder    *codec.Decoder
	extensions *ext.Registry
	stack      *scalems.Stack
	chain      mw.Middleware
	mws        []mw.Middleware

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu     sync.Mutex
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the item store. Defaults to an in-memory store.
func WithStore(s store.ItemStore) Option {
	return func(m *Manager) { m.items = s }
}

// WithConfig sets the full runtime configuration.
func WithConfig(cfg scalems.Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithConcurrency sets worker concurrency for local dispatch.
func WithConcurrency(n int) Option {
	return func(m *Manager) { m.cfg.Concurrency = n }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithStack sets the execution scope stack. Defaults to a fresh stack
// so managers in the same process do not share dispatch scopes.
func WithStack(s *scalems.Stack) Option {
	return func(m *Manager) { m.stack = s }
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(m *Manager) { m.extensions.Register(e) }
}

// WithMiddleware appends middleware to the dispatch chain, after the
// built-in recover, tracing, metrics, logging, and timeout middleware.
func WithMiddleware(mws ...mw.Middleware) Option {
	return func(m *Manager) { m.mws = append(m.mws, mws...) }
}

// WithTracerProvider sets a custom OTel TracerProvider. When set, the
// tracing middleware uses this provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, the
// metrics middleware uses this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) { m.meterProvider = mp }
}

// Build creates a Manager with the standard codec surfaces wired in:
// the encoder with its preloaded representations, the decode registry
// with the subprocess record types registered, and a decoder that falls
// back to the generic item decoder for unrecognized types.
func Build(opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:        scalems.DefaultConfig(),
		logger:     slog.Default(),
		extensions: ext.NewRegistry(nil),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.items == nil {
		m.items = memory.New()
	}
	if m.stack == nil {
		m.stack = scalems.NewStack(m.logger)
	}

	m.encoder = codec.NewEncoder()
	m.registry = codec.NewRegistry()
	if err := subprocess.Register(m.registry); err != nil {
		return nil, fmt.Errorf("register subprocess record types: %w", err)
	}
	m.decoder = codec.NewDecoder(m.registry, workflow.DecodeItem, m.logger)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if m.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(m.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if m.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(m.meterProvider.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging →
	// inject → timeout, followed by user middleware.
	allMws := []mw.Middleware{
		mw.Recover(m.logger),
		tracingMw,
		metricsMw,
		mw.Logging(m.logger),
		mw.Inject(),
		mw.Timeout(m.logger),
	}
	allMws = append(allMws, m.mws...)
	m.chain = mw.Chain(allMws...)

	return m, nil
}

// Encoder returns the manager's encoder.
func (m *Manager) Encoder() *codec.Encoder { return m.encoder }

// Registry returns the decode registry.
func (m *Manager) Registry() *codec.Registry { return m.registry }

// Decoder returns the manager's decoder.
func (m *Manager) Decoder() *codec.Decoder { return m.decoder }

// Extensions returns the extension registry.
func (m *Manager) Extensions() *ext.Registry { return m.extensions }

// Stack returns the execution scope stack.
func (m *Manager) Stack() *scalems.Stack { return m.stack }

// Store returns the item store.
func (m *Manager) Store() store.ItemStore { return m.items }

// Config returns the runtime configuration.
func (m *Manager) Config() scalems.Config { return m.cfg }

// AddItem seals the item (if not already sealed) and records it in the
// store. Re-adding an item that is already recorded is not an error:
// identical content produces the identical identity, so the existing
// record is authoritative.
func (m *Manager) AddItem(ctx context.Context, item *workflow.Item) (id.ResourceID, error) {
	rid, err := item.Seal(m.encoder)
	if err != nil {
		return id.ResourceID{}, err
	}
	record, err := item.Encode(m.encoder)
	if err != nil {
		return id.ResourceID{}, err
	}

	err = m.items.PutItem(ctx, rid, record)
	switch {
	case errors.Is(err, scalems.ErrItemExists):
		m.logger.DebugContext(ctx, "item already recorded",
			slog.String("identity", rid.String()),
		)
	case err != nil:
		return id.ResourceID{}, err
	default:
		m.extensions.EmitItemAdded(ctx, item)
	}
	return rid, nil
}

// Item resolves a recorded identity to a live item handle by decoding
// the stored record through the manager's decoder.
func (m *Manager) Item(ctx context.Context, rid id.ResourceID) (*workflow.Item, error) {
	record, err := m.items.GetItem(ctx, rid)
	if err != nil {
		return nil, err
	}
	decoded, err := m.decoder.Decode(record)
	if err != nil {
		return nil, err
	}
	item, ok := decoded.(*workflow.Item)
	if !ok {
		return nil, fmt.Errorf("record %s decoded to %T: %w", rid, decoded, scalems.ErrSchemaViolation)
	}
	return item, nil
}

// Executable records a subprocess command in the store and returns it.
// The input, result placeholder, and command items are all sealed and
// recorded so that the command's identity is reproducible.
func (m *Manager) Executable(ctx context.Context, argv []string, opts ...subprocess.Option) (*subprocess.Command, error) {
	cmd, err := subprocess.Executable(m.encoder, argv, opts...)
	if err != nil {
		return nil, err
	}
	for _, item := range []*workflow.Item{cmd.Input, cmd.Result, cmd.Item} {
		if _, err := m.AddItem(ctx, item); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

// Submit dispatches the command's task through the current execution
// scope. If the command's result is already recorded, the stored result
// is returned as an immediately resolved future and nothing dispatches.
func (m *Manager) Submit(ctx context.Context, cmd *subprocess.Command) (scalems.Future, error) {
	task, err := cmd.Task()
	if err != nil {
		return nil, err
	}
	return m.Run(ctx, task)
}

// Run dispatches a task through the current execution scope, wrapped in
// the middleware chain. Completed work short-circuits: a stored result
// for the task's item is returned without dispatching.
//
// Dispatch errors surface through the returned future's Result method.
func (m *Manager) Run(ctx context.Context, task *scalems.Task) (scalems.Future, error) {
	if res, err := m.items.GetResult(ctx, task.Item); err == nil {
		m.logger.DebugContext(ctx, "task answered from store",
			slog.String("task_id", task.ID.String()),
			slog.String("item", task.Item.String()),
		)
		return scalems.Resolved(res, nil), nil
	} else if !errors.Is(err, scalems.ErrItemNotFound) {
		return nil, err
	}

	scope := m.stack.Current()
	fut := newFuture()
	go func() {
		start := time.Now()
		res, err := m.chain(ctx, task, func(ctx context.Context) (*scalems.Result, error) {
			m.extensions.EmitTaskStarted(ctx, task)
			inner, runErr := scope.Run(ctx, task)
			if runErr != nil {
				return nil, runErr
			}
			return inner.Result(ctx)
		})
		if err != nil {
			m.extensions.EmitTaskFailed(ctx, task, err)
		} else {
			m.extensions.EmitTaskCompleted(ctx, task, res, time.Since(start))
			if res != nil {
				if putErr := m.items.PutResult(ctx, task.Item, res); putErr != nil {
					m.logger.WarnContext(ctx, "failed to record result",
						slog.String("item", task.Item.String()),
						slog.String("error", putErr.Error()),
					)
				}
			}
		}
		fut.resolve(res, err)
	}()
	return fut, nil
}

// Export builds a serializable workflow document from the current store
// contents, with the subprocess record types declared.
func (m *Manager) Export(ctx context.Context) (*workflow.Document, error) {
	doc := workflow.NewDocument()
	if err := subprocess.DeclareTypes(doc); err != nil {
		return nil, err
	}
	identities, err := m.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, rid := range identities {
		record, err := m.items.GetItem(ctx, rid)
		if err != nil {
			return nil, err
		}
		if err := doc.AddItem(record); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Close shuts the manager down: extensions are notified and the store
// is closed. Close is idempotent.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.extensions.EmitShutdown(ctx)
	return m.items.Close()
}

// future is the engine-level Future implementation for dispatched tasks.
type future struct {
	done chan struct{}
	once sync.Once
	res  *scalems.Result
	err  error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) resolve(res *scalems.Result, err error) {
	f.once.Do(func() {
		f.res = res
		f.err = err
		close(f.done)
	})
}

func (f *future) Done() <-chan struct{} { return f.done }

func (f *future) Result(ctx context.Context) (*scalems.Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *future) Cancel() error { return scalems.ErrNotSupported }
