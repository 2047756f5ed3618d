package pilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/backoff"
	"github.com/eirrgang/scale-ms/id"
)

var _ Executor = (*RedisExecutor)(nil)

// RedisExecutor coordinates with a remote resource manager through a
// Redis endpoint: submissions are pushed to a session queue and each
// task's completion arrives on its own key.
type RedisExecutor struct {
	client  *redis.Client
	codec   Codec
	session string
	logger  *slog.Logger
	retries int
	backoff backoff.Strategy
}

// RedisOption configures the RedisExecutor.
type RedisOption func(*RedisExecutor)

// WithCodec selects the frame codec. The default is JSON.
func WithCodec(c Codec) RedisOption {
	return func(e *RedisExecutor) { e.codec = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RedisOption {
	return func(e *RedisExecutor) { e.logger = logger }
}

// WithConnectRetries sets how many times Connect retries an unreachable
// endpoint before giving up. Zero disables retries.
func WithConnectRetries(n int, strategy backoff.Strategy) RedisOption {
	return func(e *RedisExecutor) {
		e.retries = n
		if strategy != nil {
			e.backoff = strategy
		}
	}
}

// NewRedisExecutor creates an executor for a coordination URL, e.g.
// "redis://localhost:6379/0". The session name scopes all keys so that
// concurrent sessions do not observe each other's tasks.
func NewRedisExecutor(url, session string, opts ...RedisOption) (*RedisExecutor, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("pilot: coordination url: %v: %w", err, scalems.ErrConfiguration)
	}
	if session == "" {
		return nil, fmt.Errorf("pilot: empty session name: %w", scalems.ErrConfiguration)
	}

	e := &RedisExecutor{
		client:  redis.NewClient(opt),
		codec:   &JSONCodec{},
		session: session,
		logger:  slog.Default(),
		backoff: backoff.DefaultStrategy(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Connect implements Executor. Unreachable endpoints are retried per
// the configured backoff strategy before the error surfaces.
func (e *RedisExecutor) Connect(ctx context.Context) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = e.client.Ping(ctx).Err()
		if err == nil {
			return nil
		}
		if attempt >= e.retries {
			break
		}
		delay := e.backoff.Delay(attempt + 1)
		e.logger.WarnContext(ctx, "coordination endpoint unreachable, retrying",
			"attempt", attempt+1, "delay", delay.String(), "error", err.Error())
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("pilot: coordination endpoint unreachable: %v: %w", err, scalems.ErrConfiguration)
}

// Submit implements Executor.
func (e *RedisExecutor) Submit(ctx context.Context, task *scalems.Task) error {
	frame := &Frame{
		ID:        task.ID.String(),
		Type:      FrameSubmit,
		Session:   e.session,
		Task:      task,
		Timestamp: time.Now().UTC(),
	}
	data, err := e.codec.Encode(frame)
	if err != nil {
		return fmt.Errorf("pilot: encode submit frame: %w", err)
	}

	if err := e.client.RPush(ctx, submitKey(e.session), data).Err(); err != nil {
		return fmt.Errorf("pilot: submit %s: %w", task.ID, err)
	}
	e.logger.DebugContext(ctx, "task submitted",
		"task", task.ID.String(), "session", e.session, "codec", e.codec.Name())
	return nil
}

// Poll implements Executor. It peeks at the task's completion key
// without consuming the frame.
func (e *RedisExecutor) Poll(ctx context.Context, taskID id.InstanceID) (bool, error) {
	n, err := e.client.LLen(ctx, doneKey(e.session, taskID.String())).Result()
	if err != nil {
		return false, fmt.Errorf("pilot: poll %s: %w", taskID, err)
	}
	return n > 0, nil
}

// Await implements Executor. It blocks on the task's own completion key,
// so unrelated tasks in the session never delay the caller.
func (e *RedisExecutor) Await(ctx context.Context, taskID id.InstanceID) (*scalems.Result, error) {
	vals, err := e.client.BLPop(ctx, 0, doneKey(e.session, taskID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("pilot: await %s: %w", taskID, err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("pilot: await %s: malformed completion: %w", taskID, scalems.ErrSchemaViolation)
	}

	frame, err := e.codec.Decode([]byte(vals[1]))
	if err != nil {
		return nil, fmt.Errorf("pilot: decode completion frame: %w", err)
	}

	switch frame.Type {
	case FrameResult:
		if frame.Result == nil {
			return nil, fmt.Errorf("pilot: result frame without result: %w", scalems.ErrSchemaViolation)
		}
		return frame.Result, nil
	case FrameErr:
		return nil, fmt.Errorf("pilot: task %s failed remotely: %s", taskID, frame.Error)
	default:
		return nil, fmt.Errorf("pilot: unexpected frame type %q: %w", frame.Type, scalems.ErrSchemaViolation)
	}
}

// Complete reports a task outcome back to the session. It is the
// worker-side counterpart of Await.
func (e *RedisExecutor) Complete(ctx context.Context, result *scalems.Result) error {
	frame := &Frame{
		ID:        result.Task.String(),
		Type:      FrameResult,
		Session:   e.session,
		Result:    result,
		Timestamp: time.Now().UTC(),
	}
	data, err := e.codec.Encode(frame)
	if err != nil {
		return fmt.Errorf("pilot: encode result frame: %w", err)
	}
	if err := e.client.RPush(ctx, doneKey(e.session, result.Task.String()), data).Err(); err != nil {
		return fmt.Errorf("pilot: complete %s: %w", result.Task, err)
	}
	return nil
}

// NextSubmission pops the next submitted task, blocking up to timeout.
// It is the worker-side counterpart of Submit; a zero timeout blocks
// indefinitely.
func (e *RedisExecutor) NextSubmission(ctx context.Context, timeout time.Duration) (*scalems.Task, error) {
	vals, err := e.client.BLPop(ctx, timeout, submitKey(e.session)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, scalems.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pilot: next submission: %w", err)
	}

	frame, err := e.codec.Decode([]byte(vals[1]))
	if err != nil {
		return nil, fmt.Errorf("pilot: decode submit frame: %w", err)
	}
	if frame.Type != FrameSubmit || frame.Task == nil {
		return nil, fmt.Errorf("pilot: unexpected frame type %q: %w", frame.Type, scalems.ErrSchemaViolation)
	}
	return frame.Task, nil
}

// Close implements Executor.
func (e *RedisExecutor) Close() error {
	return e.client.Close()
}
