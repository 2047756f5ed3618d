package middleware

import (
	"context"
	"log/slog"

	scalems "github.com/eirrgang/scale-ms"
)

// Timeout returns middleware that enforces a per-task execution deadline.
// If the task has a non-zero Timeout, a context.WithTimeout wraps the
// handler call. When the deadline is exceeded the context is cancelled and
// the handler should return context.DeadlineExceeded.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error) {
		if task.Timeout > 0 {
			logger.Debug("task timeout set",
				slog.String("task_id", task.ID.String()),
				slog.Duration("timeout", task.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, task.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
