package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	scalems "github.com/eirrgang/scale-ms"
)

// Recover returns middleware that recovers from panics in the handler chain.
// Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (res *scalems.Result, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("task handler panicked",
					slog.String("task_name", task.Name),
					slog.String("task_id", task.ID.String()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				res = nil
				retErr = fmt.Errorf("panic in task %s: %v", task.Name, r)
			}
		}()
		return next(ctx)
	}
}
