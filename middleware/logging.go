package middleware

import (
	"context"
	"log/slog"
	"time"

	scalems "github.com/eirrgang/scale-ms"
)

// Logging returns middleware that logs task dispatch and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error) {
		logger.Info("task dispatched",
			slog.String("task_name", task.Name),
			slog.String("task_id", task.ID.String()),
			slog.String("item", task.Item.String()),
		)

		start := time.Now()
		res, err := next(ctx)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			logger.Error("task failed",
				slog.String("task_name", task.Name),
				slog.String("task_id", task.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		case res != nil && !res.Success():
			logger.Warn("task exited nonzero",
				slog.String("task_name", task.Name),
				slog.String("task_id", task.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.Int("exitcode", res.ExitCode),
			)
		default:
			logger.Info("task completed",
				slog.String("task_name", task.Name),
				slog.String("task_id", task.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return res, err
	}
}
