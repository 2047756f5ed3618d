package middleware

import (
	"context"

	scalems "github.com/eirrgang/scale-ms"
)

type taskContextKey struct{}

// Inject returns middleware that stores the task in the context so that
// handlers and extensions deeper in the chain can retrieve it with
// [TaskFrom] without threading the task through every signature.
func Inject() Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error) {
		ctx = context.WithValue(ctx, taskContextKey{}, task)
		return next(ctx)
	}
}

// TaskFrom extracts the task placed in the context by [Inject].
func TaskFrom(ctx context.Context) (*scalems.Task, bool) {
	task, ok := ctx.Value(taskContextKey{}).(*scalems.Task)
	return task, ok
}
