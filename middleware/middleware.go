package middleware

import (
	"context"

	scalems "github.com/eirrgang/scale-ms"
)

// Handler is the terminal function that realizes a task.
type Handler func(ctx context.Context) (*scalems.Result, error)

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the task being dispatched, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, inject) executes as:
//
//	logging → recover → inject → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, task *scalems.Task, next Handler) (*scalems.Result, error) {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (*scalems.Result, error) {
				return mw(ctx, task, prev)
			}
		}
		return h(ctx)
	}
}
