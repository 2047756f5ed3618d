package scalems

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Stack is a thread-safe stack of execution contexts. The innermost
// active context receives dispatched work; an empty stack resolves to the
// root context, which refuses to dispatch.
//
// Exits are expected in reverse entry order. An out-of-order exit is
// tolerated: the stack logs a warning, removes the exiting context
// wherever it sits, and keeps the remaining scopes in order.
type Stack struct {
	mu     sync.Mutex
	frames []Context
	logger *slog.Logger
}

// NewStack creates an empty context stack. A nil logger falls back to
// slog.Default().
func NewStack(logger *slog.Logger) *Stack {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stack{logger: logger}
}

// Current returns the innermost entered context, or the root context when
// nothing has been entered.
func (s *Stack) Current() Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frames) == 0 {
		return Root()
	}
	return s.frames[len(s.frames)-1]
}

// Depth reports how many contexts have been entered.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Enter activates c and pushes it onto the stack. If activation fails the
// stack is unchanged.
func (s *Stack) Enter(ctx context.Context, c Context) error {
	if err := c.Activate(ctx); err != nil {
		return fmt.Errorf("enter %q: %w", c.Name(), err)
	}

	s.mu.Lock()
	s.frames = append(s.frames, c)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "entered execution scope", "context", c.Name())
	return nil
}

// Exit finalizes c and removes it from the stack. When c is not the
// innermost context, Exit heals the stack: c is removed from wherever it
// sits, the other scopes keep their order, and the call reports
// ErrScopeCorruption. c is finalized either way.
func (s *Stack) Exit(ctx context.Context, c Context) error {
	s.mu.Lock()
	idx := -1
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i] == c {
			idx = i
			break
		}
	}

	var corrupt error
	switch {
	case idx == len(s.frames)-1 && idx >= 0:
		s.frames = s.frames[:idx]
	case idx >= 0:
		s.frames = append(s.frames[:idx], s.frames[idx+1:]...)
		corrupt = fmt.Errorf("exit %q before %d inner scope(s): %w",
			c.Name(), len(s.frames)-idx, ErrScopeCorruption)
	default:
		corrupt = fmt.Errorf("exit %q: not on the stack: %w", c.Name(), ErrScopeCorruption)
	}
	s.mu.Unlock()

	if corrupt != nil {
		s.logger.WarnContext(ctx, "context stack out of order",
			"context", c.Name(), "error", corrupt)
	}

	if err := c.Finalize(ctx); err != nil {
		return fmt.Errorf("finalize %q: %w", c.Name(), err)
	}

	s.logger.DebugContext(ctx, "exited execution scope", "context", c.Name())
	return corrupt
}

// defaultStack is the process-wide context stack used by the package-level
// Current, Enter, and Exit functions.
var defaultStack = NewStack(nil)

// Current returns the innermost context of the process-wide stack.
func Current() Context { return defaultStack.Current() }

// Enter pushes c onto the process-wide stack.
func Enter(ctx context.Context, c Context) error { return defaultStack.Enter(ctx, c) }

// Exit pops c from the process-wide stack.
func Exit(ctx context.Context, c Context) error { return defaultStack.Exit(ctx, c) }
