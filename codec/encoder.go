package codec

import (
	"encoding/hex"
	"fmt"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
)

// MatchFunc reports whether a handler applies to a value.
type MatchFunc func(obj any) bool

// HandlerFunc converts a value to a base-encodable representation.
type HandlerFunc func(obj any) (any, error)

// MatchType returns a MatchFunc that matches values assignable to T.
func MatchType[T any]() MatchFunc {
	return func(obj any) bool {
		_, ok := obj.(T)
		return ok
	}
}

// HandleType adapts a typed conversion function to a HandlerFunc.
func HandleType[T any](fn func(T) (any, error)) HandlerFunc {
	return func(obj any) (any, error) {
		v, ok := obj.(T)
		if !ok {
			return nil, fmt.Errorf("codec: handler received %T: %w", obj, scalems.ErrEncoding)
		}
		return fn(v)
	}
}

type encoderEntry struct {
	match   MatchFunc
	handler HandlerFunc
}

// Encoder converts registered object types to the base-encodable value
// space. Handlers are consulted in registration order and the first match
// wins, so registration order is the precedence rule: register more
// specific matches before more general ones.
type Encoder struct {
	mu      sync.RWMutex
	entries []encoderEntry
}

// NewEncoder returns an Encoder preloaded with the standard handlers:
// []byte encodes to its lowercase hex string.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Register(MatchType[[]byte](), HandleType(func(b []byte) (any, error) {
		return hex.EncodeToString(b), nil
	}))
	return e
}

// Register appends a (match, handler) pair at the lowest precedence
// position.
func (e *Encoder) Register(match MatchFunc, handler HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, encoderEntry{match: match, handler: handler})
}

// Encode converts obj to a base-encodable value. Values already in the
// base-encodable space pass through unchanged unless a registered handler
// matches first. Handler output is validated through the canonical
// serializer rather than by static typing; invalid output is an encoding
// error. Values with no handler and no native encoding fail with
// ErrEncoding.
func (e *Encoder) Encode(obj any) (any, error) {
	e.mu.RLock()
	entries := e.entries
	e.mu.RUnlock()

	for _, entry := range entries {
		if !entry.match(obj) {
			continue
		}
		out, err := entry.handler(obj)
		if err != nil {
			return nil, fmt.Errorf("codec: encode %T: %w", obj, err)
		}
		if _, err := Marshal(out); err != nil {
			return nil, fmt.Errorf("codec: handler for %T produced unencodable output: %w", obj, err)
		}
		return out, nil
	}

	if _, err := Marshal(obj); err == nil {
		return obj, nil
	}
	return nil, fmt.Errorf("codec: no handler for %T: %w", obj, scalems.ErrEncoding)
}
