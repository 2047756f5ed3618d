// Package memory provides an in-memory ItemStore for tests and
// single-process workflows.
package memory

import (
	"context"
	"fmt"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/store"
)

var _ store.ItemStore = (*Store)(nil)

// Store is a mutex-guarded in-memory ItemStore. Records are copied on
// read and write so callers never share mutable state with the store.
type Store struct {
	mu      sync.RWMutex
	items   map[string]map[string]any
	results map[string]*scalems.Result
	order   []id.ResourceID
	closed  bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		items:   make(map[string]map[string]any),
		results: make(map[string]*scalems.Result),
	}
}

// PutItem implements store.ItemStore.
func (s *Store) PutItem(_ context.Context, identity id.ResourceID, record map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scalems.ErrStoreClosed
	}
	key := identity.String()
	if _, ok := s.items[key]; ok {
		return fmt.Errorf("store/memory: %s: %w", key, scalems.ErrItemExists)
	}
	s.items[key] = copyRecord(record)
	s.order = append(s.order, identity)
	return nil
}

// GetItem implements store.ItemStore.
func (s *Store) GetItem(_ context.Context, identity id.ResourceID) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, scalems.ErrStoreClosed
	}
	record, ok := s.items[identity.String()]
	if !ok {
		return nil, fmt.Errorf("store/memory: %s: %w", identity, scalems.ErrItemNotFound)
	}
	return copyRecord(record), nil
}

// HasItem implements store.ItemStore.
func (s *Store) HasItem(_ context.Context, identity id.ResourceID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, scalems.ErrStoreClosed
	}
	_, ok := s.items[identity.String()]
	return ok, nil
}

// ListItems implements store.ItemStore.
func (s *Store) ListItems(_ context.Context) ([]id.ResourceID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, scalems.ErrStoreClosed
	}
	out := make([]id.ResourceID, len(s.order))
	copy(out, s.order)
	return out, nil
}

// PutResult implements store.ItemStore.
func (s *Store) PutResult(_ context.Context, identity id.ResourceID, result *scalems.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scalems.ErrStoreClosed
	}
	cp := *result
	s.results[identity.String()] = &cp
	return nil
}

// GetResult implements store.ItemStore.
func (s *Store) GetResult(_ context.Context, identity id.ResourceID) (*scalems.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, scalems.ErrStoreClosed
	}
	result, ok := s.results[identity.String()]
	if !ok {
		return nil, fmt.Errorf("store/memory: result for %s: %w", identity, scalems.ErrItemNotFound)
	}
	cp := *result
	return &cp, nil
}

// Migrate implements store.ItemStore. It is a no-op for memory.
func (s *Store) Migrate(context.Context) error { return nil }

// Ping implements store.ItemStore.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return scalems.ErrStoreClosed
	}
	return nil
}

// Close implements store.ItemStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
