// Package store defines persistence for workflow state: encoded item
// records keyed by content address, and the results of completed work.
package store

import (
	"context"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
)

// ItemStore persists encoded workflow items and task results, keyed by
// content-addressed identity. Because keys are content-derived, a present
// result means the work has already been done: managers consult the store
// before dispatching.
type ItemStore interface {
	// PutItem stores an encoded item record. Storing an identity that is
	// already present fails with ErrItemExists.
	PutItem(ctx context.Context, identity id.ResourceID, record map[string]any) error

	// GetItem retrieves an encoded item record, or ErrItemNotFound.
	GetItem(ctx context.Context, identity id.ResourceID) (map[string]any, error)

	// HasItem reports whether an item record is present.
	HasItem(ctx context.Context, identity id.ResourceID) (bool, error)

	// ListItems returns stored item identities in insertion order.
	ListItems(ctx context.Context) ([]id.ResourceID, error)

	// PutResult records the outcome of executing an item. Recording a
	// result for the same identity again overwrites: content-equal work
	// yields interchangeable results.
	PutResult(ctx context.Context, identity id.ResourceID, result *scalems.Result) error

	// GetResult retrieves a recorded outcome, or ErrItemNotFound.
	GetResult(ctx context.Context, identity id.ResourceID) (*scalems.Result, error)

	// Migrate prepares backend structures.
	Migrate(ctx context.Context) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
