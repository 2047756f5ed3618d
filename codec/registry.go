package codec

import (
	"fmt"
	"sort"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
)

// DecodeFunc reconstructs a live object from its encoded record.
type DecodeFunc func(obj map[string]any) (any, error)

// Registration associates a resource type with its decoding
// implementation. The *Registration pointer returned by the caller to
// Register is the ownership token: Unregister requires the same pointer,
// so a registration cannot be removed (or silently replaced) by code that
// does not own it.
type Registration struct {
	// Type is the resource type this registration serves.
	Type id.TypeID

	// Decode reconstructs an object of the type from an encoded record.
	Decode DecodeFunc
}

// Registry maps resource types to their registered implementations.
// Lifetimes are explicit: entries exist from Register until Unregister,
// and conflicts are protocol errors rather than silent replacements.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register installs a registration. Registering a type that is already
// registered fails with ErrAlreadyRegistered.
func (r *Registry) Register(reg *Registration) error {
	if reg == nil || reg.Type.IsZero() || reg.Decode == nil {
		return fmt.Errorf("codec: incomplete registration: %w", scalems.ErrInvalidRepresentation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := reg.Type.String()
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("codec: %s: %w", reg.Type.Name(), scalems.ErrAlreadyRegistered)
	}
	r.entries[key] = reg
	return nil
}

// Unregister removes a registration. The caller must present the same
// *Registration it registered: an absent type fails with
// ErrUnregisteredType, and a present entry owned by a different
// registration fails with ErrStaleRegistration.
func (r *Registry) Unregister(reg *Registration) error {
	if reg == nil {
		return fmt.Errorf("codec: nil registration: %w", scalems.ErrInvalidRepresentation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := reg.Type.String()
	existing, ok := r.entries[key]
	if !ok {
		return fmt.Errorf("codec: %s: %w", reg.Type.Name(), scalems.ErrUnregisteredType)
	}
	if existing != reg {
		return fmt.Errorf("codec: %s: %w", reg.Type.Name(), scalems.ErrStaleRegistration)
	}
	delete(r.entries, key)
	return nil
}

// Lookup returns the registration for a type, or ErrUnregisteredType.
func (r *Registry) Lookup(t id.TypeID) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[t.String()]
	if !ok {
		return nil, fmt.Errorf("codec: %s: %w", t.Name(), scalems.ErrUnregisteredType)
	}
	return reg, nil
}

// Types lists the registered types in name order.
func (r *Registry) Types() []id.TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]id.TypeID, 0, len(r.entries))
	for _, reg := range r.entries {
		out = append(out, reg.Type)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
