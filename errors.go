package scalems

import (
	"errors"

	"github.com/eirrgang/scale-ms/id"
)

var (
	// Record shape errors. These originate in the id package so that
	// identifier constructors can report them without importing this
	// package; they are re-exported here as the canonical names.
	ErrSchemaViolation       = id.ErrSchemaViolation
	ErrInvalidRepresentation = id.ErrInvalidRepresentation

	// Serialization errors.
	ErrEncoding = errors.New("scalems: no encoder for value")

	// Registry errors.
	ErrAlreadyRegistered = errors.New("scalems: type already registered")
	ErrUnregisteredType  = errors.New("scalems: type not registered")
	ErrStaleRegistration = errors.New("scalems: registration does not match registered type")

	// Dispatch errors.
	ErrDispatchNotImplemented = errors.New("scalems: root context cannot dispatch work")
	ErrScopeCorruption        = errors.New("scalems: context stack out of order")
	ErrConfiguration          = errors.New("scalems: execution context misconfigured")
	ErrMissingImplementation  = errors.New("scalems: no implementation for item type")
	ErrNotSupported           = errors.New("scalems: operation not supported")

	// Store errors.
	ErrItemExists   = errors.New("scalems: item already exists")
	ErrItemNotFound = errors.New("scalems: item not found")
	ErrStoreClosed  = errors.New("scalems: store closed")
)
