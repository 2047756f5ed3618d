// Package id defines the identity types for workflow resources.
//
// Three kinds of identity exist on the wire: content-addressed resource
// identifiers (32-byte SHA-256 digests), ephemeral process-scoped
// identifiers (16-byte random UUIDs), and type identifiers (16-byte
// name-derived UUIDs under the scalems.org namespace). A fourth kind,
// InstanceID, identifies dispatch-layer objects (contexts, tasks, worker
// pools) and never appears in fingerprints or serialized workflow records.
package id

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrSchemaViolation reports identifier or record content that violates
	// a structural invariant (wrong digest length, empty name sequence).
	ErrSchemaViolation = errors.New("scalems: schema violation")

	// ErrInvalidRepresentation reports an input that cannot be coerced to
	// the requested identifier kind.
	ErrInvalidRepresentation = errors.New("scalems: invalid representation")
)

// Kind discriminates identifier types. Two identifiers of different kinds
// never compare equal, even with coincidentally equal bytes.
type Kind string

const (
	KindResource  Kind = "resource"
	KindEphemeral Kind = "ephemeral"
	KindType      Kind = "type"
)

// Identifier is the common contract for workflow identities.
// Implementations are immutable: Bytes and String never change for the
// life of the value.
type Identifier interface {
	// Kind reports the concrete identifier kind.
	Kind() Kind

	// Bytes returns the canonical byte form: 32 bytes for resource
	// identifiers, 16 bytes for ephemeral and type identifiers.
	Bytes() []byte

	// String returns the lowercase hexadecimal encoding of Bytes.
	String() string
}

// Equal reports whether two identifiers have the same kind and bytes.
// Kind is part of identity: equal bytes across kinds do not match.
func Equal(a, b Identifier) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && bytes.Equal(a.Bytes(), b.Bytes())
}

// Int returns the big-endian integer interpretation of an identifier's
// bytes.
func Int(i Identifier) *big.Int {
	return new(big.Int).SetBytes(i.Bytes())
}

// decodeHex decodes a hex string of exactly n bytes.
func decodeHex(s string, n int, kind Kind) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("id: %s identifier from %q: %w", kind, s, ErrInvalidRepresentation)
	}
	if len(b) != n {
		return nil, fmt.Errorf("id: %s identifier requires %d bytes, got %d: %w", kind, n, len(b), ErrSchemaViolation)
	}
	return b, nil
}
