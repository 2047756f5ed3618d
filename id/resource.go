package id

import (
	"encoding/hex"
	"fmt"
)

// ResourceIDSize is the required byte length of a content-addressed
// identifier: a full SHA-256 digest.
const ResourceIDSize = 32

// ResourceID is a content-addressed identity derived from an item's
// canonical encoding. It is deterministic: items with equal identifying
// content share a ResourceID across processes and hosts.
type ResourceID struct {
	data [ResourceIDSize]byte
}

// NewResourceID constructs a ResourceID from a 32-byte digest.
// Any other length fails with ErrSchemaViolation.
func NewResourceID(digest []byte) (ResourceID, error) {
	if len(digest) != ResourceIDSize {
		return ResourceID{}, fmt.Errorf("id: resource identifier requires a %d-byte digest, got %d: %w",
			ResourceIDSize, len(digest), ErrSchemaViolation)
	}
	var r ResourceID
	copy(r.data[:], digest)
	return r, nil
}

// ParseResourceID parses the 64-character lowercase hex form.
func ParseResourceID(s string) (ResourceID, error) {
	b, err := decodeHex(s, ResourceIDSize, KindResource)
	if err != nil {
		return ResourceID{}, err
	}
	return NewResourceID(b)
}

// ResourceIDFrom coerces another representation into a ResourceID.
// Accepted inputs: ResourceID, *ResourceID, hex string, raw 32-byte slice.
// Anything else fails with ErrInvalidRepresentation.
func ResourceIDFrom(obj any) (ResourceID, error) {
	switch v := obj.(type) {
	case ResourceID:
		return v, nil
	case *ResourceID:
		return *v, nil
	case string:
		return ParseResourceID(v)
	case []byte:
		return NewResourceID(v)
	default:
		return ResourceID{}, fmt.Errorf("id: cannot produce a resource identifier from %T: %w",
			obj, ErrInvalidRepresentation)
	}
}

// Kind implements Identifier.
func (r ResourceID) Kind() Kind { return KindResource }

// Bytes returns a copy of the 32-byte digest.
func (r ResourceID) Bytes() []byte {
	out := make([]byte, ResourceIDSize)
	copy(out, r.data[:])
	return out
}

// String returns the lowercase hexadecimal form.
func (r ResourceID) String() string { return hex.EncodeToString(r.data[:]) }

// IsZero reports whether the identifier is the (invalid) zero value.
func (r ResourceID) IsZero() bool { return r.data == [ResourceIDSize]byte{} }

// MarshalText implements encoding.TextMarshaler.
func (r ResourceID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ResourceID) UnmarshalText(data []byte) error {
	parsed, err := ParseResourceID(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
