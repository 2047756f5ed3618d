package id

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NamespaceScaleMS is the UUIDv5 namespace under which type names are
// resolved to stable 16-byte identities: uuid5(NAMESPACE_DNS, "scalems.org").
var NamespaceScaleMS = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("scalems.org"))

// TypeID identifies a workflow resource type by its namespaced name
// sequence, e.g. ("scalems", "subprocess", "Subprocess"). The same name
// sequence always derives the same 16-byte identity.
type TypeID struct {
	names []string
	data  uuid.UUID
}

// NewTypeID constructs a TypeID from a name sequence. The sequence must be
// non-empty and every part must be a non-empty string without embedded
// periods.
func NewTypeID(names ...string) (TypeID, error) {
	if len(names) == 0 {
		return TypeID{}, fmt.Errorf("id: type identifier requires a non-empty name sequence: %w", ErrInvalidRepresentation)
	}
	parts := make([]string, len(names))
	for i, part := range names {
		if part == "" || strings.Contains(part, ".") {
			return TypeID{}, fmt.Errorf("id: bad type name element %q: %w", part, ErrInvalidRepresentation)
		}
		parts[i] = part
	}
	return TypeID{
		names: parts,
		data:  uuid.NewSHA1(NamespaceScaleMS, []byte(strings.Join(parts, "."))),
	}, nil
}

// MustNewTypeID is like NewTypeID but panics on error. Use for
// compile-time-constant type names.
func MustNewTypeID(names ...string) TypeID {
	t, err := NewTypeID(names...)
	if err != nil {
		panic(fmt.Sprintf("id: must new type id %v: %v", names, err))
	}
	return t
}

// TypeIDFrom coerces another representation into a TypeID.
// Accepted inputs: TypeID, *TypeID, a dotted string ("scalems.subprocess"),
// or a sequence of name strings. A bare string without a period is
// ambiguous and rejected, as is anything else.
func TypeIDFrom(obj any) (TypeID, error) {
	switch v := obj.(type) {
	case TypeID:
		return v, nil
	case *TypeID:
		return *v, nil
	case []string:
		return NewTypeID(v...)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return TypeID{}, fmt.Errorf("id: type name element %v is not a string: %w", e, ErrInvalidRepresentation)
			}
			parts[i] = s
		}
		return NewTypeID(parts...)
	case string:
		if !strings.Contains(v, ".") {
			return TypeID{}, fmt.Errorf("id: bare string %q is not a dotted type path: %w", v, ErrInvalidRepresentation)
		}
		return NewTypeID(strings.Split(v, ".")...)
	default:
		return TypeID{}, fmt.Errorf("id: cannot produce a type identifier from %T: %w", obj, ErrInvalidRepresentation)
	}
}

// Kind implements Identifier.
func (t TypeID) Kind() Kind { return KindType }

// Bytes returns a copy of the derived 16-byte identity.
func (t TypeID) Bytes() []byte {
	out := make([]byte, len(t.data))
	copy(out, t.data[:])
	return out
}

// String returns the lowercase hexadecimal form of the derived identity.
func (t TypeID) String() string { return hex.EncodeToString(t.data[:]) }

// Name returns the period-delimited name, e.g. "scalems.subprocess.Subprocess".
func (t TypeID) Name() string { return strings.Join(t.names, ".") }

// ScopedName returns a copy of the name sequence.
func (t TypeID) ScopedName() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// IsZero reports whether the identifier is the (invalid) zero value.
func (t TypeID) IsZero() bool { return len(t.names) == 0 }
