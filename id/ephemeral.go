package id

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// EphemeralIDSize is the byte length of a process-scoped identifier.
const EphemeralIDSize = 16

// EphemeralID is a random, process-scoped identity. It is not
// reproducible: re-executing the same work yields a different EphemeralID.
// Workflow items carry an EphemeralID until they are fingerprinted.
type EphemeralID struct {
	data uuid.UUID
}

// NewEphemeralID generates a fresh random identifier.
func NewEphemeralID() EphemeralID {
	return EphemeralID{data: uuid.New()}
}

// ParseEphemeralID parses the 32-character lowercase hex form.
func ParseEphemeralID(s string) (EphemeralID, error) {
	b, err := decodeHex(s, EphemeralIDSize, KindEphemeral)
	if err != nil {
		return EphemeralID{}, err
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return EphemeralID{}, fmt.Errorf("id: ephemeral identifier from %q: %w", s, ErrInvalidRepresentation)
	}
	return EphemeralID{data: u}, nil
}

// EphemeralIDFrom coerces another representation into an EphemeralID.
// Accepted inputs: EphemeralID, *EphemeralID, hex string.
func EphemeralIDFrom(obj any) (EphemeralID, error) {
	switch v := obj.(type) {
	case EphemeralID:
		return v, nil
	case *EphemeralID:
		return *v, nil
	case string:
		return ParseEphemeralID(v)
	default:
		return EphemeralID{}, fmt.Errorf("id: cannot produce an ephemeral identifier from %T: %w",
			obj, ErrInvalidRepresentation)
	}
}

// Kind implements Identifier.
func (e EphemeralID) Kind() Kind { return KindEphemeral }

// Bytes returns a copy of the 16-byte identifier.
func (e EphemeralID) Bytes() []byte {
	out := make([]byte, EphemeralIDSize)
	copy(out, e.data[:])
	return out
}

// String returns the lowercase hexadecimal form (no UUID hyphens:
// serialized identities are plain hex regardless of kind).
func (e EphemeralID) String() string { return hex.EncodeToString(e.data[:]) }
