package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity class encoded in an InstanceID.
type Prefix string

// Prefix constants for runtime entities.
const (
	PrefixContext Prefix = "ctx"
	PrefixTask    Prefix = "task"
	PrefixWorker  Prefix = "wkr"
)

// InstanceID identifies a runtime entity such as an execution context, a
// dispatched task, or a worker. Unlike ResourceID it is not derived from
// content: values are K-sortable (UUIDv7-based), globally unique, and
// URL-safe in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type InstanceID struct {
	inner typeid.TypeID
	valid bool
}

// NilInstance is the zero-value InstanceID.
var NilInstance InstanceID

// NewInstanceID generates a new globally unique InstanceID with the given
// prefix. It panics if prefix is not valid (programming error).
func NewInstanceID(prefix Prefix) InstanceID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return InstanceID{inner: tid, valid: true}
}

// ParseInstanceID parses a string of the form "prefix_suffix"
// (e.g. "task_01h2xcejqtf2nbrexx3vqjhp41") into an InstanceID.
func ParseInstanceID(s string) (InstanceID, error) {
	if s == "" {
		return NilInstance, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return NilInstance, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return InstanceID{inner: tid, valid: true}, nil
}

// ParseInstanceIDWithPrefix parses a string and validates that its prefix
// matches the expected value.
func ParseInstanceIDWithPrefix(s string, expected Prefix) (InstanceID, error) {
	parsed, err := ParseInstanceID(s)
	if err != nil {
		return NilInstance, err
	}

	if parsed.Prefix() != expected {
		return NilInstance, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParseInstanceID is like ParseInstanceID but panics on error.
// Use for hardcoded values.
func MustParseInstanceID(s string) InstanceID {
	parsed, err := ParseInstanceID(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// NewContextID generates a new unique execution context ID.
func NewContextID() InstanceID { return NewInstanceID(PrefixContext) }

// NewTaskID generates a new unique task ID.
func NewTaskID() InstanceID { return NewInstanceID(PrefixTask) }

// NewWorkerID generates a new unique worker ID.
func NewWorkerID() InstanceID { return NewInstanceID(PrefixWorker) }

// String returns the full "prefix_suffix" representation.
// Returns an empty string for the nil InstanceID.
func (i InstanceID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this InstanceID.
func (i InstanceID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this InstanceID is the zero value.
func (i InstanceID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i InstanceID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *InstanceID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = NilInstance

		return nil
	}

	parsed, err := ParseInstanceID(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the nil InstanceID so optional columns store NULL.
func (i InstanceID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *InstanceID) Scan(src any) error {
	if src == nil {
		*i = NilInstance

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = NilInstance

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = NilInstance

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into InstanceID", src)
	}
}
