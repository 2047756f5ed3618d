package workflow

import (
	"fmt"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
)

// Field declares one member of a typed data record.
type Field struct {
	// Name is the record member name.
	Name string

	// Type is the resource type of the member value.
	Type id.TypeID

	// Shape is the member's dimensionality.
	Shape Shape

	// Optional marks members that may be absent from a record.
	Optional bool
}

// Schema is a static type declaration: an ordered list of fields that
// defines a data record type, its wire-format declaration, and its
// decoder. Record types are declared explicitly rather than derived from
// runtime introspection.
type Schema struct {
	typeID id.TypeID
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema for a resource type from its field
// declarations. Duplicate or incomplete fields fail with
// ErrSchemaViolation.
func NewSchema(typeID id.TypeID, fields ...Field) (*Schema, error) {
	if typeID.IsZero() {
		return nil, fmt.Errorf("workflow: schema requires a resource type: %w", scalems.ErrSchemaViolation)
	}

	s := &Schema{
		typeID: typeID,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" || f.Type.IsZero() || len(f.Shape) == 0 {
			return nil, fmt.Errorf("workflow: incomplete field %q in %s: %w",
				f.Name, typeID.Name(), scalems.ErrSchemaViolation)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("workflow: duplicate field %q in %s: %w",
				f.Name, typeID.Name(), scalems.ErrSchemaViolation)
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// MustNewSchema is like NewSchema but panics on error. Use for static
// type declarations.
func MustNewSchema(typeID id.TypeID, fields ...Field) *Schema {
	s, err := NewSchema(typeID, fields...)
	if err != nil {
		panic(fmt.Sprintf("workflow: must new schema: %v", err))
	}
	return s
}

// Type returns the declared resource type.
func (s *Schema) Type() id.TypeID { return s.typeID }

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Validate checks a record payload against the declaration: required
// fields must be present and unknown fields are rejected.
func (s *Schema) Validate(data map[string]any) error {
	for name := range data {
		if _, ok := s.index[name]; !ok {
			return fmt.Errorf("workflow: %s has no field %q: %w", s.typeID.Name(), name, scalems.ErrSchemaViolation)
		}
	}
	for _, f := range s.fields {
		if f.Optional {
			continue
		}
		if _, ok := data[f.Name]; !ok {
			return fmt.Errorf("workflow: %s missing field %q: %w", s.typeID.Name(), f.Name, scalems.ErrSchemaViolation)
		}
	}
	return nil
}

// Declaration projects the schema into its wire-format type declaration
// for a workflow document's types section.
func (s *Schema) Declaration() map[string]any {
	fields := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		decl := map[string]any{
			"type":  f.Type.ScopedName(),
			"shape": f.Shape.Encode(),
		}
		if f.Optional {
			decl["optional"] = true
		}
		fields[f.Name] = decl
	}
	return map[string]any{
		"schema": map[string]any{
			"spec": codec.SchemaSpec,
			"name": "DataType",
		},
		"implementation": s.typeID.ScopedName(),
		"fields":         fields,
	}
}

// Registration produces the type registration for records of this
// schema: decoding validates the record payload against the declaration
// and reconstructs a generic item.
func (s *Schema) Registration() *codec.Registration {
	return &codec.Registration{
		Type: s.typeID,
		Decode: func(obj map[string]any) (any, error) {
			if data, ok := obj["data"].(map[string]any); ok {
				if err := s.Validate(data); err != nil {
					return nil, err
				}
			}
			return DecodeItem(obj)
		},
	}
}
