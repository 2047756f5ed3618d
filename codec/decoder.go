package codec

import (
	"fmt"
	"log/slog"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
)

// SchemaSpec is the record schema specification this decoder understands.
const SchemaSpec = "scalems.v0"

// Decoder reconstructs live objects from encoded records.
//
// Records are recognized with a minimal heuristic. A mapping with a
// "schema" member is dispatched by the schema's "spec" field; an
// unrecognized spec is returned unaltered with a logged notice, never an
// error. A mapping with a "type" member is dispatched to the decoder
// registered for that type, or to the generic fallback when the type is
// unregistered. Non-mappings and unrecognized mappings pass through
// unchanged so that enclosing records can handle them.
type Decoder struct {
	registry *Registry
	fallback DecodeFunc
	logger   *slog.Logger
}

// NewDecoder creates a Decoder over a type registry. fallback handles
// well-formed typed records whose type has no registration; nil means
// such records are returned unaltered. A nil logger falls back to
// slog.Default().
func NewDecoder(registry *Registry, fallback DecodeFunc, logger *slog.Logger) *Decoder {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{registry: registry, fallback: fallback, logger: logger}
}

// Registry returns the type registry this decoder dispatches through.
func (d *Decoder) Registry() *Registry { return d.registry }

// Decode converts an encoded record to a live object. Decoding is
// bottom-up: callers decode nested members before the enclosing record.
func (d *Decoder) Decode(obj any) (any, error) {
	m, ok := obj.(map[string]any)
	if !ok {
		return obj, nil
	}

	if rawSchema, ok := m["schema"]; ok {
		return d.decodeSchema(m, rawSchema)
	}

	if rawType, ok := m["type"]; ok {
		return d.decodeTyped(m, rawType)
	}

	return m, nil
}

func (d *Decoder) decodeSchema(m map[string]any, rawSchema any) (any, error) {
	schema, ok := rawSchema.(map[string]any)
	if !ok {
		d.logger.Warn("unrecognized schema member while decoding", "schema", rawSchema)
		return m, nil
	}

	spec, _ := schema["spec"].(string)
	if spec != SchemaSpec {
		d.logger.Warn("unrecognized schema spec while decoding", "spec", spec)
		return m, nil
	}

	name, ok := schema["name"].(string)
	if !ok {
		return nil, fmt.Errorf("codec: schema record without a name: %w", scalems.ErrSchemaViolation)
	}

	return nil, fmt.Errorf("codec: dynamic type registration through %q records: %w",
		name, scalems.ErrMissingImplementation)
}

func (d *Decoder) decodeTyped(m map[string]any, rawType any) (any, error) {
	typeID, err := id.TypeIDFrom(rawType)
	if err != nil {
		d.logger.Warn("unresolvable type while decoding", "type", rawType, "error", err)
		return m, nil
	}

	if reg, err := d.registry.Lookup(typeID); err == nil {
		return reg.Decode(m)
	}

	if d.fallback != nil {
		return d.fallback(m)
	}

	d.logger.Warn("no decoder for type", "type", typeID.Name())
	return m, nil
}
