package workflow

import (
	"fmt"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
)

// DocumentVersion identifies the workflow document format.
const DocumentVersion = "scalems.v0"

// encodedItemKeys is the exact member set of a wire-format item record.
var encodedItemKeys = map[string]bool{
	"label":    true,
	"identity": true,
	"type":     true,
	"shape":    true,
	"data":     true,
}

// Document is the serialized projection of a workflow: a version marker,
// the type declarations the items depend on, and an ordered sequence of
// encoded items.
type Document struct {
	types map[string]map[string]any
	names []string
	items []map[string]any
	seen  map[string]bool
}

// NewDocument creates an empty workflow document.
func NewDocument() *Document {
	return &Document{
		types: make(map[string]map[string]any),
		seen:  make(map[string]bool),
	}
}

// DeclareType records a schema declaration in the document. Declaring
// the same type twice fails with ErrAlreadyRegistered.
func (d *Document) DeclareType(s *Schema) error {
	name := s.Type().Name()
	if _, ok := d.types[name]; ok {
		return fmt.Errorf("workflow: document type %s: %w", name, scalems.ErrAlreadyRegistered)
	}
	d.types[name] = s.Declaration()
	d.names = append(d.names, name)
	return nil
}

// AddItem appends an encoded item. The record must carry exactly the
// members label, identity, type, shape, and data; items are keyed by
// identity, and a duplicate fails with ErrItemExists.
func (d *Document) AddItem(encoded map[string]any) error {
	if len(encoded) != len(encodedItemKeys) {
		return fmt.Errorf("workflow: encoded item has %d members, want %d: %w",
			len(encoded), len(encodedItemKeys), scalems.ErrSchemaViolation)
	}
	for k := range encoded {
		if !encodedItemKeys[k] {
			return fmt.Errorf("workflow: encoded item member %q: %w", k, scalems.ErrSchemaViolation)
		}
	}

	identity, ok := encoded["identity"].(string)
	if !ok || identity == "" {
		return fmt.Errorf("workflow: encoded item without identity: %w", scalems.ErrSchemaViolation)
	}
	if d.seen[identity] {
		return fmt.Errorf("workflow: item %s: %w", identity, scalems.ErrItemExists)
	}

	d.items = append(d.items, encoded)
	d.seen[identity] = true
	return nil
}

// Items returns the encoded items in insertion order.
func (d *Document) Items() []map[string]any {
	out := make([]map[string]any, len(d.items))
	copy(out, d.items)
	return out
}

// Encode projects the document into the base-encodable value space.
func (d *Document) Encode() map[string]any {
	types := make(map[string]any, len(d.types))
	for name, decl := range d.types {
		types[name] = decl
	}
	items := make([]any, len(d.items))
	for i, it := range d.items {
		items[i] = it
	}
	return map[string]any{
		"version": DocumentVersion,
		"types":   types,
		"items":   items,
	}
}

// Marshal serializes the document canonically.
func (d *Document) Marshal() ([]byte, error) {
	return codec.Marshal(d.Encode())
}

// ParseDocument reconstructs a Document from its serialized form.
func ParseDocument(data []byte) (*Document, error) {
	v, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("workflow: document is not a mapping: %w", scalems.ErrSchemaViolation)
	}
	if version, _ := m["version"].(string); version != DocumentVersion {
		return nil, fmt.Errorf("workflow: document version %q: %w", m["version"], scalems.ErrSchemaViolation)
	}

	d := NewDocument()

	if rawTypes, ok := m["types"]; ok {
		types, ok := rawTypes.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("workflow: document types section: %w", scalems.ErrSchemaViolation)
		}
		for name, rawDecl := range types {
			decl, ok := rawDecl.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("workflow: type declaration %s: %w", name, scalems.ErrSchemaViolation)
			}
			d.types[name] = decl
			d.names = append(d.names, name)
		}
	}

	rawItems, ok := m["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("workflow: document items section: %w", scalems.ErrSchemaViolation)
	}
	for _, rawItem := range rawItems {
		item, ok := rawItem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("workflow: document item is not a mapping: %w", scalems.ErrSchemaViolation)
		}
		if err := d.AddItem(item); err != nil {
			return nil, err
		}
	}
	return d, nil
}
