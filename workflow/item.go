package workflow

import (
	"fmt"
	"sync"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
)

// Item is a node in the task graph: a typed, shaped resource with a
// type-specific payload. Items begin life with an ephemeral identity;
// Seal computes the content-addressed identity, after which the item's
// identifying fields are immutable.
type Item struct {
	mu       sync.Mutex
	identity id.Identifier
	label    string
	hasLabel bool
	dtype    id.TypeID
	shape    Shape
	data     any
}

// NewItem constructs an unbound item with a fresh ephemeral identity.
// data must be base-encodable or encodable through the encoder the item
// is later sealed with.
func NewItem(dtype id.TypeID, shape Shape, data any) (*Item, error) {
	if dtype.IsZero() {
		return nil, fmt.Errorf("workflow: item requires a resource type: %w", scalems.ErrSchemaViolation)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("workflow: item requires a shape: %w", scalems.ErrSchemaViolation)
	}
	return &Item{
		identity: id.NewEphemeralID(),
		dtype:    dtype,
		shape:    shape,
		data:     data,
	}, nil
}

// Identity returns the item's current identity: ephemeral before Seal,
// content-addressed after.
func (it *Item) Identity() id.Identifier {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.identity
}

// Type returns the item's resource type.
func (it *Item) Type() id.TypeID { return it.dtype }

// Shape returns the item's shape.
func (it *Item) Shape() Shape { return it.shape }

// Data returns the type-specific payload.
func (it *Item) Data() any { return it.data }

// Label returns the user-facing label and whether one has been assigned.
func (it *Item) Label() (string, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.label, it.hasLabel
}

// SetLabel assigns the user-facing label. A label is assignable at most
// once; reassignment fails with ErrSchemaViolation.
func (it *Item) SetLabel(label string) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.hasLabel {
		return fmt.Errorf("workflow: label already assigned: %w", scalems.ErrSchemaViolation)
	}
	it.label = label
	it.hasLabel = true
	return nil
}

// Sealed reports whether the item carries a content-addressed identity.
func (it *Item) Sealed() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	_, ok := it.identity.(id.ResourceID)
	return ok
}

// Seal computes the item's content-addressed identity from its canonical
// encoding and installs it. Sealing is idempotent: the fingerprint is
// deterministic, so repeated calls observe the same identity.
func (it *Item) Seal(enc *codec.Encoder) (id.ResourceID, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if rid, ok := it.identity.(id.ResourceID); ok {
		return rid, nil
	}

	encoded, err := it.encodeLocked(enc)
	if err != nil {
		return id.ResourceID{}, err
	}
	rid, err := Fingerprint(encoded)
	if err != nil {
		return id.ResourceID{}, err
	}
	it.identity = rid
	return rid, nil
}

// Encode projects the item onto its wire-format record: a mapping with
// exactly the keys label, identity, type, shape, and data.
func (it *Item) Encode(enc *codec.Encoder) (map[string]any, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.encodeLocked(enc)
}

func (it *Item) encodeLocked(enc *codec.Encoder) (map[string]any, error) {
	data, err := enc.Encode(it.data)
	if err != nil {
		return nil, fmt.Errorf("workflow: encode %s data: %w", it.dtype.Name(), err)
	}

	var label any
	if it.hasLabel {
		label = it.label
	}

	return map[string]any{
		"label":    label,
		"identity": it.identity.String(),
		"type":     it.dtype.ScopedName(),
		"shape":    it.shape.Encode(),
		"data":     data,
	}, nil
}

// DecodeItem reconstructs a generic item from an encoded record. It is
// the fallback for typed records with no registered decoder. The decoded
// item keeps the record's identity verbatim: a content-addressed identity
// survives the round trip.
func DecodeItem(obj map[string]any) (any, error) {
	dtype, err := id.TypeIDFrom(obj["type"])
	if err != nil {
		return nil, fmt.Errorf("workflow: decode item type: %w", err)
	}
	shape, err := ShapeFrom(obj["shape"])
	if err != nil {
		return nil, fmt.Errorf("workflow: decode %s shape: %w", dtype.Name(), err)
	}

	it := &Item{dtype: dtype, shape: shape, data: obj["data"]}

	switch identity := obj["identity"].(type) {
	case string:
		it.identity, err = parseIdentity(identity)
		if err != nil {
			return nil, fmt.Errorf("workflow: decode %s identity: %w", dtype.Name(), err)
		}
	case nil:
		it.identity = id.NewEphemeralID()
	default:
		return nil, fmt.Errorf("workflow: decode %s identity from %T: %w",
			dtype.Name(), identity, scalems.ErrInvalidRepresentation)
	}

	if label, ok := obj["label"].(string); ok {
		it.label = label
		it.hasLabel = true
	}
	return it, nil
}

// parseIdentity distinguishes identifier kinds by their fixed hex widths.
func parseIdentity(s string) (id.Identifier, error) {
	switch len(s) {
	case 2 * id.ResourceIDSize:
		return id.ParseResourceID(s)
	case 2 * id.EphemeralIDSize:
		return id.ParseEphemeralID(s)
	default:
		return nil, fmt.Errorf("workflow: identity %q has no recognized width: %w", s, scalems.ErrInvalidRepresentation)
	}
}
