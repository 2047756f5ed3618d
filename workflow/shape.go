// Package workflow defines the entities of the task graph: typed, shaped,
// content-fingerprinted items, path references between them, and the
// serialized workflow document.
package workflow

import (
	"encoding/json"
	"fmt"

	scalems "github.com/eirrgang/scale-ms"
)

// Shape is the dimensionality of a workflow resource: a non-empty
// sequence of non-negative dimension sizes.
type Shape []int

// NewShape validates and constructs a Shape. Empty sequences and negative
// dimensions fail with ErrSchemaViolation.
func NewShape(dims ...int) (Shape, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("workflow: shape requires at least one dimension: %w", scalems.ErrSchemaViolation)
	}
	for _, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("workflow: negative dimension %d: %w", d, scalems.ErrSchemaViolation)
		}
	}
	out := make(Shape, len(dims))
	copy(out, dims)
	return out, nil
}

// ShapeFrom coerces a decoded sequence into a Shape. Elements may be int
// or json.Number; anything else fails with ErrInvalidRepresentation.
func ShapeFrom(v any) (Shape, error) {
	seq, ok := v.([]any)
	if !ok {
		if s, ok := v.(Shape); ok {
			return NewShape(s...)
		}
		return nil, fmt.Errorf("workflow: shape from %T: %w", v, scalems.ErrInvalidRepresentation)
	}

	dims := make([]int, len(seq))
	for i, e := range seq {
		switch n := e.(type) {
		case int:
			dims[i] = n
		case json.Number:
			v64, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("workflow: shape element %v: %w", n, scalems.ErrInvalidRepresentation)
			}
			dims[i] = int(v64)
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("workflow: shape element %v is not an integer: %w", n, scalems.ErrInvalidRepresentation)
			}
			dims[i] = int(n)
		default:
			return nil, fmt.Errorf("workflow: shape element %T: %w", e, scalems.ErrInvalidRepresentation)
		}
	}
	return NewShape(dims...)
}

// Size returns the total element count described by the shape.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Encode projects the shape into the base-encodable value space.
func (s Shape) Encode() []any {
	out := make([]any, len(s))
	for i, d := range s {
		out[i] = d
	}
	return out
}

// Equal reports element-wise shape equality.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
