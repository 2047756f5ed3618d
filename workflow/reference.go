package workflow

import (
	"fmt"
	"strconv"
	"strings"

	scalems "github.com/eirrgang/scale-ms"
)

// Key addresses a sub-element of a referenced node: a named field, a
// sequence index, or a slice.
type Key interface {
	appendTo(b *strings.Builder)
}

// FieldKey addresses a named member, rendered as ["name"]. The name must
// not contain '.', '"', '[', or ']': those characters are structural in
// the rendered path form and a key carrying them cannot round-trip
// through ParseReference.
type FieldKey string

// NewFieldKey validates name against the reference grammar.
func NewFieldKey(name string) (FieldKey, error) {
	if strings.ContainsAny(name, fieldKeyReserved) {
		return "", fmt.Errorf("workflow: field key %q contains reserved characters: %w",
			name, scalems.ErrInvalidRepresentation)
	}
	return FieldKey(name), nil
}

const fieldKeyReserved = `."[]`

func (k FieldKey) appendTo(b *strings.Builder) {
	b.WriteByte('"')
	b.WriteString(string(k))
	b.WriteByte('"')
}

// IndexKey addresses a sequence element, rendered as [3].
type IndexKey int

func (k IndexKey) appendTo(b *strings.Builder) {
	b.WriteString(strconv.Itoa(int(k)))
}

// SliceKey addresses a contiguous strided range, rendered as
// [start:stop] or [start:stop:step]. Nil bounds render empty, as in [:5].
type SliceKey struct {
	Start, Stop, Step *int
}

// Span is a SliceKey over [start, stop).
func Span(start, stop int) SliceKey {
	return SliceKey{Start: &start, Stop: &stop}
}

// SpanStep is a SliceKey over [start, stop) with a stride.
func SpanStep(start, stop, step int) SliceKey {
	return SliceKey{Start: &start, Stop: &stop, Step: &step}
}

func (k SliceKey) appendTo(b *strings.Builder) {
	appendBound(b, k.Start)
	b.WriteByte(':')
	appendBound(b, k.Stop)
	if k.Step != nil {
		b.WriteByte(':')
		appendBound(b, k.Step)
	}
}

func appendBound(b *strings.Builder, n *int) {
	if n != nil {
		b.WriteString(strconv.Itoa(*n))
	}
}

// Element is one step in a reference path: an identifier with an optional
// key into the identified node.
type Element struct {
	Identifier string
	Key        Key
}

func (e Element) appendTo(b *strings.Builder) {
	b.WriteString(e.Identifier)
	if e.Key != nil {
		b.WriteByte('[')
		e.Key.appendTo(b)
		b.WriteByte(']')
	}
}

// Reference is a path expression addressing a workflow node or a
// keyed/sliced sub-element of one. The string form round-trips:
// ParseReference(r.String()) reproduces r for every valid path.
type Reference struct {
	elements []Element
}

// NewReference builds a reference from path elements.
func NewReference(elements ...Element) Reference {
	out := make([]Element, len(elements))
	copy(out, elements)
	return Reference{elements: out}
}

// Identity is a single-element reference to a whole node.
func Identity(identifier string) Reference {
	return NewReference(Element{Identifier: identifier})
}

// Elements returns a copy of the path.
func (r Reference) Elements() []Element {
	out := make([]Element, len(r.elements))
	copy(out, r.elements)
	return out
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool { return len(r.elements) == 0 }

// String renders the period-delimited path form, e.g.
// `1a2b3c["stdout"].files[0:2]`.
func (r Reference) String() string {
	var b strings.Builder
	for i, e := range r.elements {
		if i > 0 {
			b.WriteByte('.')
		}
		e.appendTo(&b)
	}
	return b.String()
}

// ParseReference parses the period-delimited path form. Malformed input
// fails with ErrInvalidRepresentation.
func ParseReference(s string) (Reference, error) {
	if s == "" {
		return Reference{}, fmt.Errorf("workflow: empty reference: %w", scalems.ErrInvalidRepresentation)
	}

	parts := strings.Split(s, ".")
	elements := make([]Element, 0, len(parts))
	for _, part := range parts {
		e, err := parseElement(part)
		if err != nil {
			return Reference{}, err
		}
		elements = append(elements, e)
	}
	return Reference{elements: elements}, nil
}

func parseElement(s string) (Element, error) {
	opening := strings.IndexByte(s, '[')
	if opening == -1 {
		if s == "" {
			return Element{}, fmt.Errorf("workflow: empty reference element: %w", scalems.ErrInvalidRepresentation)
		}
		return Element{Identifier: s}, nil
	}
	if opening == 0 || !strings.HasSuffix(s, "]") {
		return Element{}, fmt.Errorf("workflow: malformed reference element %q: %w", s, scalems.ErrInvalidRepresentation)
	}

	key, err := parseKey(s[opening+1 : len(s)-1])
	if err != nil {
		return Element{}, fmt.Errorf("workflow: reference element %q: %w", s, err)
	}
	return Element{Identifier: s[:opening], Key: key}, nil
}

func parseKey(s string) (Key, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return NewFieldKey(s[1 : len(s)-1])
	}
	if n, err := strconv.Atoi(s); err == nil {
		return IndexKey(n), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("bad key %q: %w", s, scalems.ErrInvalidRepresentation)
	}
	var k SliceKey
	bounds := []**int{&k.Start, &k.Stop, &k.Step}
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad slice bound %q: %w", part, scalems.ErrInvalidRepresentation)
		}
		*bounds[i] = &n
	}
	return k, nil
}
