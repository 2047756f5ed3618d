// Package codec converts workflow objects to and from a restricted
// base-encodable value space (mappings, sequences, strings, numbers,
// booleans, null) and serializes that value space canonically.
//
// The canonical form is the input to content fingerprinting, so it is
// fully deterministic: UTF-8 text with all non-ASCII characters escaped,
// object keys sorted lexicographically, and no whitespace between tokens.
// Any deviation changes every computed identity.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf16"

	scalems "github.com/eirrgang/scale-ms"
)

// Marshal serializes a base-encodable value to its canonical form.
// Values outside the base-encodable space fail with ErrEncoding.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses canonical (or any valid JSON) text into the
// base-encodable value space. Numbers are preserved as json.Number so
// that re-serialization does not lose integer/float distinctions.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: parse: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("codec: trailing data after value: %w", scalems.ErrSchemaViolation)
	}
	return v, nil
}

func appendValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if x {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		appendString(buf, x)
	case json.Number:
		buf.WriteString(x.String())
	case int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(x, 10))
	case float32:
		return appendFloat(buf, float64(x))
	case float64:
		return appendFloat(buf, x)
	case map[string]any:
		return appendMap(buf, x)
	case []any:
		return appendSequence(buf, x)
	default:
		return appendReflected(buf, v)
	}
	return nil
}

// appendReflected handles concrete slice and map types ([]string,
// map[string]int, ...) that carry base-encodable elements.
func appendReflected(buf *bytes.Buffer, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("codec: map key type %s is not a string: %w", rv.Type().Key(), scalems.ErrEncoding)
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return appendMap(buf, m)
	default:
		return fmt.Errorf("codec: %T is not base encodable: %w", v, scalems.ErrEncoding)
	}
}

func appendFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("codec: non-finite number %v: %w", f, scalems.ErrEncoding)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func appendMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		appendString(buf, k)
		buf.WriteByte(':')
		if err := appendValue(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func appendSequence(buf *bytes.Buffer, s []any) error {
	buf.WriteByte('[')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendValue(buf, e); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

const hexDigits = "0123456789abcdef"

// appendString writes a JSON string with every non-ASCII character
// escaped as \uXXXX (surrogate pairs above the basic plane).
func appendString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			appendEscape(buf, uint16(r))
		case r < 0x80:
			buf.WriteByte(byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			appendEscape(buf, uint16(hi))
			appendEscape(buf, uint16(lo))
		default:
			appendEscape(buf, uint16(r))
		}
	}
	buf.WriteByte('"')
}

func appendEscape(buf *bytes.Buffer, u uint16) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[u>>12&0xf])
	buf.WriteByte(hexDigits[u>>8&0xf])
	buf.WriteByte(hexDigits[u>>4&0xf])
	buf.WriteByte(hexDigits[u&0xf])
}
