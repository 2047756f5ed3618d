package codec_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
)

func TestMarshalCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "null", in: nil, want: `null`},
		{name: "true", in: true, want: `true`},
		{name: "int", in: 42, want: `42`},
		{name: "negative int64", in: int64(-7), want: `-7`},
		{name: "float", in: 1.5, want: `1.5`},
		{name: "string", in: "hi", want: `"hi"`},
		{
			name: "sorted keys",
			in:   map[string]any{"b": 1, "a": 2, "c": 3},
			want: `{"a":2,"b":1,"c":3}`,
		},
		{
			name: "compact separators",
			in:   map[string]any{"k": []any{1, 2, 3}},
			want: `{"k":[1,2,3]}`,
		},
		{
			name: "non-ascii escaped",
			in:   "café",
			want: `"caf\u00e9"`,
		},
		{
			name: "astral plane escaped as surrogate pair",
			in:   "\U0001d11e",
			want: `"\ud834\udd1e"`,
		},
		{
			name: "control characters",
			in:   "a\tb\nc\x01",
			want: `"a\tb\nc\u0001"`,
		},
		{
			name: "typed slice",
			in:   []string{"x", "y"},
			want: `["x","y"]`,
		},
		{
			name: "typed map",
			in:   map[string]int{"n": 1},
			want: `{"n":1}`,
		},
		{
			name: "nested",
			in: map[string]any{
				"data":  map[string]any{"result": nil, "input": "ref"},
				"shape": []any{1},
			},
			want: `{"data":{"input":"ref","result":null},"shape":[1]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Equivalent mappings built in different insertion orders serialize
	// to byte-identical output.
	a := map[string]any{}
	a["shape"] = []any{1}
	a["type"] = []any{"scalems", "subprocess"}
	a["data"] = map[string]any{"input": "i", "result": "r"}

	b := map[string]any{}
	b["data"] = map[string]any{"result": "r", "input": "i"}
	b["type"] = []any{"scalems", "subprocess"}
	b["shape"] = []any{1}

	sa, err := codec.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal(a) error: %v", err)
	}
	sb, err := codec.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal(b) error: %v", err)
	}
	if string(sa) != string(sb) {
		t.Errorf("equivalent mappings serialized differently:\n%s\n%s", sa, sb)
	}
}

func TestMarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "nan", in: math.NaN()},
		{name: "infinity", in: math.Inf(1)},
		{name: "channel", in: make(chan int)},
		{name: "non-string map key", in: map[int]any{1: "x"}},
		{name: "nested unencodable", in: map[string]any{"f": func() {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Marshal(tt.in); !errors.Is(err, scalems.ErrEncoding) {
				t.Errorf("Marshal() error = %v, want ErrEncoding", err)
			}
		})
	}
}

func TestUnmarshalRoundTrip(t *testing.T) {
	in := map[string]any{
		"label":    nil,
		"identity": "abc123",
		"shape":    []any{1, 2},
		"data":     map[string]any{"x": "café", "ok": true},
	}

	first, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	decoded, err := codec.Unmarshal(first)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	second, err := codec.Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal(decoded) error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("round trip not canonical:\n%s\n%s", first, second)
	}

	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want map", decoded)
	}
	data, ok := m["data"].(map[string]any)
	if !ok || !reflect.DeepEqual(data["x"], "café") {
		t.Errorf("escaped string did not round trip: %v", m["data"])
	}
}

func TestUnmarshalTrailingData(t *testing.T) {
	if _, err := codec.Unmarshal([]byte(`{"a":1} {"b":2}`)); !errors.Is(err, scalems.ErrSchemaViolation) {
		t.Errorf("Unmarshal() error = %v, want ErrSchemaViolation", err)
	}
}
