package workflow_test

import (
	"errors"
	"testing"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/workflow"
)

func testSchema(t *testing.T) *workflow.Schema {
	t.Helper()
	fieldType := id.MustNewTypeID("scalems", "String")
	return workflow.MustNewSchema(
		id.MustNewTypeID("scalems", "test", "Record"),
		workflow.Field{Name: "input", Type: fieldType, Shape: workflow.Shape{1}},
		workflow.Field{Name: "note", Type: fieldType, Shape: workflow.Shape{1}, Optional: true},
	)
}

func TestSchemaValidate(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{name: "complete", data: map[string]any{"input": "x", "note": "y"}},
		{name: "optional omitted", data: map[string]any{"input": "x"}},
		{name: "missing required", data: map[string]any{"note": "y"}, wantErr: true},
		{name: "unknown field", data: map[string]any{"input": "x", "extra": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.data)
			if tt.wantErr {
				if !errors.Is(err, scalems.ErrSchemaViolation) {
					t.Errorf("Validate() error = %v, want ErrSchemaViolation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestNewSchemaRejects(t *testing.T) {
	fieldType := id.MustNewTypeID("scalems", "String")
	recType := id.MustNewTypeID("scalems", "test", "Record")

	tests := []struct {
		name   string
		fields []workflow.Field
	}{
		{
			name: "duplicate field",
			fields: []workflow.Field{
				{Name: "a", Type: fieldType, Shape: workflow.Shape{1}},
				{Name: "a", Type: fieldType, Shape: workflow.Shape{1}},
			},
		},
		{
			name:   "unnamed field",
			fields: []workflow.Field{{Type: fieldType, Shape: workflow.Shape{1}}},
		},
		{
			name:   "shapeless field",
			fields: []workflow.Field{{Name: "a", Type: fieldType}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := workflow.NewSchema(recType, tt.fields...); !errors.Is(err, scalems.ErrSchemaViolation) {
				t.Errorf("NewSchema() error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}

func TestSchemaRegistrationDecodes(t *testing.T) {
	s := testSchema(t)
	reg := s.Registration()

	record := map[string]any{
		"label":    nil,
		"identity": id.NewEphemeralID().String(),
		"type":     s.Type().ScopedName(),
		"shape":    []any{1},
		"data":     map[string]any{"input": "x"},
	}
	decoded, err := reg.Decode(record)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if _, ok := decoded.(*workflow.Item); !ok {
		t.Errorf("Decode() = %T, want *workflow.Item", decoded)
	}

	record["data"] = map[string]any{"bogus": 1}
	if _, err := reg.Decode(record); !errors.Is(err, scalems.ErrSchemaViolation) {
		t.Errorf("Decode(invalid payload) error = %v, want ErrSchemaViolation", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	enc := codec.NewEncoder()
	doc := workflow.NewDocument()

	if err := doc.DeclareType(testSchema(t)); err != nil {
		t.Fatalf("DeclareType() error: %v", err)
	}
	if err := doc.DeclareType(testSchema(t)); !errors.Is(err, scalems.ErrAlreadyRegistered) {
		t.Errorf("DeclareType(duplicate) error = %v, want ErrAlreadyRegistered", err)
	}

	it := newTestItem(t, map[string]any{"value": 1})
	if _, err := it.Seal(enc); err != nil {
		t.Fatal(err)
	}
	encoded, err := it.Encode(enc)
	if err != nil {
		t.Fatal(err)
	}

	if err := doc.AddItem(encoded); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}
	if err := doc.AddItem(encoded); !errors.Is(err, scalems.ErrItemExists) {
		t.Errorf("AddItem(duplicate) error = %v, want ErrItemExists", err)
	}

	first, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	parsed, err := workflow.ParseDocument(first)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	second, err := parsed.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal() error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("document round trip is not byte-identical:\n%s\n%s", first, second)
	}
	if len(parsed.Items()) != 1 {
		t.Errorf("parsed document has %d items, want 1", len(parsed.Items()))
	}
}

func TestDocumentRejectsMalformedItems(t *testing.T) {
	doc := workflow.NewDocument()

	tests := []struct {
		name string
		item map[string]any
	}{
		{
			name: "missing member",
			item: map[string]any{
				"label": nil, "identity": "ab", "type": []any{"a", "b"}, "shape": []any{1},
			},
		},
		{
			name: "extra member",
			item: map[string]any{
				"label": nil, "identity": "ab", "type": []any{"a", "b"},
				"shape": []any{1}, "data": nil, "extra": 1,
			},
		},
		{
			name: "no identity",
			item: map[string]any{
				"label": nil, "identity": nil, "type": []any{"a", "b"},
				"shape": []any{1}, "data": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := doc.AddItem(tt.item); !errors.Is(err, scalems.ErrSchemaViolation) {
				t.Errorf("AddItem() error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}
