package id_test

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"github.com/eirrgang/scale-ms/id"
)

func TestNewResourceID(t *testing.T) {
	tests := []struct {
		name    string
		digest  []byte
		wantErr error
	}{
		{
			name:   "full digest",
			digest: bytes.Repeat([]byte{0xab}, 32),
		},
		{
			name:    "one byte short",
			digest:  bytes.Repeat([]byte{0xab}, 31),
			wantErr: id.ErrSchemaViolation,
		},
		{
			name:    "one byte long",
			digest:  bytes.Repeat([]byte{0xab}, 33),
			wantErr: id.ErrSchemaViolation,
		},
		{
			name:    "empty",
			digest:  nil,
			wantErr: id.ErrSchemaViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := id.NewResourceID(tt.digest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewResourceID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewResourceID() unexpected error: %v", err)
			}
			if !bytes.Equal(r.Bytes(), tt.digest) {
				t.Errorf("Bytes() = %x, want %x", r.Bytes(), tt.digest)
			}
		})
	}
}

func TestResourceIDRoundTrip(t *testing.T) {
	digest := sha256.Sum256([]byte("hello"))

	r, err := id.NewResourceID(digest[:])
	if err != nil {
		t.Fatalf("NewResourceID() error: %v", err)
	}

	s := r.String()
	if len(s) != 64 {
		t.Fatalf("String() length = %d, want 64", len(s))
	}
	if s != strings.ToLower(s) {
		t.Errorf("String() = %q, want lowercase", s)
	}

	parsed, err := id.ParseResourceID(s)
	if err != nil {
		t.Fatalf("ParseResourceID(%q) error: %v", s, err)
	}
	if !id.Equal(r, parsed) {
		t.Errorf("round trip mismatch: %v != %v", r, parsed)
	}
}

func TestResourceIDFrom(t *testing.T) {
	digest := sha256.Sum256([]byte("content"))
	want, _ := id.NewResourceID(digest[:])

	tests := []struct {
		name    string
		in      any
		wantErr error
	}{
		{name: "value", in: want},
		{name: "pointer", in: &want},
		{name: "hex string", in: want.String()},
		{name: "raw bytes", in: digest[:]},
		{name: "int", in: 42, wantErr: id.ErrInvalidRepresentation},
		{name: "bad hex", in: "zz", wantErr: id.ErrInvalidRepresentation},
		{name: "short bytes", in: []byte{1, 2, 3}, wantErr: id.ErrSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.ResourceIDFrom(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResourceIDFrom() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResourceIDFrom() unexpected error: %v", err)
			}
			if !id.Equal(got, want) {
				t.Errorf("ResourceIDFrom() = %v, want %v", got, want)
			}
		})
	}
}

func TestEphemeralIDUnique(t *testing.T) {
	a := id.NewEphemeralID()
	b := id.NewEphemeralID()

	if id.Equal(a, b) {
		t.Error("two generated ephemeral identifiers compare equal")
	}
	if len(a.Bytes()) != id.EphemeralIDSize {
		t.Errorf("Bytes() length = %d, want %d", len(a.Bytes()), id.EphemeralIDSize)
	}

	parsed, err := id.ParseEphemeralID(a.String())
	if err != nil {
		t.Fatalf("ParseEphemeralID(%q) error: %v", a.String(), err)
	}
	if !id.Equal(a, parsed) {
		t.Errorf("round trip mismatch: %v != %v", a, parsed)
	}
}

func TestEphemeralIDStringHasNoHyphens(t *testing.T) {
	e := id.NewEphemeralID()
	if strings.Contains(e.String(), "-") {
		t.Errorf("String() = %q, want plain hex without hyphens", e.String())
	}
	if len(e.String()) != 32 {
		t.Errorf("String() length = %d, want 32", len(e.String()))
	}
}

func TestNewTypeID(t *testing.T) {
	tests := []struct {
		name    string
		parts   []string
		wantErr error
	}{
		{name: "scoped name", parts: []string{"scalems", "subprocess", "Subprocess"}},
		{name: "single part", parts: []string{"scalems"}},
		{name: "empty sequence", parts: nil, wantErr: id.ErrInvalidRepresentation},
		{name: "empty part", parts: []string{"scalems", ""}, wantErr: id.ErrInvalidRepresentation},
		{name: "embedded period", parts: []string{"scalems.subprocess"}, wantErr: id.ErrInvalidRepresentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.NewTypeID(tt.parts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTypeID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTypeID() unexpected error: %v", err)
			}
			if got.Name() != strings.Join(tt.parts, ".") {
				t.Errorf("Name() = %q, want %q", got.Name(), strings.Join(tt.parts, "."))
			}
			if len(got.Bytes()) != 16 {
				t.Errorf("Bytes() length = %d, want 16", len(got.Bytes()))
			}
		})
	}
}

func TestTypeIDDeterministic(t *testing.T) {
	a := id.MustNewTypeID("scalems", "subprocess", "Subprocess")
	b := id.MustNewTypeID("scalems", "subprocess", "Subprocess")
	c := id.MustNewTypeID("scalems", "subprocess", "SubprocessInput")

	if !id.Equal(a, b) {
		t.Error("identical name sequences derived different identifiers")
	}
	if id.Equal(a, c) {
		t.Error("distinct name sequences derived equal identifiers")
	}
}

func TestTypeIDFrom(t *testing.T) {
	want := id.MustNewTypeID("scalems", "subprocess")

	tests := []struct {
		name    string
		in      any
		wantErr error
	}{
		{name: "value", in: want},
		{name: "pointer", in: &want},
		{name: "dotted string", in: "scalems.subprocess"},
		{name: "string slice", in: []string{"scalems", "subprocess"}},
		{name: "any slice", in: []any{"scalems", "subprocess"}},
		{name: "bare string", in: "scalems", wantErr: id.ErrInvalidRepresentation},
		{name: "non-string element", in: []any{"scalems", 1}, wantErr: id.ErrInvalidRepresentation},
		{name: "int", in: 42, wantErr: id.ErrInvalidRepresentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.TypeIDFrom(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("TypeIDFrom() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TypeIDFrom() unexpected error: %v", err)
			}
			if !id.Equal(got, want) {
				t.Errorf("TypeIDFrom() = %v, want %v", got, want)
			}
		})
	}
}

func TestEqualIsKindAware(t *testing.T) {
	typ := id.MustNewTypeID("scalems", "subprocess")

	eph, err := id.ParseEphemeralID(typ.String())
	if err != nil {
		t.Fatalf("ParseEphemeralID error: %v", err)
	}

	if !bytes.Equal(typ.Bytes(), eph.Bytes()) {
		t.Fatal("fixture error: expected identical bytes across kinds")
	}
	if id.Equal(typ, eph) {
		t.Error("identifiers of different kinds compare equal")
	}
}

func TestInstanceID(t *testing.T) {
	taskID := id.NewTaskID()
	if taskID.IsNil() {
		t.Fatal("NewTaskID() returned nil identifier")
	}
	if taskID.Prefix() != id.PrefixTask {
		t.Errorf("Prefix() = %q, want %q", taskID.Prefix(), id.PrefixTask)
	}

	parsed, err := id.ParseInstanceID(taskID.String())
	if err != nil {
		t.Fatalf("ParseInstanceID(%q) error: %v", taskID.String(), err)
	}
	if parsed.String() != taskID.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed.String(), taskID.String())
	}

	if _, err := id.ParseInstanceIDWithPrefix(taskID.String(), id.PrefixContext); err == nil {
		t.Error("ParseInstanceIDWithPrefix() accepted mismatched prefix")
	}

	if _, err := id.ParseInstanceID(""); err == nil {
		t.Error("ParseInstanceID(\"\") succeeded, want error")
	}
}

func TestInstanceIDDatabaseRoundTrip(t *testing.T) {
	taskID := id.NewTaskID()

	v, err := taskID.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	s, ok := v.(string)
	if !ok || s != taskID.String() {
		t.Fatalf("Value() = %v, want %q", v, taskID.String())
	}

	var scanned id.InstanceID
	if err := scanned.Scan(s); err != nil {
		t.Fatalf("Scan(string) error: %v", err)
	}
	if scanned.String() != taskID.String() {
		t.Errorf("Scan(string) = %q, want %q", scanned.String(), taskID.String())
	}

	var fromBytes id.InstanceID
	if err := fromBytes.Scan([]byte(s)); err != nil {
		t.Fatalf("Scan([]byte) error: %v", err)
	}
	if fromBytes.String() != taskID.String() {
		t.Errorf("Scan([]byte) = %q, want %q", fromBytes.String(), taskID.String())
	}

	// A nil identifier stores NULL and scans back to nil.
	if v, err := id.NilInstance.Value(); err != nil || v != nil {
		t.Errorf("NilInstance.Value() = (%v, %v), want (nil, nil)", v, err)
	}
	var fromNull id.InstanceID
	if err := fromNull.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if !fromNull.IsNil() {
		t.Error("Scan(nil) produced a non-nil identifier")
	}

	var wrong id.InstanceID
	if err := wrong.Scan(42); err == nil {
		t.Error("Scan(int) succeeded, want error")
	}
}
