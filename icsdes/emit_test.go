package icsdes

import (
	"errors"
	"testing"
)

// ============================================================
// Encoder Tests
// ============================================================

func TestEncode_AscendingCodeOrder(t *testing.T) {
	r := NewRecord("213").
		Set(26, "Request additional resources").
		Set(3, "1145").
		Set(25, "PSC").
		Set(2, "20250423").
		Set(24, "OSC")

	got, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "213{2~20250423|3~1145|24~OSC|25~PSC|26~Request additional resources}"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	r := NewRecord("214").
		Set(6, "Jim").
		SetGroup(30, SubRecord{3: "0800", 23: "Briefing"}, SubRecord{3: "1145"})

	first, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if first != second {
		t.Errorf("non-deterministic output:\n%q\n%q", first, second)
	}
}

func TestEncode_EmptyRecord(t *testing.T) {
	got, err := Encode(NewRecord("213"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != "213{}" {
		t.Errorf("got %q, want 213{}", got)
	}
}

func TestEncode_EscapesValue(t *testing.T) {
	r := NewRecord("213").Set(26, "A|B")
	got, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != `213{26~A\/B}` {
		t.Errorf("got %q", got)
	}
}

func TestEncode_RepeatedGroup(t *testing.T) {
	r := NewRecord("214").SetGroup(30,
		SubRecord{3: "0800", 23: "Briefing"},
		SubRecord{23: "Stand-down"},
	)
	got, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "214{30~[[3~0800|23~Briefing]|[23~Stand-down]]}"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestEncode_EmptySubRecordsNormalized(t *testing.T) {
	// The grammar requires at least one sub-field per group item, so a
	// zero-field sub-record is "not provided" and must never reach the
	// wire: every encoded record stays decodable.
	r := NewRecord("214").SetGroup(30, SubRecord{}, SubRecord{3: "0800"})
	wire, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if wire != "214{30~[[3~0800]]}" {
		t.Fatalf("got %q, want %q", wire, "214{30~[[3~0800]]}")
	}
	p, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !p.Record.Equal(r) {
		t.Errorf("round-trip mismatch: %v vs %v", p.Record.Codes(), r.Codes())
	}

	// All items empty: the field is absent, like the empty scalar.
	r = NewRecord("214").SetGroup(30, SubRecord{}, SubRecord{})
	if r.Has(30) {
		t.Error("expected all-empty group to normalize to absence")
	}
	wire, err = Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if wire != "214{}" {
		t.Errorf("got %q, want 214{}", wire)
	}
}

func TestEncode_EnumSubstitution(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"token passes through", "OSC", "213{24~OSC}"},
		{"canonical value substituted", "Operations Section Chief", "213{24~OSC}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord("213").Set(24, tt.value)
			got, err := Encode(r)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_FieldSubset(t *testing.T) {
	r := NewRecord("213").
		Set(2, "20250423").
		Set(3, "1145").
		Set(26, "msg")

	got, err := EncodeWithOptions(r, EncodeOptions{Fields: []int{26, 2, 26}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != "213{2~20250423|26~msg}" {
		t.Errorf("got %q", got)
	}

	// Absent-but-valid subset codes are skipped.
	got, err = EncodeWithOptions(r, EncodeOptions{Fields: []int{2, 12}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != "213{2~20250423}" {
		t.Errorf("got %q", got)
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record func() *Record
		opts   EncodeOptions
		kind   EncodeErrorKind
	}{
		{
			"unknown form type",
			func() *Record { return NewRecord("999").Set(2, "x") },
			EncodeOptions{},
			EncodeUnknownField,
		},
		{
			"code outside schema",
			func() *Record { return NewRecord("213").Set(50, "Rockfall") },
			EncodeOptions{},
			EncodeUnknownField,
		},
		{
			"subset code outside schema",
			func() *Record { return NewRecord("213").Set(2, "x") },
			EncodeOptions{Fields: []int{2, 99}},
			EncodeUnknownField,
		},
		{
			"group value on scalar field",
			func() *Record { return NewRecord("213").SetGroup(26, SubRecord{2: "x"}) },
			EncodeOptions{},
			EncodeKindMismatch,
		},
		{
			"scalar value on group field",
			func() *Record { return NewRecord("214").Set(30, "oops") },
			EncodeOptions{},
			EncodeKindMismatch,
		},
		{
			"enum value outside table",
			func() *Record { return NewRecord("213").Set(24, "Janitor") },
			EncodeOptions{},
			EncodeKindMismatch,
		},
		{
			"sub-code outside group",
			func() *Record { return NewRecord("214").SetGroup(30, SubRecord{44: "x"}) },
			EncodeOptions{},
			EncodeUnknownField,
		},
		{
			"brace in value",
			func() *Record { return NewRecord("213").Set(26, "a{b}") },
			EncodeOptions{},
			EncodeKindMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeWithOptions(tt.record(), tt.opts)
			var ee *EncodeError
			if !errors.As(err, &ee) {
				t.Fatalf("expected EncodeError, got %v", err)
			}
			if ee.Kind != tt.kind {
				t.Errorf("kind = %s, want %s (err: %v)", ee.Kind, tt.kind, err)
			}
		})
	}
}
