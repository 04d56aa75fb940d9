package icsdes

import (
	"errors"
	"testing"
)

// ============================================================
// Golden Scenarios
// ============================================================
//
// End-to-end fixtures pinned to exact wire bytes: deterministic output
// makes these stable across runs and implementations.

func TestGolden_GeneralMessage(t *testing.T) {
	r := NewRecord("213").
		Set(2, "20250423").
		Set(3, "1145").
		Set(24, "OSC").
		Set(25, "PSC").
		Set(26, "Request additional resources")

	wire, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "213{2~20250423|3~1145|24~OSC|25~PSC|26~Request additional resources}"
	if wire != want {
		t.Fatalf("got  %q\nwant %q", wire, want)
	}

	p, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !p.Record.Equal(r) {
		t.Errorf("round-trip mismatch: %v vs %v", p.Record.Codes(), r.Codes())
	}
}

func TestGolden_ReencodeIdentical(t *testing.T) {
	const wire = "213{24~OSC|25~PSC}"
	p, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, err := Encode(p.Record)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != wire {
		t.Errorf("re-encode = %q, want %q", got, wire)
	}
}

func TestGolden_PipeEscaping(t *testing.T) {
	r := NewRecord("213").Set(26, "A|B")
	wire, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if wire != `213{26~A\/B}` {
		t.Fatalf("got %q", wire)
	}
	p, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got, _ := p.Record.Scalar(26); got != "A|B" {
		t.Errorf("recovered %q, want %q", got, "A|B")
	}
}

func TestGolden_DifferentialPipeline(t *testing.T) {
	base := NewRecord("214").Set(6, "Jim")
	target := NewRecord("214").Set(6, "James")

	d, err := Diff(base, target)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 change, got %d", d.Len())
	}
	if v, ok := d.Value(6); !ok {
		t.Fatal("expected change on code 6")
	} else if s, _ := v.Scalar(); s != "James" {
		t.Errorf("change value = %q", s)
	}

	wire, err := EncodeDiff(d)
	if err != nil {
		t.Fatalf("EncodeDiff failed: %v", err)
	}
	if wire != "214D{6~James}" {
		t.Fatalf("got %q, want 214D{6~James}", wire)
	}

	merged, err := DecodeAndMerge(base, wire)
	if err != nil {
		t.Fatalf("DecodeAndMerge failed: %v", err)
	}
	if !merged.Equal(target) {
		t.Errorf("merge result differs from target")
	}
}

func TestGolden_ForeignCodeRejected(t *testing.T) {
	_, err := Decode("213{99~X}")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Kind != DecodeSchemaMismatch || de.Code != 99 {
		t.Errorf("got %s (code %d), want schema mismatch on 99", de.Kind, de.Code)
	}
}

func TestGolden_TruncatedPayloadRejected(t *testing.T) {
	p, err := Decode("213{24~OSC|25")
	if p != nil {
		t.Fatal("partial record returned")
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != DecodeMalformedGrammar {
		t.Fatalf("expected malformed grammar, got %v", err)
	}
}
