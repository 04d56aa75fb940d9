package icsdes

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// ============================================================
// Binary Bridge
// ============================================================
//
// The wire text is what crosses the radio link; store-and-forward
// gateways that relay payloads over non-text links carry them in a
// compact CBOR envelope instead. The envelope preserves the decoded
// payload exactly (form type, differential flag, fields, removals), so
// text → binary → text is lossless.

type binaryEnvelope struct {
	Form    string                   `cbor:"1,keyasint"`
	Diff    bool                     `cbor:"2,keyasint,omitempty"`
	Scalars map[int]string           `cbor:"3,keyasint,omitempty"`
	Groups  map[int][]map[int]string `cbor:"4,keyasint,omitempty"`
	Removed []int                    `cbor:"5,keyasint,omitempty"`
}

var (
	cborOnce sync.Once
	cborEnc  cbor.EncMode
	cborDec  cbor.DecMode
)

func cborModes() (cbor.EncMode, cbor.DecMode) {
	cborOnce.Do(func() {
		var err error
		cborEnc, err = cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			panic(err)
		}
		cborDec, err = cbor.DecOptions{}.DecMode()
		if err != nil {
			panic(err)
		}
	})
	return cborEnc, cborDec
}

// MarshalBinary encodes a decoded payload as a deterministic CBOR
// envelope.
func MarshalBinary(p *Payload) ([]byte, error) {
	env := binaryEnvelope{
		Form:    p.FormType,
		Diff:    p.Differential,
		Removed: p.Removed,
	}
	for _, code := range p.Record.Codes() {
		v, _ := p.Record.Get(code)
		if group, ok := v.Group(); ok {
			if env.Groups == nil {
				env.Groups = make(map[int][]map[int]string)
			}
			items := make([]map[int]string, len(group))
			for i, item := range group {
				items[i] = map[int]string(item.Clone())
			}
			env.Groups[code] = items
		} else {
			if env.Scalars == nil {
				env.Scalars = make(map[int]string)
			}
			s, _ := v.Scalar()
			env.Scalars[code] = s
		}
	}
	enc, _ := cborModes()
	return enc.Marshal(env)
}

// UnmarshalBinary decodes a CBOR envelope back to a payload, validating
// schema membership against the default registry.
func UnmarshalBinary(data []byte) (*Payload, error) {
	return UnmarshalBinaryWithRegistry(data, nil)
}

// UnmarshalBinaryWithRegistry decodes a CBOR envelope against a
// specific registry.
func UnmarshalBinaryWithRegistry(data []byte, reg *Registry) (*Payload, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	_, dec := cborModes()
	var env binaryEnvelope
	if err := dec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("icsdes: binary envelope: %w", err)
	}
	schema, ok := reg.Form(env.Form)
	if !ok {
		return nil, &DecodeError{Kind: DecodeUnknownFormType, FormType: env.Form}
	}

	p := &Payload{
		FormType:     env.Form,
		Differential: env.Diff,
		Record:       NewRecord(env.Form),
	}
	for code, s := range env.Scalars {
		spec, ok := schema.Field(code)
		if !ok || spec.Kind == KindRepeatedGroup {
			return nil, &DecodeError{Kind: DecodeSchemaMismatch, Code: code}
		}
		p.Record.Set(code, s)
	}
	for code, items := range env.Groups {
		spec, ok := schema.Field(code)
		if !ok || spec.Kind != KindRepeatedGroup {
			return nil, &DecodeError{Kind: DecodeSchemaMismatch, Code: code}
		}
		subs := make([]SubRecord, len(items))
		for i, item := range items {
			for sub := range item {
				if !spec.hasSub(sub) {
					return nil, &DecodeError{Kind: DecodeSchemaMismatch, Code: sub}
				}
			}
			subs[i] = SubRecord(item)
		}
		p.Record.SetGroup(code, subs...)
	}
	for _, code := range env.Removed {
		if _, ok := schema.Field(code); !ok {
			return nil, &DecodeError{Kind: DecodeSchemaMismatch, Code: code}
		}
		p.Removed = insertCode(p.Removed, code)
	}
	return p, nil
}
