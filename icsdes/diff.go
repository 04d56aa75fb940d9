package icsdes

import (
	"sort"
	"strconv"
)

// DiffSet is the field-level delta between a base and a target record
// of the same form type. A repeated-group field appears wholesale when
// any item differs; the list is the unit of change.
type DiffSet struct {
	formType string
	changes  map[int]diffChange
}

type diffChange struct {
	removed bool
	value   Value
}

// FormType returns the form type both records share.
func (d *DiffSet) FormType() string {
	return d.formType
}

// Empty reports whether base and target were equal.
func (d *DiffSet) Empty() bool {
	return len(d.changes) == 0
}

// Len returns the number of changed fields.
func (d *DiffSet) Len() int {
	return len(d.changes)
}

// Codes returns the changed field codes in ascending order.
func (d *DiffSet) Codes() []int {
	codes := make([]int, 0, len(d.changes))
	for c := range d.changes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Value returns the new value for a changed code; ok is false when the
// code is unchanged or removed.
func (d *DiffSet) Value(code int) (Value, bool) {
	ch, ok := d.changes[code]
	if !ok || ch.removed {
		return Value{}, false
	}
	return ch.value, true
}

// Removed reports whether the code was removed between base and target.
func (d *DiffSet) Removed(code int) bool {
	ch, ok := d.changes[code]
	return ok && ch.removed
}

// Diff computes the delta between two same-type records. Scalar fields
// differ on inequality, including presence versus absence; group fields
// differ when the ordered item lists are not element-wise equal.
func Diff(base, target *Record) (*DiffSet, error) {
	if base.FormType() != target.FormType() {
		return nil, &DiffError{
			Kind:       DiffFormTypeMismatch,
			BaseType:   base.FormType(),
			TargetType: target.FormType(),
		}
	}
	d := &DiffSet{
		formType: base.FormType(),
		changes:  make(map[int]diffChange),
	}
	for _, code := range target.Codes() {
		tv, _ := target.Get(code)
		bv, ok := base.Get(code)
		if !ok || !bv.Equal(tv) {
			d.changes[code] = diffChange{value: tv.clone()}
		}
	}
	for _, code := range base.Codes() {
		if !target.Has(code) {
			d.changes[code] = diffChange{removed: true}
		}
	}
	return d, nil
}

// EncodeDiff serializes a delta as a differential payload: the header
// is tagged with D, only changed fields are emitted, and a removal is
// encoded as the field code with an empty value.
func EncodeDiff(d *DiffSet) (string, error) {
	return EncodeDiffWithRegistry(d, nil)
}

// EncodeDiffWithRegistry serializes a delta against a specific
// registry.
func EncodeDiffWithRegistry(d *DiffSet, reg *Registry) (string, error) {
	e, err := newEmitter(d.formType, reg)
	if err != nil {
		return "", err
	}
	e.sb.WriteString(d.formType)
	e.sb.WriteString("D{")
	for i, code := range d.Codes() {
		if i > 0 {
			e.sb.WriteByte('|')
		}
		ch := d.changes[code]
		if ch.removed {
			if _, ok := e.schema.Field(code); !ok {
				return "", &EncodeError{
					Kind:     EncodeUnknownField,
					FormType: d.formType,
					Code:     code,
				}
			}
			e.sb.WriteString(strconv.Itoa(code))
			e.sb.WriteByte('~')
			continue
		}
		if err := e.emitField(code, ch.value); err != nil {
			return "", err
		}
	}
	e.sb.WriteByte('}')
	return e.sb.String(), nil
}

// Merge returns a new record equal to base with every field present in
// the payload overwritten and every removal marker applied; all other
// base fields carry over unchanged. The base record is never mutated.
func Merge(base *Record, p *Payload) (*Record, error) {
	if base.FormType() != p.FormType {
		return nil, &DiffError{
			Kind:       DiffFormTypeMismatch,
			BaseType:   base.FormType(),
			TargetType: p.FormType,
		}
	}
	out := base.Clone()
	for _, code := range p.Record.Codes() {
		v, _ := p.Record.Get(code)
		out.setValue(code, v.clone())
	}
	for _, code := range p.Removed {
		out.Delete(code)
	}
	return out, nil
}

// DiffAndEncode is the one-call differential pipeline for senders.
func DiffAndEncode(base, target *Record) (string, error) {
	return DiffAndEncodeWithRegistry(base, target, nil)
}

// DiffAndEncodeWithRegistry diffs and serializes against a specific
// registry.
func DiffAndEncodeWithRegistry(base, target *Record, reg *Registry) (string, error) {
	d, err := Diff(base, target)
	if err != nil {
		return "", err
	}
	return EncodeDiffWithRegistry(d, reg)
}

// DecodeAndMerge is the one-call differential pipeline for receivers.
func DecodeAndMerge(base *Record, input string) (*Record, error) {
	return DecodeAndMergeWithOptions(base, input, DecodeOptions{})
}

// DecodeAndMergeWithOptions decodes and merges with decoder options.
func DecodeAndMergeWithOptions(base *Record, input string, opts DecodeOptions) (*Record, error) {
	p, err := DecodeWithOptions(input, opts)
	if err != nil {
		return nil, err
	}
	return Merge(base, p)
}
