package icsdes

import "sort"

// Kind classifies a schema field.
type Kind uint8

const (
	KindScalar        Kind = iota // free text
	KindScalarEnum                // token from a named enumeration table
	KindRepeatedGroup             // ordered list of flat sub-records
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindScalarEnum:
		return "scalar_enum"
	case KindRepeatedGroup:
		return "repeated_group"
	default:
		return "unknown"
	}
}

// SubRecord is one item of a repeated-group field: a flat mapping of
// sub-field code to scalar text.
type SubRecord map[int]string

// Codes returns the sub-field codes in ascending order.
func (s SubRecord) Codes() []int {
	codes := make([]int, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Clone returns an independent copy.
func (s SubRecord) Clone() SubRecord {
	out := make(SubRecord, len(s))
	for c, v := range s {
		out[c] = v
	}
	return out
}

// Equal reports whether two sub-records hold the same fields.
func (s SubRecord) Equal(o SubRecord) bool {
	if len(s) != len(o) {
		return false
	}
	for c, v := range s {
		ov, ok := o[c]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Value is a field value: scalar text or an ordered list of sub-records.
type Value struct {
	group   []SubRecord
	str     string
	isGroup bool
}

// Scalar creates a scalar value.
func Scalar(s string) Value {
	return Value{str: s}
}

// Group creates a repeated-group value.
func Group(items ...SubRecord) Value {
	return Value{group: items, isGroup: true}
}

// IsGroup reports whether the value is a repeated group.
func (v Value) IsGroup() bool {
	return v.isGroup
}

// Scalar returns the scalar text, or false for a group value.
func (v Value) Scalar() (string, bool) {
	if v.isGroup {
		return "", false
	}
	return v.str, true
}

// Group returns the group items, or false for a scalar value.
func (v Value) Group() ([]SubRecord, bool) {
	if !v.isGroup {
		return nil, false
	}
	return v.group, true
}

// Equal reports deep equality. Group values are element-wise ordered.
func (v Value) Equal(o Value) bool {
	if v.isGroup != o.isGroup {
		return false
	}
	if !v.isGroup {
		return v.str == o.str
	}
	if len(v.group) != len(o.group) {
		return false
	}
	for i := range v.group {
		if !v.group[i].Equal(o.group[i]) {
			return false
		}
	}
	return true
}

func (v Value) clone() Value {
	if !v.isGroup {
		return v
	}
	items := make([]SubRecord, len(v.group))
	for i, item := range v.group {
		items[i] = item.Clone()
	}
	return Value{group: items, isGroup: true}
}

// Record is one form record: a form type plus field code → value.
// Absence of a code is the only "not provided" signal; setting a field to
// the empty string deletes it, and a group with zero items is likewise
// treated as absent.
type Record struct {
	formType string
	fields   map[int]Value
}

// NewRecord creates an empty record of the given form type.
func NewRecord(formType string) *Record {
	return &Record{
		formType: formType,
		fields:   make(map[int]Value),
	}
}

// FormType returns the record's form type identifier.
func (r *Record) FormType() string {
	return r.formType
}

// Set sets a scalar field. The empty string deletes the field.
func (r *Record) Set(code int, value string) *Record {
	if value == "" {
		delete(r.fields, code)
		return r
	}
	r.fields[code] = Scalar(value)
	return r
}

// SetGroup sets a repeated-group field. A zero-field sub-record is
// "not provided" and is dropped, like the empty scalar; zero remaining
// items deletes the field. The wire grammar requires at least one
// sub-field per item, so only records normalized this way stay
// decodable after encoding. The items are copied; the caller keeps
// ownership of its maps.
func (r *Record) SetGroup(code int, items ...SubRecord) *Record {
	kept := make([]SubRecord, 0, len(items))
	for _, item := range items {
		if len(item) == 0 {
			continue
		}
		kept = append(kept, item.Clone())
	}
	if len(kept) == 0 {
		delete(r.fields, code)
		return r
	}
	r.fields[code] = Value{group: kept, isGroup: true}
	return r
}

// Delete removes a field.
func (r *Record) Delete(code int) {
	delete(r.fields, code)
}

// Get returns the value for a code.
func (r *Record) Get(code int) (Value, bool) {
	v, ok := r.fields[code]
	return v, ok
}

// Scalar returns a scalar field's text.
func (r *Record) Scalar(code int) (string, bool) {
	v, ok := r.fields[code]
	if !ok || v.isGroup {
		return "", false
	}
	return v.str, true
}

// Group returns a repeated-group field's items.
func (r *Record) Group(code int) ([]SubRecord, bool) {
	v, ok := r.fields[code]
	if !ok || !v.isGroup {
		return nil, false
	}
	return v.group, true
}

// Has reports whether a field is present.
func (r *Record) Has(code int) bool {
	_, ok := r.fields[code]
	return ok
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Codes returns the present field codes in ascending order.
func (r *Record) Codes() []int {
	codes := make([]int, 0, len(r.fields))
	for c := range r.fields {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Clone returns an independent deep copy.
func (r *Record) Clone() *Record {
	out := &Record{
		formType: r.formType,
		fields:   make(map[int]Value, len(r.fields)),
	}
	for c, v := range r.fields {
		out.fields[c] = v.clone()
	}
	return out
}

// Equal reports whether two records have the same form type and fields.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.formType != o.formType || len(r.fields) != len(o.fields) {
		return false
	}
	for c, v := range r.fields {
		ov, ok := o.fields[c]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (r *Record) setValue(code int, v Value) {
	r.fields[code] = v
}
