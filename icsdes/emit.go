package icsdes

import (
	"sort"
	"strconv"
	"strings"
)

// EncodeOptions configures the encoder.
type EncodeOptions struct {
	// Registry supplies field codes and form schemas. Nil means
	// DefaultRegistry().
	Registry *Registry

	// Fields restricts emission to an explicit code subset. Codes in
	// the subset that are absent from the record are skipped. Nil
	// means all present fields.
	Fields []int
}

// Encode serializes a full record against the default registry.
func Encode(r *Record) (string, error) {
	return EncodeWithOptions(r, EncodeOptions{})
}

// EncodeWithRegistry serializes a full record against a specific
// registry.
func EncodeWithRegistry(r *Record, reg *Registry) (string, error) {
	return EncodeWithOptions(r, EncodeOptions{Registry: reg})
}

// EncodeWithOptions serializes a record with full options. Fields are
// emitted in ascending code order, so equal records always produce
// byte-identical wire text.
func EncodeWithOptions(r *Record, opts EncodeOptions) (string, error) {
	e, err := newEmitter(r.FormType(), opts.Registry)
	if err != nil {
		return "", err
	}

	codes := opts.Fields
	if codes == nil {
		codes = r.Codes()
	} else {
		codes = dedupeCodes(codes)
	}

	e.sb.WriteString(r.FormType())
	e.sb.WriteByte('{')
	first := true
	for _, code := range codes {
		v, present := r.Get(code)
		if opts.Fields != nil {
			// An explicit subset is validated even for absent codes.
			if _, ok := e.schema.Field(code); !ok {
				return "", &EncodeError{
					Kind:     EncodeUnknownField,
					FormType: r.FormType(),
					Code:     code,
				}
			}
			if !present {
				continue
			}
		}
		if !first {
			e.sb.WriteByte('|')
		}
		if err := e.emitField(code, v); err != nil {
			return "", err
		}
		first = false
	}
	e.sb.WriteByte('}')
	return e.sb.String(), nil
}

// emitter serializes fields of one form type. The differential engine
// reuses it for D-tagged payloads.
type emitter struct {
	sb       strings.Builder
	reg      *Registry
	schema   *FormSchema
	formType string
}

func newEmitter(formType string, reg *Registry) (*emitter, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	schema, ok := reg.Form(formType)
	if !ok {
		return nil, &EncodeError{
			Kind:     EncodeUnknownField,
			FormType: formType,
			Detail:   "unknown form type",
		}
	}
	return &emitter{reg: reg, schema: schema, formType: formType}, nil
}

func (e *emitter) emitField(code int, v Value) error {
	spec, ok := e.schema.Field(code)
	if !ok {
		return &EncodeError{
			Kind:     EncodeUnknownField,
			FormType: e.formType,
			Code:     code,
		}
	}

	if group, isGroup := v.Group(); isGroup {
		if spec.Kind != KindRepeatedGroup {
			return &EncodeError{
				Kind:     EncodeKindMismatch,
				FormType: e.formType,
				Code:     code,
				Detail:   "group value for " + spec.Kind.String() + " field",
			}
		}
		return e.emitGroup(code, spec, group)
	}

	if spec.Kind == KindRepeatedGroup {
		return &EncodeError{
			Kind:     EncodeKindMismatch,
			FormType: e.formType,
			Code:     code,
			Detail:   "scalar value for repeated_group field",
		}
	}
	s, _ := v.Scalar()
	if spec.Kind == KindScalarEnum {
		tok, err := e.enumToken(code, spec.Enum, s)
		if err != nil {
			return err
		}
		s = tok
	}
	if err := e.checkScalar(code, s); err != nil {
		return err
	}
	e.sb.WriteString(strconv.Itoa(code))
	e.sb.WriteByte('~')
	e.sb.WriteString(Escape(s))
	return nil
}

func (e *emitter) emitGroup(code int, spec FieldSpec, items []SubRecord) error {
	e.sb.WriteString(strconv.Itoa(code))
	e.sb.WriteString("~[")
	for i, item := range items {
		if i > 0 {
			e.sb.WriteByte('|')
		}
		e.sb.WriteByte('[')
		for j, sub := range item.Codes() {
			if !spec.hasSub(sub) {
				return &EncodeError{
					Kind:     EncodeUnknownField,
					FormType: e.formType,
					Code:     sub,
					Detail:   "sub-code not in group " + strconv.Itoa(code),
				}
			}
			if j > 0 {
				e.sb.WriteByte('|')
			}
			val := item[sub]
			if err := e.checkScalar(sub, val); err != nil {
				return err
			}
			e.sb.WriteString(strconv.Itoa(sub))
			e.sb.WriteByte('~')
			e.sb.WriteString(Escape(val))
		}
		e.sb.WriteByte(']')
	}
	e.sb.WriteByte(']')
	return nil
}

// enumToken normalizes a SCALAR_ENUM value to its wire token: tokens
// pass through, canonical values are substituted.
func (e *emitter) enumToken(code int, table, s string) (string, error) {
	if _, ok := e.reg.ResolveEnum(table, s); ok {
		return s, nil
	}
	if tok, ok := e.reg.TokenForEnumValue(table, s); ok {
		return tok, nil
	}
	return "", &EncodeError{
		Kind:     EncodeKindMismatch,
		FormType: e.formType,
		Code:     code,
		Detail:   "value not in enum table " + strconv.Quote(table),
	}
}

// checkScalar rejects text the escape set cannot protect: the wire
// format defines no escapes for braces, so a brace in a value would
// decode at the wrong boundary.
func (e *emitter) checkScalar(code int, s string) error {
	if strings.ContainsAny(s, "{}") {
		return &EncodeError{
			Kind:     EncodeKindMismatch,
			FormType: e.formType,
			Code:     code,
			Detail:   "value contains unescapable brace",
		}
	}
	return nil
}

// dedupeCodes returns a sorted copy with duplicates removed.
func dedupeCodes(codes []int) []int {
	out := append([]int(nil), codes...)
	sort.Ints(out)
	n := 0
	for i, c := range out {
		if i == 0 || c != out[n-1] {
			out[n] = c
			n++
		}
	}
	return out[:n]
}
