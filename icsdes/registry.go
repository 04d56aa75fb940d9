package icsdes

import (
	"fmt"
	"sort"
)

// Field codes occupy a bounded append-only range; codes are never
// reassigned across catalog revisions.
const (
	MinFieldCode = 1
	MaxFieldCode = 999
)

// FieldSpec describes one field code within a form schema.
type FieldSpec struct {
	Kind Kind
	Enum string // enum table name, for KindScalarEnum
	Sub  []int  // sub-field codes in ascending order, for KindRepeatedGroup
}

func (s FieldSpec) hasSub(code int) bool {
	for _, c := range s.Sub {
		if c == code {
			return true
		}
	}
	return false
}

// EnumTable is a closed vocabulary of short tokens for a constrained
// value domain. Tokens and canonical values are unique within a table.
type EnumTable struct {
	name    string
	byToken map[string]string
	byValue map[string]string
}

// Name returns the table name.
func (t *EnumTable) Name() string {
	return t.name
}

// Value resolves a token to its canonical value.
func (t *EnumTable) Value(token string) (string, bool) {
	v, ok := t.byToken[token]
	return v, ok
}

// Token resolves a canonical value to its token.
func (t *EnumTable) Token(value string) (string, bool) {
	tok, ok := t.byValue[value]
	return tok, ok
}

// Tokens returns the table's tokens in sorted order.
func (t *EnumTable) Tokens() []string {
	tokens := make([]string, 0, len(t.byToken))
	for tok := range t.byToken {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// FormSchema holds the valid field codes of one form type.
type FormSchema struct {
	formType string
	fields   map[int]FieldSpec
}

// FormType returns the schema's form type identifier.
func (s *FormSchema) FormType() string {
	return s.formType
}

// Field returns the spec for a code.
func (s *FormSchema) Field(code int) (FieldSpec, bool) {
	spec, ok := s.fields[code]
	return spec, ok
}

// Codes returns the schema's field codes in ascending order.
func (s *FormSchema) Codes() []int {
	codes := make([]int, 0, len(s.fields))
	for c := range s.fields {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Registry is the immutable lookup surface shared by the encoder, the
// decoder, and the differential engine. Build one with LoadCatalog or a
// RegistryBuilder; it is never mutated afterwards and is safe to share
// across goroutines. All lookups are O(1) and report not-found instead
// of failing, since foreign codes are an expected condition on a lossy
// link.
type Registry struct {
	byCode map[int]string
	byName map[string]int
	enums  map[string]*EnumTable
	forms  map[string]*FormSchema
}

// CodeForField resolves a canonical field name to its code.
func (r *Registry) CodeForField(name string) (int, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// FieldForCode resolves a code to its canonical field name.
func (r *Registry) FieldForCode(code int) (string, bool) {
	n, ok := r.byCode[code]
	return n, ok
}

// ResolveEnum resolves a token within a named table to its canonical
// value.
func (r *Registry) ResolveEnum(table, token string) (string, bool) {
	t, ok := r.enums[table]
	if !ok {
		return "", false
	}
	return t.Value(token)
}

// TokenForEnumValue resolves a canonical value within a named table to
// its token.
func (r *Registry) TokenForEnumValue(table, value string) (string, bool) {
	t, ok := r.enums[table]
	if !ok {
		return "", false
	}
	return t.Token(value)
}

// Enum returns a named enumeration table.
func (r *Registry) Enum(name string) (*EnumTable, bool) {
	t, ok := r.enums[name]
	return t, ok
}

// EnumNames returns the registered table names in sorted order.
func (r *Registry) EnumNames() []string {
	names := make([]string, 0, len(r.enums))
	for n := range r.enums {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Form returns the schema for a form type.
func (r *Registry) Form(formType string) (*FormSchema, bool) {
	s, ok := r.forms[formType]
	return s, ok
}

// FormTypes returns the registered form types in sorted order.
func (r *Registry) FormTypes() []string {
	types := make([]string, 0, len(r.forms))
	for t := range r.forms {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ValidForForm reports whether a code belongs to a form type's schema.
func (r *Registry) ValidForForm(formType string, code int) bool {
	s, ok := r.forms[formType]
	if !ok {
		return false
	}
	_, ok = s.fields[code]
	return ok
}

// FieldKind returns the kind spec of a code within a form type.
func (r *Registry) FieldKind(formType string, code int) (FieldSpec, bool) {
	s, ok := r.forms[formType]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Field(code)
}

// ============================================================
// Builder
// ============================================================

// FieldDef declares one field code within a form under construction.
type FieldDef struct {
	Code int
	Kind Kind
	Enum string
	Sub  []int
}

// ScalarField declares a free-text field.
func ScalarField(code int) FieldDef {
	return FieldDef{Code: code, Kind: KindScalar}
}

// EnumField declares a field constrained to a named enumeration table.
func EnumField(code int, table string) FieldDef {
	return FieldDef{Code: code, Kind: KindScalarEnum, Enum: table}
}

// GroupField declares a repeated-group field with the given sub-field
// codes.
func GroupField(code int, sub ...int) FieldDef {
	return FieldDef{Code: code, Kind: KindRepeatedGroup, Sub: sub}
}

// RegistryBuilder constructs registries programmatically, for embedders
// with private catalogs and for tests.
type RegistryBuilder struct {
	reg  *Registry
	errs []error
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		reg: &Registry{
			byCode: make(map[int]string),
			byName: make(map[string]int),
			enums:  make(map[string]*EnumTable),
			forms:  make(map[string]*FormSchema),
		},
	}
}

// Field registers a field code with its canonical name.
func (b *RegistryBuilder) Field(code int, name string) *RegistryBuilder {
	if code < MinFieldCode || code > MaxFieldCode {
		b.errs = append(b.errs, fmt.Errorf("field code %d out of range [%d, %d]", code, MinFieldCode, MaxFieldCode))
		return b
	}
	if prev, ok := b.reg.byCode[code]; ok {
		b.errs = append(b.errs, fmt.Errorf("field code %d already registered as %q", code, prev))
		return b
	}
	if prev, ok := b.reg.byName[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("field name %q already registered as code %d", name, prev))
		return b
	}
	b.reg.byCode[code] = name
	b.reg.byName[name] = code
	return b
}

// Enum registers an enumeration table mapping tokens to canonical
// values.
func (b *RegistryBuilder) Enum(name string, tokens map[string]string) *RegistryBuilder {
	if _, ok := b.reg.enums[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("enum table %q already registered", name))
		return b
	}
	t := &EnumTable{
		name:    name,
		byToken: make(map[string]string, len(tokens)),
		byValue: make(map[string]string, len(tokens)),
	}
	for tok, val := range tokens {
		if _, ok := t.byToken[tok]; ok {
			b.errs = append(b.errs, fmt.Errorf("enum %q: duplicate token %q", name, tok))
			continue
		}
		if _, ok := t.byValue[val]; ok {
			b.errs = append(b.errs, fmt.Errorf("enum %q: duplicate value %q", name, val))
			continue
		}
		t.byToken[tok] = val
		t.byValue[val] = tok
	}
	b.reg.enums[name] = t
	return b
}

// validFormType reports whether an identifier can appear as a wire
// header: non-empty, uppercase alphanumeric.
func validFormType(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Form registers a form type with its field specs.
func (b *RegistryBuilder) Form(formType string, fields ...FieldDef) *RegistryBuilder {
	if !validFormType(formType) {
		b.errs = append(b.errs, fmt.Errorf("form type %q is not wire-encodable (uppercase alphanumeric required)", formType))
		return b
	}
	if _, ok := b.reg.forms[formType]; ok {
		b.errs = append(b.errs, fmt.Errorf("form %q already registered", formType))
		return b
	}
	s := &FormSchema{
		formType: formType,
		fields:   make(map[int]FieldSpec, len(fields)),
	}
	for _, f := range fields {
		if _, ok := s.fields[f.Code]; ok {
			b.errs = append(b.errs, fmt.Errorf("form %q: duplicate code %d", formType, f.Code))
			continue
		}
		sub := append([]int(nil), f.Sub...)
		sort.Ints(sub)
		s.fields[f.Code] = FieldSpec{Kind: f.Kind, Enum: f.Enum, Sub: sub}
	}
	b.reg.forms[formType] = s
	return b
}

// Build finalizes the registry, validating cross-references: every form
// field code and group sub-code must be a registered field, and every
// enum field must name a registered table.
func (b *RegistryBuilder) Build() (*Registry, error) {
	for formType, s := range b.reg.forms {
		for code, spec := range s.fields {
			if _, ok := b.reg.byCode[code]; !ok {
				b.errs = append(b.errs, fmt.Errorf("form %q: code %d has no registered field name", formType, code))
			}
			switch spec.Kind {
			case KindScalarEnum:
				if _, ok := b.reg.enums[spec.Enum]; !ok {
					b.errs = append(b.errs, fmt.Errorf("form %q: code %d references unknown enum table %q", formType, code, spec.Enum))
				}
			case KindRepeatedGroup:
				if len(spec.Sub) == 0 {
					b.errs = append(b.errs, fmt.Errorf("form %q: group code %d has no sub-field codes", formType, code))
				}
				for _, sub := range spec.Sub {
					if _, ok := b.reg.byCode[sub]; !ok {
						b.errs = append(b.errs, fmt.Errorf("form %q: group code %d references unregistered sub-code %d", formType, code, sub))
					}
				}
			}
		}
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("icsdes: invalid registry: %w", b.errs[0])
	}
	return b.reg, nil
}
