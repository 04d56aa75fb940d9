package icsdes

import (
	"strconv"
	"strings"
)

// MaxPayloadLen is the default decoder input cap. Radio-link payloads
// are expected to stay under 200 bytes; the cap rejects runaway input
// before any scanning happens.
const MaxPayloadLen = 2048

// Payload is the result of decoding wire text.
type Payload struct {
	FormType     string
	Differential bool
	Record       *Record
	Removed      []int // removed field codes (differential payloads), ascending
}

// DecodeOptions configures the decoder.
type DecodeOptions struct {
	// Registry supplies field codes and form schemas. Nil means
	// DefaultRegistry().
	Registry *Registry

	// MaxPayload overrides MaxPayloadLen when positive.
	MaxPayload int
}

// Decode parses wire text against the default registry.
func Decode(input string) (*Payload, error) {
	return DecodeWithOptions(input, DecodeOptions{})
}

// DecodeWithRegistry parses wire text against a specific registry.
func DecodeWithRegistry(input string, reg *Registry) (*Payload, error) {
	return DecodeWithOptions(input, DecodeOptions{Registry: reg})
}

// DecodeWithOptions parses wire text with full options. On any failure
// the typed error carries the byte offset and no partial payload is
// returned.
func DecodeWithOptions(input string, opts DecodeOptions) (*Payload, error) {
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	maxLen := opts.MaxPayload
	if maxLen <= 0 {
		maxLen = MaxPayloadLen
	}
	if len(input) > maxLen {
		return nil, &DecodeError{
			Kind:   DecodePayloadTooLarge,
			Offset: maxLen,
			Detail: "input exceeds " + strconv.Itoa(maxLen) + " bytes",
		}
	}

	p := &parser{
		stream: newTokenStream(lex(input)),
		reg:    reg,
		seen:   make(map[int]bool),
	}
	return p.parsePayload()
}

// parser is a single-pass recursive-descent parser over the token
// stream. Bracket depth is bounded to two by the schema: a group of
// items, each a flat sub-record.
type parser struct {
	stream *tokenStream
	reg    *Registry
	schema *FormSchema
	seen   map[int]bool // field codes already parsed, empty values included
}

func (p *parser) parsePayload() (*Payload, error) {
	header, err := p.stream.expect(tokenText)
	if err != nil {
		return nil, &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: 0,
			Detail: "missing form type header",
		}
	}

	formType, differential, err := p.resolveHeader(header)
	if err != nil {
		return nil, err
	}
	p.schema, _ = p.reg.Form(formType)

	if _, err := p.stream.expect(tokenLBrace); err != nil {
		return nil, err
	}

	out := &Payload{
		FormType:     formType,
		Differential: differential,
		Record:       NewRecord(formType),
	}

	if !p.stream.match(tokenRBrace) {
		for {
			if err := p.parseField(out); err != nil {
				return nil, err
			}
			if p.stream.match(tokenPipe) {
				continue
			}
			break
		}
		if _, err := p.stream.expect(tokenRBrace); err != nil {
			return nil, err
		}
	}

	if tok := p.stream.peek(); tok.typ != tokenEOF {
		return nil, &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: tok.offset,
			Detail: "trailing input after closing brace",
		}
	}
	return out, nil
}

// resolveHeader maps the header identifier to a registered form type
// and the FULL/DIFFERENTIAL flag. Form types may themselves end in a
// letter (215A), so the whole identifier is tried first and the
// trailing D is only stripped when the whole identifier is unknown.
func (p *parser) resolveHeader(header token) (string, bool, error) {
	id := header.text
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return "", false, &DecodeError{
				Kind:   DecodeMalformedGrammar,
				Offset: header.offset + i,
				Detail: "form type must be uppercase alphanumeric",
			}
		}
	}
	if _, ok := p.reg.Form(id); ok {
		return id, false, nil
	}
	if base, found := strings.CutSuffix(id, "D"); found {
		if _, ok := p.reg.Form(base); ok {
			return base, true, nil
		}
	}
	return "", false, &DecodeError{
		Kind:     DecodeUnknownFormType,
		Offset:   header.offset,
		FormType: id,
	}
}

func (p *parser) parseField(out *Payload) error {
	codeTok, err := p.stream.expect(tokenText)
	if err != nil {
		return err
	}
	code, err := parseCode(codeTok)
	if err != nil {
		return err
	}
	if _, err := p.stream.expect(tokenTilde); err != nil {
		return err
	}

	spec, ok := p.schema.Field(code)
	if !ok {
		return &DecodeError{
			Kind:   DecodeSchemaMismatch,
			Offset: codeTok.offset,
			Code:   code,
			Detail: "code not in form " + out.FormType,
		}
	}
	if p.seen[code] {
		return &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: codeTok.offset,
			Detail: "duplicate field code " + codeTok.text,
		}
	}
	p.seen[code] = true

	switch tok := p.stream.peek(); tok.typ {
	case tokenLBracket:
		if spec.Kind != KindRepeatedGroup {
			return &DecodeError{
				Kind:   DecodeSchemaMismatch,
				Offset: tok.offset,
				Code:   code,
				Detail: "group value for " + spec.Kind.String() + " field",
			}
		}
		items, err := p.parseGroup(code, spec)
		if err != nil {
			return err
		}
		out.Record.setValue(code, Group(items...))
		return nil

	case tokenText:
		if spec.Kind == KindRepeatedGroup {
			return &DecodeError{
				Kind:   DecodeSchemaMismatch,
				Offset: tok.offset,
				Code:   code,
				Detail: "scalar value for repeated_group field",
			}
		}
		p.stream.advance()
		val, err := unescapeAt(tok)
		if err != nil {
			return err
		}
		out.Record.setValue(code, Scalar(val))
		return nil

	case tokenPipe, tokenRBrace:
		// Empty value: the removal marker in differential payloads,
		// a no-op (field not provided) in full payloads.
		if out.Differential {
			out.Removed = insertCode(out.Removed, code)
		}
		return nil

	default:
		return &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: tok.offset,
			Detail: "unexpected " + tok.typ.String() + " after ~",
		}
	}
}

// parseGroup parses [[sub~val|...]|[...]]; the outer bracket pair wraps
// one inner bracket pair per list item.
func (p *parser) parseGroup(code int, spec FieldSpec) ([]SubRecord, error) {
	if _, err := p.stream.expect(tokenLBracket); err != nil {
		return nil, err
	}
	var items []SubRecord
	for {
		item, err := p.parseGroupItem(code, spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.stream.match(tokenPipe) {
			continue
		}
		break
	}
	if _, err := p.stream.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) parseGroupItem(code int, spec FieldSpec) (SubRecord, error) {
	if _, err := p.stream.expect(tokenLBracket); err != nil {
		return nil, err
	}
	item := make(SubRecord)
	for {
		subTok, err := p.stream.expect(tokenText)
		if err != nil {
			return nil, err
		}
		sub, err := parseCode(subTok)
		if err != nil {
			return nil, err
		}
		if !spec.hasSub(sub) {
			return nil, &DecodeError{
				Kind:   DecodeSchemaMismatch,
				Offset: subTok.offset,
				Code:   sub,
				Detail: "sub-code not in group " + strconv.Itoa(code),
			}
		}
		if _, ok := item[sub]; ok {
			return nil, &DecodeError{
				Kind:   DecodeMalformedGrammar,
				Offset: subTok.offset,
				Detail: "duplicate sub-code " + subTok.text,
			}
		}
		if _, err := p.stream.expect(tokenTilde); err != nil {
			return nil, err
		}
		valTok := p.stream.peek()
		switch valTok.typ {
		case tokenText:
			p.stream.advance()
			val, err := unescapeAt(valTok)
			if err != nil {
				return nil, err
			}
			item[sub] = val
		case tokenLBracket:
			// Nesting is bounded to two levels by the schema.
			return nil, &DecodeError{
				Kind:   DecodeMalformedGrammar,
				Offset: valTok.offset,
				Detail: "nested group exceeds depth limit",
			}
		case tokenPipe, tokenRBracket:
			item[sub] = ""
		default:
			return nil, &DecodeError{
				Kind:   DecodeMalformedGrammar,
				Offset: valTok.offset,
				Detail: "unexpected " + valTok.typ.String() + " in group item",
			}
		}
		if p.stream.match(tokenPipe) {
			continue
		}
		break
	}
	if _, err := p.stream.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return item, nil
}

// parseCode parses a field-code token as a decimal integer.
func parseCode(tok token) (int, error) {
	code, err := strconv.Atoi(tok.text)
	if err != nil || code < MinFieldCode || code > MaxFieldCode {
		return 0, &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: tok.offset,
			Detail: "invalid field code " + strconv.Quote(tok.text),
		}
	}
	return code, nil
}

// unescapeAt unescapes a text token, shifting any failure offset from
// token-relative to input-relative.
func unescapeAt(tok token) (string, error) {
	val, err := Unescape(tok.text)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Offset += tok.offset
		}
		return "", err
	}
	return val, nil
}

// insertCode inserts a code keeping the slice ascending.
func insertCode(codes []int, code int) []int {
	i := 0
	for i < len(codes) && codes[i] < code {
		i++
	}
	codes = append(codes, 0)
	copy(codes[i+1:], codes[i:])
	codes[i] = code
	return codes
}
