package icsdes

import "fmt"

// EncodeErrorKind classifies encoding failures.
type EncodeErrorKind uint8

const (
	EncodeUnknownField EncodeErrorKind = iota // code not in the form's schema
	EncodeKindMismatch                        // value shape conflicts with the field's kind
)

// String returns the kind name.
func (k EncodeErrorKind) String() string {
	switch k {
	case EncodeUnknownField:
		return "unknown field"
	case EncodeKindMismatch:
		return "kind mismatch"
	default:
		return "unknown"
	}
}

// EncodeError reports a failure to serialize a record.
type EncodeError struct {
	Kind     EncodeErrorKind
	FormType string
	Code     int // offending field code, 0 if not field-specific
	Detail   string
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("icsdes: encode %s: %s", e.FormType, e.Kind)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// DecodeErrorKind classifies decoding failures.
type DecodeErrorKind uint8

const (
	DecodeMalformedGrammar DecodeErrorKind = iota // structural failure at Offset
	DecodeSchemaMismatch                          // code unknown to the form, or parsed shape conflicts with its kind
	DecodeUnknownFormType                         // header names no registered form
	DecodePayloadTooLarge                         // input exceeds the payload cap
	DecodeUnescapeFailure                         // dangling escape inside a value
)

// String returns the kind name.
func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeMalformedGrammar:
		return "malformed grammar"
	case DecodeSchemaMismatch:
		return "schema mismatch"
	case DecodeUnknownFormType:
		return "unknown form type"
	case DecodePayloadTooLarge:
		return "payload too large"
	case DecodeUnescapeFailure:
		return "unescape failure"
	default:
		return "unknown"
	}
}

// DecodeError reports a failure to parse wire text. Offset is the byte
// position in the input where the failure was detected.
type DecodeError struct {
	Kind     DecodeErrorKind
	Offset   int
	Code     int    // offending field code for schema mismatches, else 0
	FormType string // header identifier for unknown-form-type errors
	Detail   string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("icsdes: decode: %s at byte %d", e.Kind, e.Offset)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.FormType != "" {
		msg += fmt.Sprintf(" (form %q)", e.FormType)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// DiffErrorKind classifies differential-engine failures.
type DiffErrorKind uint8

const (
	DiffFormTypeMismatch DiffErrorKind = iota // base and target are different form types
)

// String returns the kind name.
func (k DiffErrorKind) String() string {
	switch k {
	case DiffFormTypeMismatch:
		return "form type mismatch"
	default:
		return "unknown"
	}
}

// DiffError reports a differential-engine failure.
type DiffError struct {
	Kind       DiffErrorKind
	BaseType   string
	TargetType string
}

func (e *DiffError) Error() string {
	return fmt.Sprintf("icsdes: diff: %s (base %q, target %q)",
		e.Kind, e.BaseType, e.TargetType)
}
