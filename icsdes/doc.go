// Package icsdes implements ICS-DES, a compact text codec for structured
// incident-command form records on narrow-bandwidth channels.
//
// ICS-DES is designed to be:
//   - Byte-cheap (integer field codes, short enum tokens, no quoting)
//   - Schema-driven (per-form field catalogs, closed enum vocabularies)
//   - Deterministic (ascending-code emission, byte-identical re-encoding)
//   - Differential (field-level deltas between two versions of a record)
//   - Pure (no I/O, no shared mutable state, safe for concurrent callers)
//
// # Wire Format
//
// A payload is the form type, an optional D marking a differential, and a
// brace-delimited field list:
//
//	213{2~20250423|3~1145|24~OSC|25~PSC|26~Request additional resources}
//	214D{6~James}
//
// Each field is <code>~<value>. Repeated-group fields carry one bracket
// group per list item:
//
//	214{30~[[3~0800|23~Briefing]|[3~1145|23~Resource request]]}
//
// Structural delimiters inside values are escaped: | becomes \/, ~ becomes
// \:, [ becomes \(, ] becomes \), and a literal backslash becomes \\.
//
// # Data Model
//
// A Record is a form type plus a mapping of field code to value, where a
// value is either scalar text (possibly an enum token) or an ordered list
// of flat sub-records. Absence of a code is the only "not provided"
// signal; an empty value on the wire marks a removal in differential
// payloads.
//
// # Registries
//
// Field codes, enumeration tables, and form schemas come from a Registry
// built once from the embedded catalog (or programmatically with a
// RegistryBuilder) and shared read-only between encoder, decoder, and the
// differential engine.
//
// # Differential Pipeline
//
// Diff computes the field-level delta between two same-type records,
// EncodeDiff serializes it with a D-tagged header, and Merge applies a
// decoded differential onto a base record:
//
//	Merge(base, Decode(EncodeDiff(Diff(base, target)))) == target
package icsdes
