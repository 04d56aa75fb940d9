package icsdes

import "strings"

// The wire grammar reserves | ~ [ ] as structural delimiters. Inside a
// value each maps to a two-byte escape, and a literal backslash maps to
// \\ so that escaped text is never ambiguous with pre-existing backslash
// sequences in the value.
//
//	\  ->  \\
//	|  ->  \/
//	~  ->  \:
//	[  ->  \(
//	]  ->  \)
const escapeSet = `\|~[]`

// Escape protects structural delimiters inside scalar text.
func Escape(s string) string {
	if !strings.ContainsAny(s, escapeSet) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '|':
			sb.WriteString(`\/`)
		case '~':
			sb.WriteString(`\:`)
		case '[':
			sb.WriteString(`\(`)
		case ']':
			sb.WriteString(`\)`)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Unescape reverses Escape. Backslash sequences other than the five
// reserved ones pass through unchanged; a dangling backslash at the end
// of the input fails with DecodeError{Kind: DecodeUnescapeFailure}, with
// Offset relative to s.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", &DecodeError{
				Kind:   DecodeUnescapeFailure,
				Offset: i,
				Detail: "dangling backslash",
			}
		}
		i++
		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case '/':
			sb.WriteByte('|')
		case ':':
			sb.WriteByte('~')
		case '(':
			sb.WriteByte('[')
		case ')':
			sb.WriteByte(']')
		default:
			// Unknown sequence: keep both bytes.
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String(), nil
}
