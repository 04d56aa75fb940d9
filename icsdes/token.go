package icsdes

import "fmt"

// tokenType identifies a wire-grammar token.
type tokenType uint8

const (
	tokenEOF tokenType = iota
	tokenText          // run of value or header bytes, escapes intact
	tokenLBrace        // {
	tokenRBrace        // }
	tokenLBracket      // [
	tokenRBracket      // ]
	tokenPipe          // |
	tokenTilde         // ~
)

// String returns the token type name.
func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of input"
	case tokenText:
		return "text"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	case tokenPipe:
		return "|"
	case tokenTilde:
		return "~"
	default:
		return "unknown"
	}
}

// token is one lexed unit with its byte offset in the input.
type token struct {
	typ    tokenType
	text   string
	offset int
}

func (t token) String() string {
	if t.typ == tokenText {
		return fmt.Sprintf("text(%q)", t.text)
	}
	return t.typ.String()
}

// lex tokenizes wire text. A backslash always consumes the following
// byte into the current text token, so escaped delimiters never surface
// as structural tokens; Unescape resolves them later. Lexing cannot
// fail: every byte is either structural or part of a text run.
func lex(input string) []token {
	var tokens []token
	i := 0
	for i < len(input) {
		start := i
		switch input[i] {
		case '{':
			tokens = append(tokens, token{tokenLBrace, "{", start})
			i++
		case '}':
			tokens = append(tokens, token{tokenRBrace, "}", start})
			i++
		case '[':
			tokens = append(tokens, token{tokenLBracket, "[", start})
			i++
		case ']':
			tokens = append(tokens, token{tokenRBracket, "]", start})
			i++
		case '|':
			tokens = append(tokens, token{tokenPipe, "|", start})
			i++
		case '~':
			tokens = append(tokens, token{tokenTilde, "~", start})
			i++
		default:
			for i < len(input) {
				c := input[i]
				if c == '{' || c == '}' || c == '[' || c == ']' || c == '|' || c == '~' {
					break
				}
				if c == '\\' && i+1 < len(input) {
					i++ // keep the escaped byte inside the text run
				}
				i++
			}
			tokens = append(tokens, token{tokenText, input[start:i], start})
		}
	}
	tokens = append(tokens, token{tokenEOF, "", len(input)})
	return tokens
}

// tokenStream is a cursor over lexed tokens.
type tokenStream struct {
	tokens []token
	pos    int
}

func newTokenStream(tokens []token) *tokenStream {
	return &tokenStream{tokens: tokens}
}

// peek returns the current token without consuming it.
func (s *tokenStream) peek() token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1] // EOF
	}
	return s.tokens[s.pos]
}

// advance consumes and returns the current token.
func (s *tokenStream) advance() token {
	tok := s.peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

// match consumes the current token if it has the given type.
func (s *tokenStream) match(typ tokenType) bool {
	if s.peek().typ == typ {
		s.pos++
		return true
	}
	return false
}

// expect consumes a token of the given type or fails with a grammar
// error at the current offset.
func (s *tokenStream) expect(typ tokenType) (token, error) {
	tok := s.peek()
	if tok.typ != typ {
		return token{}, &DecodeError{
			Kind:   DecodeMalformedGrammar,
			Offset: tok.offset,
			Detail: fmt.Sprintf("expected %s, got %s", typ, tok.typ),
		}
	}
	s.pos++
	return tok, nil
}
