package icsdes

import "testing"

// ============================================================
// Lexer Tests
// ============================================================

func TestLex_BasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []tokenType
	}{
		{"", []tokenType{tokenEOF}},
		{"213", []tokenType{tokenText, tokenEOF}},
		{"{}", []tokenType{tokenLBrace, tokenRBrace, tokenEOF}},
		{"[]", []tokenType{tokenLBracket, tokenRBracket, tokenEOF}},
		{"|", []tokenType{tokenPipe, tokenEOF}},
		{"~", []tokenType{tokenTilde, tokenEOF}},
		{"24~OSC", []tokenType{tokenText, tokenTilde, tokenText, tokenEOF}},
		{"213{2~a|3~b}", []tokenType{
			tokenText, tokenLBrace,
			tokenText, tokenTilde, tokenText, tokenPipe,
			tokenText, tokenTilde, tokenText,
			tokenRBrace, tokenEOF,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := lex(tt.input)
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.typ != tt.expected[i] {
					t.Errorf("token %d: expected %s, got %s", i, tt.expected[i], tok.typ)
				}
			}
		})
	}
}

func TestLex_EscapedDelimitersStayInText(t *testing.T) {
	tokens := lex(`26~A\/B`)
	// text(26) ~ text(A\/B) EOF
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[2].typ != tokenText || tokens[2].text != `A\/B` {
		t.Errorf("expected text %q, got %v", `A\/B`, tokens[2])
	}
}

func TestLex_Offsets(t *testing.T) {
	tokens := lex("213{26~hi}")
	wantOffsets := []int{0, 3, 4, 6, 7, 9, 10}
	if len(tokens) != len(wantOffsets) {
		t.Fatalf("expected %d tokens, got %d", len(wantOffsets), len(tokens))
	}
	for i, tok := range tokens {
		if tok.offset != wantOffsets[i] {
			t.Errorf("token %d (%s): expected offset %d, got %d", i, tok, wantOffsets[i], tok.offset)
		}
	}
}

func TestLex_DanglingBackslashKeptInText(t *testing.T) {
	tokens := lex(`26~oops\`)
	if tokens[2].text != `oops\` {
		t.Errorf("expected trailing backslash kept, got %q", tokens[2].text)
	}
}

// ============================================================
// Token Stream Tests
// ============================================================

func TestTokenStream_ExpectFailure(t *testing.T) {
	s := newTokenStream(lex("213"))
	if _, err := s.expect(tokenLBrace); err == nil {
		t.Fatal("expected grammar error")
	}
	// Stream is not advanced past the mismatch.
	if s.peek().typ != tokenText {
		t.Errorf("stream advanced on failed expect")
	}
}

func TestTokenStream_PeekAtEOF(t *testing.T) {
	s := newTokenStream(lex(""))
	for i := 0; i < 3; i++ {
		if s.advance().typ != tokenEOF {
			t.Fatal("expected EOF to repeat")
		}
	}
}
