package lexer

import (
	"strings"
	"testing"

	"github.com/mobiusgate/falcata/lexical"
)

func newLexer(t *testing.T, rules string, src string) *Lexer {
	t.Helper()
	def, err, cErrs := lexical.Compile(strings.NewReader(rules))
	if err != nil {
		t.Fatalf("%v (%v rule errors)", err, len(cErrs))
	}
	lex, err := NewLexer(def, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return lex
}

type expectedToken struct {
	tokenName string
	lexeme    string
	invalid   bool
}

func expectTokens(t *testing.T, lex *Lexer, expected []expectedToken) {
	t.Helper()
	for i, want := range expected {
		tok, err := lex.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.EOF {
			t.Fatalf("unexpected EOF at token %v; want: %+v", i, want)
		}
		if tok.TokenName != want.tokenName || string(tok.Lexeme) != want.lexeme || tok.Invalid != want.invalid {
			t.Fatalf("unexpected token %v; want: %+v, got: %v %#v (invalid: %v)",
				i, want, tok.TokenName, string(tok.Lexeme), tok.Invalid)
		}
	}
	tok, err := lex.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !tok.EOF {
		t.Fatalf("unexpected token after the end; got: %v %#v", tok.TokenName, string(tok.Lexeme))
	}
}

func TestLexer_Next(t *testing.T) {
	rules := `
(a|b)*c+;ABC
d(e|f)g*;DEFG
`
	lex := newLexer(t, rules, "bbbcde")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "ABC", lexeme: "bbbc"},
		{tokenName: "DEFG", lexeme: "de"},
	})
}

func TestLexer_maximalMunchBeatsPriority(t *testing.T) {
	// Both rules match the prefix `if`, but the identifier rule matches the
	// longer `iff`; the longest match wins regardless of priority.
	rules := `
(i|f|e|l|s|w|h)(i|f|e|l|s|w|h)*;IDENTIFIER
if|else|while;KEYWORD
`
	lex := newLexer(t, rules, "iff")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "IDENTIFIER", lexeme: "iff"},
	})

	// On equal length the later rule's lower priority number wins the tie.
	lex = newLexer(t, rules, "if")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "KEYWORD", lexeme: "if"},
	})
}

func TestLexer_unknownTokensCoverOneCharacter(t *testing.T) {
	rules := `
a+;AS
`
	lex := newLexer(t, rules, "aa??a")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "AS", lexeme: "aa"},
		{tokenName: TokenNameUnknown, lexeme: "?", invalid: true},
		{tokenName: TokenNameUnknown, lexeme: "?", invalid: true},
		{tokenName: "AS", lexeme: "a"},
	})
}

func TestLexer_positions(t *testing.T) {
	rules := `
a+;AS
b;B
`
	lex, err := func() (*Lexer, error) {
		def, err, _ := lexical.Compile(strings.NewReader(rules))
		if err != nil {
			return nil, err
		}
		return NewLexer(def, strings.NewReader("aab\naa"))
	}()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tokenName string
		bytePos   int
		byteLen   int
		row       int
		col       int
	}{
		{tokenName: "AS", bytePos: 0, byteLen: 2, row: 0, col: 0},
		{tokenName: "B", bytePos: 2, byteLen: 1, row: 0, col: 2},
		{tokenName: TokenNameUnknown, bytePos: 3, byteLen: 1, row: 0, col: 3},
		{tokenName: "AS", bytePos: 4, byteLen: 2, row: 1, col: 0},
	}
	for i, want := range tests {
		tok, err := lex.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.TokenName != want.tokenName || tok.BytePos != want.bytePos || tok.ByteLen != want.byteLen ||
			tok.Row != want.row || tok.Col != want.col {
			t.Fatalf("unexpected token %v; want: %+v, got: %+v", i, want, tok)
		}
	}
}

func TestLexer_tokenizationIsNotCompositional(t *testing.T) {
	// Tokenizing the concatenation of two strings is not the concatenation
	// of their tokenizations: `a` and `b` tokenize on their own, but `ab`
	// matches the longer rule.
	rules := `
a;A
b;B
ab;AB
`
	lex := newLexer(t, rules, "a")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "A", lexeme: "a"},
	})

	lex = newLexer(t, rules, "b")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "B", lexeme: "b"},
	})

	lex = newLexer(t, rules, "ab")
	expectTokens(t, lex, []expectedToken{
		{tokenName: "AB", lexeme: "ab"},
	})
}
