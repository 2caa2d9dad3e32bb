package parser

import (
	"strings"
	"testing"

	"github.com/mobiusgate/falcata/grammar"
	spec "github.com/mobiusgate/falcata/spec/grammar"
)

// testToken and testTokenStream feed the parsers a fixed token sequence
// without involving the tokenizer.
type testToken struct {
	terminalID int
	text       string
	eof        bool
}

func (t *testToken) TerminalID() int {
	return t.terminalID
}

func (t *testToken) Lexeme() []byte {
	return []byte(t.text)
}

func (t *testToken) EOF() bool {
	return t.eof
}

func (t *testToken) Invalid() bool {
	return false
}

func (t *testToken) BytePosition() (int, int) {
	return 0, len(t.text)
}

func (t *testToken) Position() (int, int) {
	return 0, 0
}

type testTokenStream struct {
	toks  []*testToken
	eofID int
	pos   int
}

func (s *testTokenStream) Next() (VToken, error) {
	if s.pos >= len(s.toks) {
		return &testToken{terminalID: s.eofID, eof: true}, nil
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}

func compileGrammar(t *testing.T, src string, opts ...grammar.CompileOption) *spec.CompiledGrammar {
	t.Helper()
	b := &grammar.GrammarBuilder{}
	gram, err := b.Build("test", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	cgram, _, err := grammar.Compile(gram, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return cgram
}

func newTestTokenStream(t *testing.T, cgram *spec.CompiledGrammar, names []string) *testTokenStream {
	t.Helper()
	nameToTerminal := map[string]int{}
	for num, name := range cgram.Syntactic.Terminals {
		if name == "" {
			continue
		}
		nameToTerminal[name] = num
	}
	var toks []*testToken
	for _, name := range names {
		id, ok := nameToTerminal[name]
		if !ok {
			t.Fatalf("a terminal was not found: %v", name)
		}
		toks = append(toks, &testToken{
			terminalID: id,
			text:       name,
		})
	}
	return &testTokenStream{
		toks:  toks,
		eofID: cgram.Syntactic.EOFSymbol,
	}
}

const exprGrammar = `
e -> e add t | t ;
t -> t mul f | f ;
f -> lp e rp | id ;
`

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		caption  string
		tokens   []string
		accepted bool
	}{
		{
			caption:  "a single operand",
			tokens:   []string{"id"},
			accepted: true,
		},
		{
			caption:  "operator precedence",
			tokens:   []string{"id", "add", "id", "mul", "id"},
			accepted: true,
		},
		{
			caption:  "a parenthesized expression",
			tokens:   []string{"lp", "id", "add", "id", "rp", "mul", "id"},
			accepted: true,
		},
		{
			caption:  "a dangling operator",
			tokens:   []string{"id", "add"},
			accepted: false,
		},
		{
			caption:  "an empty input",
			tokens:   nil,
			accepted: false,
		},
		{
			caption:  "an unbalanced parenthesis",
			tokens:   []string{"lp", "id"},
			accepted: false,
		},
	}

	for level := 0; level <= 2; level++ {
		cgram := compileGrammar(t, exprGrammar, grammar.CompressionLevel(level))
		for _, tt := range tests {
			t.Run(tt.caption, func(t *testing.T) {
				toks := newTestTokenStream(t, cgram, tt.tokens)
				p, err := NewParser(toks, NewGrammar(cgram))
				if err != nil {
					t.Fatal(err)
				}
				err = p.Parse()
				if err != nil {
					t.Fatal(err)
				}
				if p.Accepted() != tt.accepted {
					t.Fatalf("unexpected result; want: %v, got: %v", tt.accepted, p.Accepted())
				}
				if !tt.accepted {
					synErrs := p.SyntaxErrors()
					if len(synErrs) != 1 {
						t.Fatalf("a rejected input must record one syntax error; got: %v", len(synErrs))
					}
					if len(synErrs[0].ExpectedTerminals) == 0 {
						t.Fatal("a syntax error must list the expected terminals")
					}
				}
			})
		}
	}
}

func TestLLParser_Parse(t *testing.T) {
	cgram := compileGrammar(t, `
s -> a s | b ;
`)
	if cgram.Predictive == nil {
		t.Fatal("the grammar must produce a predictive table")
	}

	tests := []struct {
		caption  string
		tokens   []string
		accepted bool
	}{
		{
			caption:  "the shortest sentence",
			tokens:   []string{"b"},
			accepted: true,
		},
		{
			caption:  "one recursion step",
			tokens:   []string{"a", "b"},
			accepted: true,
		},
		{
			caption:  "several recursion steps",
			tokens:   []string{"a", "a", "a", "b"},
			accepted: true,
		},
		{
			caption:  "an empty input",
			tokens:   nil,
			accepted: false,
		},
		{
			caption:  "a truncated sentence",
			tokens:   []string{"a"},
			accepted: false,
		},
		{
			caption:  "trailing input",
			tokens:   []string{"b", "a"},
			accepted: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			toks := newTestTokenStream(t, cgram, tt.tokens)
			p, err := NewLLParser(toks, cgram)
			if err != nil {
				t.Fatal(err)
			}
			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}
			if p.Accepted() != tt.accepted {
				t.Fatalf("unexpected result; want: %v, got: %v", tt.accepted, p.Accepted())
			}
			if !tt.accepted && len(p.SyntaxErrors()) != 1 {
				t.Fatalf("a rejected input must record one syntax error; got: %v", len(p.SyntaxErrors()))
			}
		})
	}
}

func TestLLParser_epsilonProductions(t *testing.T) {
	cgram := compileGrammar(t, `
s -> a o b ;
o -> c
  | ;
`)

	for _, tokens := range [][]string{
		{"a", "b"},
		{"a", "c", "b"},
	} {
		toks := newTestTokenStream(t, cgram, tokens)
		p, err := NewLLParser(toks, cgram)
		if err != nil {
			t.Fatal(err)
		}
		err = p.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if !p.Accepted() {
			t.Fatalf("the input %v must be accepted", tokens)
		}
	}
}

func TestNewLLParser_rejectsNonLL1Grammars(t *testing.T) {
	cgram := compileGrammar(t, exprGrammar)
	if cgram.Predictive != nil {
		t.Fatal("the left-recursive grammar must not produce a predictive table")
	}
	toks := &testTokenStream{}
	if _, err := NewLLParser(toks, cgram); err == nil {
		t.Fatal("a grammar without a predictive part must be rejected")
	}
}

func TestParser_agreesWithLLParserOnAnLL1Grammar(t *testing.T) {
	cgram := compileGrammar(t, `
s -> a s | b ;
`)

	inputs := [][]string{
		nil,
		{"b"},
		{"a"},
		{"a", "b"},
		{"b", "a"},
		{"a", "a", "b"},
	}
	for _, tokens := range inputs {
		lr, err := NewParser(newTestTokenStream(t, cgram, tokens), NewGrammar(cgram))
		if err != nil {
			t.Fatal(err)
		}
		if err := lr.Parse(); err != nil {
			t.Fatal(err)
		}
		ll, err := NewLLParser(newTestTokenStream(t, cgram, tokens), cgram)
		if err != nil {
			t.Fatal(err)
		}
		if err := ll.Parse(); err != nil {
			t.Fatal(err)
		}
		if lr.Accepted() != ll.Accepted() {
			t.Fatalf("the drivers disagree on %v; LALR: %v, LL: %v", tokens, lr.Accepted(), ll.Accepted())
		}
	}
}
