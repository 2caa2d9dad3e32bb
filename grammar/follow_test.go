package grammar

import (
	"testing"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

type followTest struct {
	lhs     string
	symbols []string
	eof     bool
}

func testFollowEntries(t *testing.T, gram *Grammar, follow *followSet, tests []followTest) {
	t.Helper()
	r := gram.symbolTable.Reader()
	for _, tt := range tests {
		lhsSym, ok := r.ToSymbol(tt.lhs)
		if !ok {
			t.Fatalf("a symbol was not found: %v", tt.lhs)
		}
		set, err := follow.find(lhsSym)
		if err != nil {
			t.Fatal(err)
		}

		// The EOF terminal is an ordinary member of a FOLLOW set.
		wantCount := len(tt.symbols)
		if tt.eof {
			wantCount++
		}
		if set.count() != wantCount || set.contains(symbol.SymbolEOF) != tt.eof {
			t.Fatalf("unexpected FOLLOW(%v); want: %v (eof: %v), got: %v symbols (eof: %v)",
				tt.lhs, tt.symbols, tt.eof, set.count(), set.contains(symbol.SymbolEOF))
		}
		for _, name := range tt.symbols {
			sym, ok := r.ToSymbol(name)
			if !ok {
				t.Fatalf("a symbol was not found: %v", name)
			}
			if !set.contains(sym) {
				t.Fatalf("FOLLOW(%v) must contain %v", tt.lhs, name)
			}
		}
	}
}

func TestGenFollowSet(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		follow  []followTest
	}{
		{
			caption: "a right-recursive grammar",
			src: `
s -> a s | b ;
`,
			follow: []followTest{
				{lhs: "s", eof: true},
			},
		},
		{
			caption: "the expression grammar",
			src: `
e -> e add t | t ;
t -> t mul f | f ;
f -> lp e rp | id ;
`,
			follow: []followTest{
				{lhs: "e", symbols: []string{"add", "rp"}, eof: true},
				{lhs: "t", symbols: []string{"add", "mul", "rp"}, eof: true},
				{lhs: "f", symbols: []string{"add", "mul", "rp"}, eof: true},
			},
		},
		{
			caption: "a nullable suffix passes the LHS's FOLLOW through",
			src: `
s -> a o b | c o ;
o -> d
  | ;
`,
			follow: []followTest{
				{lhs: "s", eof: true},
				{lhs: "o", symbols: []string{"b"}, eof: true},
			},
		},
		{
			caption: "copy edges propagate transitively",
			src: `
s -> a o ;
o -> b p ;
p -> c
  | ;
`,
			follow: []followTest{
				{lhs: "s", eof: true},
				{lhs: "o", eof: true},
				{lhs: "p", eof: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := genGrammar(t, tt.src)
			first := genFirst(t, gram)
			follow, err := genFollowSet(gram.productionSet, first)
			if err != nil {
				t.Fatal(err)
			}
			testFollowEntries(t, gram, follow, tt.follow)
		})
	}
}

func TestFollowSet_find_unknownSymbol(t *testing.T) {
	gram := genGrammar(t, `
s -> a ;
`)
	first := genFirst(t, gram)
	follow, err := genFollowSet(gram.productionSet, first)
	if err != nil {
		t.Fatal(err)
	}
	r := gram.symbolTable.Reader()
	aSym, _ := r.ToSymbol("a")
	if _, err := follow.find(aSym); err == nil {
		t.Fatal("a terminal must have no FOLLOW entry")
	}
}
