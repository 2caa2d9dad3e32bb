package grammar

import (
	"testing"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

func genTable(t *testing.T, gram *Grammar) (*ParsingTable, *lrTableBuilder) {
	t.Helper()
	_, lalr1 := genAutomatons(t, gram)
	r := gram.symbolTable.Reader()
	b := &lrTableBuilder{
		automaton:    lalr1,
		prods:        gram.productionSet,
		termCount:    r.TerminalCount(),
		nonTermCount: r.NonTerminalCount(),
		symTab:       r,
	}
	tab, err := b.build()
	if err != nil {
		t.Fatal(err)
	}
	return tab, b
}

func TestLRTableBuilder_build(t *testing.T) {
	gram := genGrammar(t, `
e -> e add t | t ;
t -> t mul f | f ;
f -> lp e rp | id ;
`)
	tab, b := genTable(t, gram)

	if len(b.conflicts) > 0 {
		t.Fatalf("the expression grammar must build without conflicts; got: %v", len(b.conflicts))
	}

	// Exactly one state accepts, and only on <eof>.
	var acceptCount int
	for state := 0; state < tab.stateCount; state++ {
		for term := 1; term < tab.terminalCount; term++ {
			ty, _, _ := tab.getAction(stateNum(state), symbol.SymbolNum(term))
			if ty == ActionTypeAccept {
				acceptCount++
				if symbol.SymbolNum(term) != symbol.SymbolEOF.Num() {
					t.Fatalf("an accept entry appears outside the <eof> column; state: %v, terminal: %v", state, term)
				}
			}
		}
	}
	if acceptCount != 1 {
		t.Fatalf("unexpected accept entry count; want: 1, got: %v", acceptCount)
	}

	// State 0 must shift on the terminals FIRST(e) contains and hold GOTO
	// entries for the non-terminals.
	r := gram.symbolTable.Reader()
	for _, name := range []string{"lp", "id"} {
		sym, _ := r.ToSymbol(name)
		ty, _, _ := tab.getAction(tab.InitialState, sym.Num())
		if ty != ActionTypeShift {
			t.Fatalf("state 0 must shift on %v; got: %v", name, ty)
		}
	}
	for _, name := range []string{"e", "t", "f"} {
		sym, _ := r.ToSymbol(name)
		ty, _ := tab.getGoTo(tab.InitialState, sym.Num())
		if ty != GoToTypeRegistered {
			t.Fatalf("state 0 must have a GOTO entry on %v", name)
		}
	}
}

func TestLRTableBuilder_shiftReduceConflicts(t *testing.T) {
	// The ambiguous grammar S → S S | a produces shift/reduce conflicts;
	// the shift, written first, stays in the cell.
	gram := genGrammar(t, `
s -> s s | a ;
`)
	tab, b := genTable(t, gram)

	var srCount int
	for _, con := range b.conflicts {
		c, ok := con.(*shiftReduceConflict)
		if !ok {
			t.Fatalf("unexpected conflict kind: %T", con)
		}
		srCount++
		ty, _, _ := tab.getAction(c.state, c.sym.Num())
		if ty != ActionTypeShift {
			t.Fatalf("the first writer must win; state: %v, got: %v", c.state, ty)
		}
	}
	if srCount == 0 {
		t.Fatal("the ambiguous grammar must produce shift/reduce conflicts")
	}
}

func TestLRTableBuilder_mergeInducedReduceReduceConflicts(t *testing.T) {
	// The grammar is LR(1) but not LALR(1): merging the states that tell
	// the two reductions apart produces reduce/reduce conflicts.
	gram := genGrammar(t, `
s -> a x d | a y e | b x e | b y d ;
x -> c ;
y -> c ;
`)
	tab, b := genTable(t, gram)

	var rrCount int
	for _, con := range b.conflicts {
		c, ok := con.(*reduceReduceConflict)
		if !ok {
			continue
		}
		rrCount++
		ty, _, prod := tab.getAction(c.state, c.sym.Num())
		if ty != ActionTypeReduce {
			t.Fatalf("a conflicted cell must keep its first reduce entry; got: %v", ty)
		}
		if prod != c.prodNum1 {
			t.Fatalf("the first writer must win; want: %v, got: %v", c.prodNum1, prod)
		}
	}
	if rrCount == 0 {
		t.Fatal("the merge must produce reduce/reduce conflicts")
	}
}

func TestLRTableBuilder_genReport(t *testing.T) {
	gram := genGrammar(t, `
s -> s s | a ;
`)
	tab, b := genTable(t, gram)

	report, err := b.genReport(tab, gram)
	if err != nil {
		t.Fatal(err)
	}

	var reportedSR int
	var adopted int
	for _, s := range report.States {
		reportedSR += len(s.SRConflict)
		for _, c := range s.SRConflict {
			if c.AdoptedState != nil || c.AdoptedProduction != nil {
				adopted++
			}
		}
	}
	if reportedSR != len(b.conflicts) {
		t.Fatalf("the report must carry every conflict; want: %v, got: %v", len(b.conflicts), reportedSR)
	}
	if adopted != reportedSR {
		t.Fatal("every conflict must record its adopted entry")
	}

	var acceptStates int
	for _, s := range report.States {
		if s.Accept {
			acceptStates++
		}
	}
	if acceptStates != 1 {
		t.Fatalf("exactly one state must accept; got: %v", acceptStates)
	}
}
