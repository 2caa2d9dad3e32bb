package grammar

import (
	"testing"
)

func TestCompile(t *testing.T) {
	gram := genGrammar(t, `
e -> e add t | t ;
t -> t mul f | f ;
f -> lp e rp | id ;
`)

	for level := 0; level <= 2; level++ {
		cgram, report, err := Compile(gram, EnableReporting(), CompressionLevel(level))
		if err != nil {
			t.Fatal(err)
		}

		if cgram.Name != "test" {
			t.Fatalf("unexpected name; want: test, got: %v", cgram.Name)
		}
		if cgram.Syntactic.StateCount != 12 {
			t.Fatalf("unexpected state count; want: 12, got: %v", cgram.Syntactic.StateCount)
		}
		if cgram.Syntactic.CompressionLevel != level {
			t.Fatalf("unexpected compression level; want: %v, got: %v", level, cgram.Syntactic.CompressionLevel)
		}
		switch level {
		case 0:
			if cgram.Syntactic.Action.UncompressedEntries == nil || cgram.Syntactic.Action.Entries != nil {
				t.Fatal("level 0 must keep the dense layout")
			}
		case 1:
			if cgram.Syntactic.Action.Entries == nil || cgram.Syntactic.Action.Entries.UncompressedUniqueEntries == nil {
				t.Fatal("level 1 must keep the unique rows uncompressed")
			}
		case 2:
			if cgram.Syntactic.Action.Entries == nil || cgram.Syntactic.Action.Entries.UniqueEntries == nil {
				t.Fatal("level 2 must pack the unique rows into a displacement table")
			}
		}

		sr, rr := CountConflicts(report)
		if sr != 0 || rr != 0 {
			t.Fatalf("the expression grammar must build without conflicts; got: %v/%v", sr, rr)
		}

		// The left-recursive grammar is not LL(1), so the predictive part
		// is absent and the LL conflicts appear in the report.
		if cgram.Predictive != nil {
			t.Fatal("a non-LL(1) grammar must not produce a predictive table")
		}
		if len(report.LLConflicts) == 0 {
			t.Fatal("the report must carry the LL(1) conflicts")
		}
	}
}

func TestCompile_predictivePart(t *testing.T) {
	gram := genGrammar(t, `
s -> a s | b ;
`)
	cgram, report, err := Compile(gram, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.LLConflicts) > 0 {
		t.Fatalf("the grammar must be LL(1); conflicts: %v", len(report.LLConflicts))
	}
	pred := cgram.Predictive
	if pred == nil {
		t.Fatal("an LL(1) grammar must produce a predictive table")
	}
	if pred.StartSymbol == 0 {
		t.Fatal("the predictive part must name the start symbol")
	}
	if len(pred.Table) != pred.NonTerminalCount*pred.TerminalCount {
		t.Fatalf("unexpected predictive table size; want: %v, got: %v",
			pred.NonTerminalCount*pred.TerminalCount, len(pred.Table))
	}
	for prod := 1; prod < len(pred.RHSSymbols); prod++ {
		if pred.RHSSymbols[prod] == nil {
			t.Fatalf("the predictive part must carry the RHS of production %v", prod)
		}
	}
}

func TestCompile_rejectsBadCompressionLevels(t *testing.T) {
	gram := genGrammar(t, `
s -> a ;
`)
	if _, _, err := Compile(gram, CompressionLevel(3)); err == nil {
		t.Fatal("an out-of-range compression level must be rejected")
	}
	if _, _, err := Compile(gram, CompressionLevel(-1)); err == nil {
		t.Fatal("an out-of-range compression level must be rejected")
	}
}
