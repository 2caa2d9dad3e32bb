package grammar

import (
	"fmt"

	"github.com/mobiusgate/falcata/compressor"
	"github.com/mobiusgate/falcata/grammar/symbol"
	spec "github.com/mobiusgate/falcata/spec/grammar"
)

type compileConfig struct {
	isReportingEnabled bool
	compressionLevel   int
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// CompressionLevel chooses how the ACTION/GOTO matrices are stored in the
// artifact: 0 is dense, 1 deduplicates rows, and 2 additionally packs the
// unique rows into a displacement table.
func CompressionLevel(level int) CompileOption {
	return func(config *compileConfig) {
		config.compressionLevel = level
	}
}

const compressionLevelMax = 2

// Compile turns a Grammar into its compiled artifact. The syntactic part is
// always built; the predictive part is included only when the grammar is
// LL(1). LALR conflicts never abort the build: they are reported so the
// caller can decide whether they are fatal.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		compressionLevel: compressionLevelMax,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.compressionLevel < 0 || config.compressionLevel > compressionLevelMax {
		return nil, nil, fmt.Errorf("a compression level must be between 0 and %v; passed: %v", compressionLevelMax, config.compressionLevel)
	}

	symTabReader := gram.symbolTable.Reader()

	terms, err := symTabReader.TerminalTexts()
	if err != nil {
		return nil, nil, err
	}
	nonTerms, err := symTabReader.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}
	termCount := len(terms)
	nonTermCount := len(nonTerms)

	firstSet, err := genFirstSet(gram.productionSet, termCount)
	if err != nil {
		return nil, nil, err
	}
	followSet, err := genFollowSet(gram.productionSet, firstSet)
	if err != nil {
		return nil, nil, err
	}

	llBuilder := &ll1TableBuilder{
		prods:        gram.productionSet,
		first:        firstSet,
		follow:       followSet,
		termCount:    termCount,
		nonTermCount: nonTermCount,
	}
	llTab, err := llBuilder.build()
	if err != nil {
		return nil, nil, err
	}

	lr1, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, firstSet)
	if err != nil {
		return nil, nil, err
	}
	lalr1, err := genLALR1Automaton(lr1, gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	b := &lrTableBuilder{
		automaton:    lalr1,
		prods:        gram.productionSet,
		termCount:    termCount,
		nonTermCount: nonTermCount,
		symTab:       symTabReader,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range llBuilder.conflicts {
			report.LLConflicts = append(report.LLConflicts, &spec.LLConflict{
				NonTerminal:       c.nonTermSym.Num().Int(),
				Symbol:            c.termSym.Num().Int(),
				Production1:       c.prodNum1.Int(),
				Production2:       c.prodNum2.Int(),
				AdoptedProduction: llTab.find(c.nonTermSym, c.termSym).Int(),
			})
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		ty, state, prod := e.describe()
		switch ty {
		case ActionTypeShift:
			action[i] = state.Int() * -1
		case ActionTypeReduce:
			action[i] = prod.Int()
		case ActionTypeAccept:
			// The artifact encodes accept as a reduction of the augmented
			// start production; the driver recognizes it by the production's
			// LHS.
			action[i] = productionNumStart.Int()
		}
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	actionTab, err := compressTable(action, termCount, config.compressionLevel)
	if err != nil {
		return nil, nil, err
	}
	goToTab, err := compressTable(goTo, nonTermCount, config.compressionLevel)
	if err != nil {
		return nil, nil, err
	}

	lhsSyms := make([]int, gram.productionSet.count()+1)
	altSymCounts := make([]int, gram.productionSet.count()+1)
	for _, p := range gram.productionSet.all() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = len(p.rhs)
	}

	var predictive *spec.PredictiveSpec
	if len(llBuilder.conflicts) == 0 {
		llEntries := make([]int, len(llTab.entries))
		for i, prod := range llTab.entries {
			llEntries[i] = prod.Int()
		}
		rhsSymbols := make([][]int, gram.productionSet.count()+1)
		for _, p := range gram.productionSet.all() {
			rhs := make([]int, len(p.rhs))
			for i, sym := range p.rhs {
				if sym.IsTerminal() {
					rhs[i] = sym.Num().Int()
				} else {
					rhs[i] = sym.Num().Int() * -1
				}
			}
			rhsSymbols[p.num] = rhs
		}
		predictive = &spec.PredictiveSpec{
			Table:            llEntries,
			TerminalCount:    termCount,
			NonTerminalCount: nonTermCount,
			StartSymbol:      gram.startSymbol.Num().Int(),
			RHSSymbols:       rhsSymbols,
		}
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		Syntactic: &spec.SyntacticSpec{
			Action:                  actionTab,
			GoTo:                    goToTab,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           termCount,
			NonTerminals:            nonTerms,
			NonTerminalCount:        nonTermCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			CompressionLevel:        config.compressionLevel,
		},
		Predictive: predictive,
	}, report, nil
}

// CountConflicts tallies the shift/reduce and reduce/reduce diagnostics a
// report carries.
func CountConflicts(report *spec.Report) (srCount, rrCount int) {
	if report == nil {
		return 0, 0
	}
	for _, s := range report.States {
		srCount += len(s.SRConflict)
		rrCount += len(s.RRConflict)
	}
	return srCount, rrCount
}

func compressTable(entries []int, colCount int, level int) (*spec.CompressedTable, error) {
	rowCount := len(entries) / colCount
	tab := &spec.CompressedTable{
		RowCount: rowCount,
		ColCount: colCount,
	}

	if level == 0 {
		tab.UncompressedEntries = entries
		return tab, nil
	}

	orig, err := compressor.NewOriginalTable(entries, colCount)
	if err != nil {
		return nil, err
	}
	ueTab := compressor.NewUniqueEntriesTable()
	if err := ueTab.Compress(orig); err != nil {
		return nil, err
	}
	tab.Entries = &spec.UniqueEntriesTable{
		RowNums:          ueTab.RowNums,
		OriginalRowCount: ueTab.OriginalRowCount,
		OriginalColCount: ueTab.OriginalColCount,
		EmptyValue:       0,
	}

	if level == 1 {
		tab.Entries.UncompressedUniqueEntries = ueTab.UniqueEntries
		return tab, nil
	}

	rdTab := compressor.NewRowDisplacementTable(0)
	ueOrig, err := compressor.NewOriginalTable(ueTab.UniqueEntries, ueTab.OriginalColCount)
	if err != nil {
		return nil, err
	}
	if err := rdTab.Compress(ueOrig); err != nil {
		return nil, err
	}
	tab.Entries.UniqueEntries = &spec.RowDisplacementTable{
		OriginalRowCount: rdTab.OriginalRowCount,
		OriginalColCount: rdTab.OriginalColCount,
		EmptyValue:       rdTab.EmptyValue,
		Entries:          rdTab.Entries,
		Bounds:           rdTab.Bounds,
		RowDisplacement:  rdTab.RowDisplacement,
	}
	return tab, nil
}
