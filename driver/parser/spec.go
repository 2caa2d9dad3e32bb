package parser

import spec "github.com/mobiusgate/falcata/spec/grammar"

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.Syntactic.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.Syntactic.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	return lookupTable(g.g.Syntactic.Action, g.g.Syntactic.CompressionLevel, state, terminal)
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	return lookupTable(g.g.Syntactic.GoTo, g.g.Syntactic.CompressionLevel, state, lhs)
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.Syntactic.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.Syntactic.TerminalCount
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.Syntactic.LHSSymbols[prod]
}

func (g *grammarImpl) EOF() int {
	return g.g.Syntactic.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.Syntactic.Terminals[terminal]
}

// lookupTable reads a cell of a table compressed at any of the three levels
// the compiler can emit.
func lookupTable(tab *spec.CompressedTable, level int, row, col int) int {
	switch level {
	case 2:
		entries := tab.Entries
		rowNum := entries.RowNums[row]
		rd := entries.UniqueEntries
		d := rd.RowDisplacement[rowNum]
		if rd.Bounds[d+col] != rowNum {
			return rd.EmptyValue
		}
		return rd.Entries[d+col]
	case 1:
		entries := tab.Entries
		return entries.UncompressedUniqueEntries[entries.RowNums[row]*entries.OriginalColCount+col]
	}
	return tab.UncompressedEntries[row*tab.ColCount+col]
}
