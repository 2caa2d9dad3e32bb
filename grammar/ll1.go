package grammar

import (
	"fmt"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

type ll1Conflict struct {
	nonTermSym symbol.Symbol
	termSym    symbol.Symbol
	prodNum1   productionNum
	prodNum2   productionNum
}

// ll1Table is the predictive table M[non-terminal, terminal] → production.
// The EOF symbol occupies an ordinary terminal column.
type ll1Table struct {
	entries          []productionNum
	terminalCount    int
	nonTerminalCount int
}

func newLL1Table(termCount, nonTermCount int) *ll1Table {
	return &ll1Table{
		entries:          make([]productionNum, nonTermCount*termCount),
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
	}
}

func (t *ll1Table) find(nonTerm symbol.Symbol, term symbol.Symbol) productionNum {
	return t.entries[nonTerm.Num().Int()*t.terminalCount+term.Num().Int()]
}

func (t *ll1Table) write(nonTerm symbol.Symbol, term symbol.Symbol, prod productionNum) {
	t.entries[nonTerm.Num().Int()*t.terminalCount+term.Num().Int()] = prod
}

type ll1TableBuilder struct {
	prods        *productionSet
	first        *firstSet
	follow       *followSet
	termCount    int
	nonTermCount int

	conflicts []*ll1Conflict
}

// build fills the predictive table. When a cell would receive a second,
// different production, the first entry stays and the collision is recorded
// as a conflict. A grammar with a non-empty conflict list is not LL(1).
func (b *ll1TableBuilder) build() (*ll1Table, error) {
	tab := newLL1Table(b.termCount, b.nonTermCount)

	for _, prod := range b.prods.all() {
		fst, nullable, err := b.first.find(prod, 0)
		if err != nil {
			return nil, err
		}

		for _, a := range fst.symbols() {
			b.writeEntry(tab, prod, a)
		}

		if nullable {
			flw, err := b.follow.find(prod.lhs)
			if err != nil {
				return nil, err
			}
			// FOLLOW carries the EOF terminal as an ordinary member, so the
			// end-of-input column fills in the same sweep.
			for _, bSym := range flw.symbols() {
				b.writeEntry(tab, prod, bSym)
			}
		}
	}

	return tab, nil
}

func (b *ll1TableBuilder) writeEntry(tab *ll1Table, prod *production, term symbol.Symbol) {
	if !term.IsTerminal() {
		return
	}
	existing := tab.find(prod.lhs, term)
	if existing != productionNumNil {
		if existing == prod.num {
			return
		}
		b.conflicts = append(b.conflicts, &ll1Conflict{
			nonTermSym: prod.lhs,
			termSym:    term,
			prodNum1:   existing,
			prodNum2:   prod.num,
		})
		return
	}
	tab.write(prod.lhs, term, prod.num)
}

func (b *ll1TableBuilder) conflictError(symTab *symbol.SymbolTableReader) error {
	if len(b.conflicts) == 0 {
		return nil
	}
	c := b.conflicts[0]
	ntText, _ := symTab.ToText(c.nonTermSym)
	tText, _ := symTab.ToText(c.termSym)
	return fmt.Errorf("%w; M[%v, %v] would hold both production %v and production %v",
		semErrLL1Conflict, ntText, tText, c.prodNum1.Int(), c.prodNum2.Int())
}
