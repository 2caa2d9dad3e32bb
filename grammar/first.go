package grammar

import (
	"fmt"
	"math/bits"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

// terminalSet is a bitset over terminal symbol numbers. The EOF terminal is
// an ordinary member (bit 1), so FOLLOW sets need no separate end-marker
// flag.
type terminalSet []uint64

func newTerminalSet(termCount int) terminalSet {
	return make(terminalSet, (termCount+63)/64)
}

func (s terminalSet) add(sym symbol.Symbol) bool {
	num := sym.Num().Int()
	word, bit := num/64, uint(num%64)
	if s[word]&(1<<bit) != 0 {
		return false
	}
	s[word] |= 1 << bit
	return true
}

func (s terminalSet) contains(sym symbol.Symbol) bool {
	num := sym.Num().Int()
	return s[num/64]&(1<<uint(num%64)) != 0
}

// merge unions t into s and reports whether s grew.
func (s terminalSet) merge(t terminalSet) bool {
	changed := false
	for i, word := range t {
		if s[i]|word != s[i] {
			s[i] |= word
			changed = true
		}
	}
	return changed
}

func (s terminalSet) count() int {
	c := 0
	for _, word := range s {
		c += bits.OnesCount64(word)
	}
	return c
}

// symbols lists the members in ascending number order. A member's number
// converts straight back to its Symbol because terminals are the positive
// half of the symbol encoding.
func (s terminalSet) symbols() []symbol.Symbol {
	var syms []symbol.Symbol
	for i, word := range s {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			syms = append(syms, symbol.Symbol(i*64+bit))
			word &= word - 1
		}
	}
	return syms
}

// firstSet holds FIRST for every non-terminal: the terminals that can begin
// a derivation from it, plus a nullability flag standing in for ε.
type firstSet struct {
	termCount int
	sets      map[symbol.Symbol]terminalSet
	nullable  map[symbol.Symbol]bool
}

// findBySymbol returns FIRST of a non-terminal and its nullability. The set
// is nil when the symbol has no productions.
func (fst *firstSet) findBySymbol(sym symbol.Symbol) (terminalSet, bool) {
	return fst.sets[sym], fst.nullable[sym]
}

// find computes FIRST of the symbol sequence prod.rhs[head:]. The returned
// flag is true when the whole suffix is nullable; a head at or beyond the end
// of the RHS means the empty sequence.
func (fst *firstSet) find(prod *production, head int) (terminalSet, bool, error) {
	result := newTerminalSet(fst.termCount)
	if head >= len(prod.rhs) {
		return result, true, nil
	}
	for _, sym := range prod.rhs[head:] {
		if sym.IsTerminal() {
			result.add(sym)
			return result, false, nil
		}

		set, nullable := fst.findBySymbol(sym)
		if set == nil {
			return nil, false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		result.merge(set)
		if !nullable {
			return result, false, nil
		}
	}
	return result, true, nil
}

// genFirstSet computes FIRST with a worklist instead of whole-grammar
// passes: when FIRST(A) grows, only the productions mentioning A on their
// RHS are reprocessed. The sets only grow over a finite terminal space, so
// the queue drains.
func genFirstSet(prods *productionSet, termCount int) (*firstSet, error) {
	fst := &firstSet{
		termCount: termCount,
		sets:      map[symbol.Symbol]terminalSet{},
		nullable:  map[symbol.Symbol]bool{},
	}
	for _, prod := range prods.all() {
		if _, ok := fst.sets[prod.lhs]; !ok {
			fst.sets[prod.lhs] = newTerminalSet(termCount)
		}
	}

	mentions := map[symbol.Symbol][]*production{}
	for _, prod := range prods.all() {
		for _, sym := range prod.rhs {
			if sym.IsNonTerminal() {
				mentions[sym] = append(mentions[sym], prod)
			}
		}
	}

	queue := append([]*production{}, prods.all()...)
	queued := map[productionID]bool{}
	for _, prod := range queue {
		queued[prod.id] = true
	}
	for len(queue) > 0 {
		prod := queue[0]
		queue = queue[1:]
		queued[prod.id] = false

		changed, err := fst.absorb(prod)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		for _, dep := range mentions[prod.lhs] {
			if queued[dep.id] {
				continue
			}
			queued[dep.id] = true
			queue = append(queue, dep)
		}
	}

	return fst, nil
}

// absorb folds FIRST of a production's RHS into FIRST of its LHS and reports
// whether the LHS entry grew. An ε-production, or an all-nullable RHS, marks
// the LHS nullable.
func (fst *firstSet) absorb(prod *production) (bool, error) {
	acc := fst.sets[prod.lhs]
	if acc == nil {
		return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", prod.lhs)
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			return acc.add(sym) || changed, nil
		}

		set, nullable := fst.findBySymbol(sym)
		if set == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.merge(set) {
			changed = true
		}
		if !nullable {
			return changed, nil
		}
	}
	if !fst.nullable[prod.lhs] {
		fst.nullable[prod.lhs] = true
		changed = true
	}
	return changed, nil
}
