package grammar

import (
	"fmt"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

// followSet holds FOLLOW for every non-terminal. The EOF terminal sits in
// the sets like any other member, so "can end the input" needs no side flag.
type followSet struct {
	sets map[symbol.Symbol]terminalSet
}

func (flw *followSet) find(sym symbol.Symbol) (terminalSet, error) {
	set, ok := flw.sets[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return set, nil
}

// genFollowSet splits the FOLLOW constraints into a static part and a copy
// part. FIRST is already a fixed point, so every FIRST(β) contribution of a
// production B → α X β lands in a single pass; what remains are the
// FOLLOW(B) ⊆ FOLLOW(X) edges arising where β is nullable, propagated with a
// worklist until the sets stop growing.
func genFollowSet(prods *productionSet, first *firstSet) (*followSet, error) {
	flw := &followSet{
		sets: map[symbol.Symbol]terminalSet{},
	}
	var lhsOrder []symbol.Symbol
	for _, prod := range prods.all() {
		if _, ok := flw.sets[prod.lhs]; ok {
			continue
		}
		flw.sets[prod.lhs] = newTerminalSet(first.termCount)
		lhsOrder = append(lhsOrder, prod.lhs)
	}

	// The augmented start symbol is followed by the end of the input alone.
	for _, prod := range prods.all() {
		if prod.lhs.IsStart() {
			flw.sets[prod.lhs].add(symbol.SymbolEOF)
			break
		}
	}

	copyTo := map[symbol.Symbol][]symbol.Symbol{}
	for _, prod := range prods.all() {
		for i, sym := range prod.rhs {
			if !sym.IsNonTerminal() {
				continue
			}
			set, ok := flw.sets[sym]
			if !ok {
				return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
			}
			fstSeq, nullable, err := first.find(prod, i+1)
			if err != nil {
				return nil, err
			}
			set.merge(fstSeq)
			if nullable && sym != prod.lhs {
				copyTo[prod.lhs] = append(copyTo[prod.lhs], sym)
			}
		}
	}

	queue := append([]symbol.Symbol{}, lhsOrder...)
	queued := map[symbol.Symbol]bool{}
	for _, sym := range queue {
		queued[sym] = true
	}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		queued[b] = false

		for _, x := range copyTo[b] {
			if !flw.sets[x].merge(flw.sets[b]) {
				continue
			}
			if queued[x] {
				continue
			}
			queued[x] = true
			queue = append(queue, x)
		}
	}

	return flw, nil
}
