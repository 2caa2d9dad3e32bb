package grammar

import (
	"fmt"
	"sort"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

// lrState is a state of the canonical LR(1) collection, and, after merging,
// of the LALR(1) automaton. items holds the full closure sorted by item ID.
type lrState struct {
	num         stateNum
	id          stateID
	kernelID    kernelID
	items       []*lrItem
	kernelItems []*lrItem
	next        map[symbol.Symbol]stateNum
}

// reducibleItems returns the complete items of a state in a deterministic
// order: ascending production number, then ascending lookahead.
func (s *lrState) reducibleItems(prods *productionSet) ([]*lrItem, error) {
	var items []*lrItem
	for _, item := range s.items {
		if item.reducible {
			items = append(items, item)
		}
	}
	var err error
	sort.Slice(items, func(i, j int) bool {
		p, ok := prods.findByID(items[i].prod)
		if !ok {
			err = fmt.Errorf("production not found: %v", items[i].prod)
			return false
		}
		q, ok := prods.findByID(items[j].prod)
		if !ok {
			err = fmt.Errorf("production not found: %v", items[j].prod)
			return false
		}
		if p.num != q.num {
			return p.num < q.num
		}
		return items[i].lookAhead < items[j].lookAhead
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

type lr1Automaton struct {
	initialState stateNum
	states       []*lrState
}

// genLR1Automaton builds the canonical collection of LR(1) item sets. State 0
// is CLOSURE({[S' →・S, <eof>]}), and the worklist is FIFO, so state numbers
// follow discovery order.
func genLR1Automaton(prods *productionSet, augStartSym symbol.Symbol, first *firstSet) (*lr1Automaton, error) {
	if !augStartSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}

	automaton := &lr1Automaton{}

	knownStates := map[stateID]stateNum{}
	var unchecked []stateNum

	appendState := func(items []*lrItem, id stateID, kernelItems []*lrItem) stateNum {
		num := stateNum(len(automaton.states))
		automaton.states = append(automaton.states, &lrState{
			num:         num,
			id:          id,
			kernelID:    genKernelID(kernelItems),
			items:       items,
			kernelItems: kernelItems,
			next:        map[symbol.Symbol]stateNum{},
		})
		knownStates[id] = num
		unchecked = append(unchecked, num)
		return num
	}

	{
		startProds, ok := prods.findByLHS(augStartSym)
		if !ok || len(startProds) == 0 {
			return nil, fmt.Errorf("a production of the augmented start symbol was not found")
		}
		initialItem, err := newLRItem(startProds[0], 0, symbol.SymbolEOF)
		if err != nil {
			return nil, err
		}
		items, err := genLR1Closure([]*lrItem{initialItem}, prods, first)
		if err != nil {
			return nil, err
		}
		automaton.initialState = appendState(items, genStateID(items), []*lrItem{initialItem})
	}

	for len(unchecked) > 0 {
		num := unchecked[0]
		unchecked = unchecked[1:]
		state := automaton.states[num]

		for _, x := range nextSymbols(state.items) {
			kernelItems, err := genNextKernelItems(state.items, x, prods)
			if err != nil {
				return nil, err
			}
			items, err := genLR1Closure(kernelItems, prods, first)
			if err != nil {
				return nil, err
			}

			id := genStateID(items)
			nextNum, known := knownStates[id]
			if !known {
				nextNum = appendState(items, id, kernelItems)
			}
			state.next[x] = nextNum
		}
	}

	return automaton, nil
}

// nextSymbols lists the dotted symbols of a state's items in ascending symbol
// order. Enumerating them deterministically fixes the discovery order of the
// collection.
func nextSymbols(items []*lrItem) []symbol.Symbol {
	seen := map[symbol.Symbol]struct{}{}
	var syms []symbol.Symbol
	for _, item := range items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		if _, ok := seen[item.dottedSymbol]; ok {
			continue
		}
		seen[item.dottedSymbol] = struct{}{}
		syms = append(syms, item.dottedSymbol)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// genNextKernelItems computes the kernel of GOTO(I, x): every item of I with
// the dot before x, advanced by one position.
func genNextKernelItems(items []*lrItem, x symbol.Symbol, prods *productionSet) ([]*lrItem, error) {
	var kernelItems []*lrItem
	for _, item := range items {
		if item.dottedSymbol != x {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", item.prod)
		}
		moved, err := newLRItem(prod, item.dot+1, item.lookAhead)
		if err != nil {
			return nil, err
		}
		kernelItems = append(kernelItems, moved)
	}
	sortItems(kernelItems)
	return kernelItems, nil
}

// genLR1Closure computes CLOSURE(I): for every item [A → α・B β, a] with a
// non-terminal B, every production B → γ, and every terminal b in FIRST(βa),
// the closure contains [B →・γ, b].
func genLR1Closure(seedItems []*lrItem, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := map[lrItemID]struct{}{}
	unchecked := []*lrItem{}
	for _, item := range seedItems {
		if _, ok := knownItems[item.id]; ok {
			continue
		}
		items = append(items, item)
		knownItems[item.id] = struct{}{}
		unchecked = append(unchecked, item)
	}

	for len(unchecked) > 0 {
		item := unchecked[0]
		unchecked = unchecked[1:]

		if !item.dottedSymbol.IsNonTerminal() {
			continue
		}

		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", item.prod)
		}

		// FIRST(βa): when β is nullable, the item's own lookahead joins in.
		fst, nullable, err := first.find(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		if nullable {
			fst.add(item.lookAhead)
		}
		lookAheads := fst.symbols()

		ps, _ := prods.findByLHS(item.dottedSymbol)
		for _, p := range ps {
			for _, a := range lookAheads {
				newItem, err := newLRItem(p, 0, a)
				if err != nil {
					return nil, err
				}
				if _, ok := knownItems[newItem.id]; ok {
					continue
				}
				items = append(items, newItem)
				knownItems[newItem.id] = struct{}{}
				unchecked = append(unchecked, newItem)
			}
		}
	}

	sortItems(items)
	return items, nil
}
