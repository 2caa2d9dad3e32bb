package grammar

import (
	"fmt"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

type lalr1Automaton struct {
	initialState stateNum
	states       []*lrState
}

// genLALR1Automaton merges the canonical LR(1) collection into the LALR(1)
// automaton. States sharing a kernel collapse into one state whose items
// carry, per kernel entry, the union of the lookaheads seen across the group.
// The group containing LR(1) state 0 becomes LALR state 0, and the other
// merged states are numbered in the discovery order of their kernel groups.
// GOTO depends only on kernels, so re-targeting the LR(1) transitions through
// the merge map is well-defined.
func genLALR1Automaton(lr1 *lr1Automaton, prods *productionSet) (*lalr1Automaton, error) {
	if len(lr1.states) == 0 {
		return nil, fmt.Errorf("an LR(1) collection must have at least one state")
	}

	groups := map[kernelID][]*lrState{}
	var groupOrder []kernelID
	for _, state := range lr1.states {
		if _, ok := groups[state.kernelID]; !ok {
			groupOrder = append(groupOrder, state.kernelID)
		}
		groups[state.kernelID] = append(groups[state.kernelID], state)
	}

	lr1ToLALR := make([]stateNum, len(lr1.states))
	for lalrNum, kID := range groupOrder {
		for _, member := range groups[kID] {
			lr1ToLALR[member.num] = stateNum(lalrNum)
		}
	}

	automaton := &lalr1Automaton{
		initialState: lr1ToLALR[lr1.initialState],
	}
	for lalrNum, kID := range groupOrder {
		members := groups[kID]

		var items []*lrItem
		knownItems := map[lrItemID]struct{}{}
		var kernelItems []*lrItem
		for _, member := range members {
			for _, item := range member.items {
				if _, ok := knownItems[item.id]; ok {
					continue
				}
				knownItems[item.id] = struct{}{}
				items = append(items, item)
				if item.kernel {
					kernelItems = append(kernelItems, item)
				}
			}
		}
		sortItems(items)
		sortItems(kernelItems)

		next := map[symbol.Symbol]stateNum{}
		for sym, lr1Next := range members[0].next {
			next[sym] = lr1ToLALR[lr1Next]
		}

		automaton.states = append(automaton.states, &lrState{
			num:         stateNum(lalrNum),
			id:          genStateID(items),
			kernelID:    kID,
			items:       items,
			kernelItems: kernelItems,
			next:        next,
		})
	}

	return automaton, nil
}
