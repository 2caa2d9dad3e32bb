package dfa

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/mobiusgate/falcata/lexical/nfa"
)

type statePair struct {
	p StateID
	q StateID
}

// newStatePair keeps the lower-numbered state first so a pair has one
// canonical key.
func newStatePair(p, q StateID) statePair {
	if p > q {
		p, q = q, p
	}
	return statePair{p: p, q: q}
}

// Minimize collapses equivalent states with the table-filling algorithm and
// union-find partitioning, producing a fresh DFA. Accepting states that carry
// different token names are never merged, even when they are otherwise
// indistinguishable, so minimization cannot change the token classification.
func Minimize(d *DFA) (*DFA, error) {
	states := d.States()
	if len(states) == 0 {
		return nil, fmt.Errorf("a DFA must have at least one state")
	}

	marked := map[statePair]bool{}
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			p := states[i]
			q := states[j]
			distinguishable := p.accepting != q.accepting
			if p.accepting && q.accepting && p.tokenName != q.tokenName {
				distinguishable = true
			}
			marked[newStatePair(p.id, q.id)] = distinguishable
		}
	}

	for {
		changed := false
		for pair, m := range marked {
			if m {
				continue
			}
			p := d.State(pair.p)
			q := d.State(pair.q)
			for _, c := range d.alphabet {
				pNext, pOK := p.Transition(c)
				qNext, qOK := q.Transition(c)
				if !pOK && !qOK {
					continue
				}
				if pOK != qOK {
					marked[pair] = true
					changed = true
					break
				}
				if pNext == qNext {
					continue
				}
				if marked[newStatePair(pNext, qNext)] {
					marked[pair] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	parent := make([]StateID, len(states))
	for i := range parent {
		parent[i] = StateID(i)
	}
	var find func(id StateID) StateID
	find = func(id StateID) StateID {
		if parent[id] == id {
			return id
		}
		parent[id] = find(parent[id])
		return parent[id]
	}
	union := func(p, q StateID) {
		pRoot := find(p)
		qRoot := find(q)
		if pRoot != qRoot {
			parent[qRoot] = pRoot
		}
	}
	for pair, m := range marked {
		if !m {
			union(pair.p, pair.q)
		}
	}

	// One new state per equivalence class, numbered by each class's
	// lowest-numbered member to keep the result deterministic.
	classMembers := map[StateID][]StateID{}
	for _, s := range states {
		root := find(s.id)
		classMembers[root] = append(classMembers[root], s.id)
	}
	roots := make([]StateID, 0, len(classMembers))
	for root, members := range classMembers {
		sort.Slice(members, func(i, j int) bool {
			return members[i] < members[j]
		})
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		return classMembers[roots[i]][0] < classMembers[roots[j]][0]
	})

	min := &DFA{
		alphabet: d.alphabet,
	}
	oldToNew := make([]StateID, len(states))
	for _, root := range roots {
		members := classMembers[root]
		merged := treeset.NewWithIntComparator()
		for _, m := range members {
			for _, id := range d.State(m).nfaStates {
				merged.Add(id)
			}
		}
		nfaStates := setMembers(merged)

		s := &State{
			id:          StateID(len(min.states)),
			nfaStates:   nfaStates,
			fingerprint: fingerprintOf(nfaStates),
			priority:    nfa.PriorityNil,
			transitions: map[rune]StateID{},
		}
		for _, m := range members {
			old := d.State(m)
			if !old.accepting {
				continue
			}
			if !s.accepting || old.priority < s.priority {
				s.accepting = true
				s.tokenName = old.tokenName
				s.priority = old.priority
			}
		}
		min.states = append(min.states, s)
		for _, m := range members {
			oldToNew[m] = s.id
		}
	}

	// Any member works as the transition source; unmarked pairs are
	// transition-equivalent by construction.
	for _, root := range roots {
		members := classMembers[root]
		rep := d.State(members[0])
		newState := min.states[oldToNew[rep.id]]
		for _, c := range d.alphabet {
			next, ok := rep.Transition(c)
			if !ok {
				continue
			}
			newState.transitions[c] = oldToNew[next]
		}
	}

	min.InitialState = oldToNew[d.InitialState]

	return min, nil
}
