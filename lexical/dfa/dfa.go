package dfa

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/mobiusgate/falcata/lexical/nfa"
)

type StateID int

const StateIDNil = StateID(-1)

func (id StateID) Int() int {
	return int(id)
}

// State is identified by the set of NFA states it represents. Two states with
// the same NFA-state set are the same state; subset construction relies on
// that to deduplicate.
type State struct {
	id          StateID
	nfaStates   []int
	fingerprint string
	accepting   bool
	tokenName   string
	priority    int
	transitions map[rune]StateID
}

func (s *State) ID() StateID {
	return s.id
}

func (s *State) NFAStates() []int {
	return s.nfaStates
}

func (s *State) Accepting() bool {
	return s.accepting
}

func (s *State) TokenName() string {
	return s.tokenName
}

func (s *State) Priority() int {
	return s.priority
}

func (s *State) Transition(c rune) (StateID, bool) {
	next, ok := s.transitions[c]
	return next, ok
}

type DFA struct {
	InitialState StateID
	states       []*State
	alphabet     []rune
}

func (d *DFA) States() []*State {
	return d.states
}

func (d *DFA) State(id StateID) *State {
	return d.states[id]
}

func (d *DFA) Alphabet() []rune {
	return d.alphabet
}

type stateSignature struct {
	NFAStates []int
}

func fingerprintOf(nfaStates []int) string {
	return fmt.Sprintf("%x", structhash.Sha1(stateSignature{
		NFAStates: nfaStates,
	}, 1))
}

// Convert runs the subset construction over the combined NFA. The alphabet is
// caller-supplied and enumerated in the passed order, which fixes the
// discovery order of the DFA states. Alphabet characters no pattern uses
// simply yield no transitions.
func Convert(arena *nfa.Arena, n *nfa.NFA, alphabet []rune) (*DFA, error) {
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("an alphabet must not be empty")
	}
	{
		seen := map[rune]struct{}{}
		for _, c := range alphabet {
			if _, ok := seen[c]; ok {
				return nil, fmt.Errorf("an alphabet must not contain duplicates; duplicated: %q", c)
			}
			seen[c] = struct{}{}
		}
	}

	d := &DFA{
		alphabet: alphabet,
	}

	knownStates := map[string]StateID{}
	var unmarked []StateID

	appendState := func(set *treeset.Set) StateID {
		members := setMembers(set)
		state := &State{
			id:          StateID(len(d.states)),
			nfaStates:   members,
			fingerprint: fingerprintOf(members),
			priority:    nfa.PriorityNil,
			transitions: map[rune]StateID{},
		}
		d.states = append(d.states, state)
		knownStates[state.fingerprint] = state.id
		unmarked = append(unmarked, state.id)
		return state.id
	}

	{
		initial := treeset.NewWithIntComparator(n.Start.Int())
		epsilonClosure(arena, initial)
		d.InitialState = appendState(initial)
	}

	for len(unmarked) > 0 {
		sID := unmarked[0]
		unmarked = unmarked[1:]
		s := d.states[sID]

		for _, c := range alphabet {
			moved := move(arena, s.nfaStates, c)
			if moved.Empty() {
				continue
			}
			epsilonClosure(arena, moved)

			fp := fingerprintOf(setMembers(moved))
			next, known := knownStates[fp]
			if !known {
				next = appendState(moved)
			}
			s.transitions[c] = next
		}
	}

	for _, s := range d.states {
		markAccepting(arena, s)
	}

	return d, nil
}

// move collects the direct c-successors of every NFA state in the set.
func move(arena *nfa.Arena, nfaStates []int, c rune) *treeset.Set {
	moved := treeset.NewWithIntComparator()
	for _, id := range nfaStates {
		arena.State(nfa.StateID(id)).EachTransition(func(epsilon bool, char rune, to nfa.StateID) {
			if epsilon || char != c {
				return
			}
			moved.Add(to.Int())
		})
	}
	return moved
}

// epsilonClosure extends the set in place with every state reachable through
// ε-edges alone.
func epsilonClosure(arena *nfa.Arena, set *treeset.Set) {
	stack := setMembers(set)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		arena.State(nfa.StateID(id)).EachTransition(func(epsilon bool, char rune, to nfa.StateID) {
			if !epsilon || set.Contains(to.Int()) {
				return
			}
			set.Add(to.Int())
			stack = append(stack, to.Int())
		})
	}
}

// markAccepting makes a DFA state accepting when its NFA-state set contains an
// accepting NFA state. The token of the lowest-priority-number state wins;
// on a tie the earliest member in set order wins.
func markAccepting(arena *nfa.Arena, s *State) {
	for _, id := range s.nfaStates {
		ns := arena.State(nfa.StateID(id))
		if !ns.Accepting() {
			continue
		}
		if !s.accepting || ns.Priority() < s.priority {
			s.accepting = true
			s.tokenName = ns.TokenName()
			s.priority = ns.Priority()
		}
	}
}

func setMembers(set *treeset.Set) []int {
	vs := set.Values()
	members := make([]int, len(vs))
	for i, v := range vs {
		members[i] = v.(int)
	}
	return members
}
