package nfa

import (
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/mobiusgate/falcata/lexical/regex"
)

type StateID int

const StateIDNil = StateID(-1)

func (id StateID) Int() int {
	return int(id)
}

// PriorityNil marks a state that accepts nothing. Real priorities are
// non-negative and lower values take precedence.
const PriorityNil = -1

// A transition label is either a single input character or ε. ε is an
// explicit marker, not a reserved character.
type label struct {
	epsilon bool
	char    rune
}

type transition struct {
	label label
	to    StateID
}

type State struct {
	id          StateID
	transitions []transition
	accepting   bool
	tokenName   string
	priority    int
}

func (s *State) ID() StateID {
	return s.id
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

// EachTransition calls f for every outgoing transition of s. The epsilon
// argument is true for ε-edges, in which case char is meaningless.
func (s *State) EachTransition(f func(epsilon bool, char rune, to StateID)) {
	for _, t := range s.transitions {
		f(t.label.epsilon, t.label.char, t.to)
	}
}

// Arena owns every state of one lexer build. States reference each other by
// ID, so cyclic constructs like `*` and `+` need no cyclic ownership.
type Arena struct {
	states []*State
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) newState() StateID {
	id := StateID(len(a.states))
	a.states = append(a.states, &State{
		id:       id,
		priority: PriorityNil,
	})
	return id
}

func (a *Arena) State(id StateID) *State {
	return a.states[id]
}

func (a *Arena) StateCount() int {
	return len(a.states)
}

func (a *Arena) addTransition(from StateID, c rune, to StateID) {
	s := a.states[from]
	s.transitions = append(s.transitions, transition{
		label: label{char: c},
		to:    to,
	})
}

func (a *Arena) addEpsilon(from, to StateID) {
	s := a.states[from]
	s.transitions = append(s.transitions, transition{
		label: label{epsilon: true},
		to:    to,
	})
}

func (a *Arena) markAccepting(id StateID, tokenName string, priority int) {
	s := a.states[id]
	s.accepting = true
	s.tokenName = tokenName
	s.priority = priority
}

// NFA designates a sub-graph of an arena by its start state. End is the
// unique accepting state of a single-pattern NFA and StateIDNil after union.
type NFA struct {
	Start StateID
	End   StateID
}

type fragment struct {
	start StateID
	end   StateID
}

// FromPostfix runs the Thompson construction over a postfix pattern and marks
// the resulting end state as accepting tokenName with the passed priority.
// A leftover parenthesis, dangling operands, or operand-starved operators mean
// the original pattern was malformed (typically unbalanced parentheses).
func FromPostfix(arena *Arena, postfix string, tokenName string, priority int) (*NFA, error) {
	if postfix == "" {
		return nil, fmt.Errorf("a pattern must not be empty")
	}

	frags := arraystack.New()
	pop := func() (fragment, bool) {
		v, ok := frags.Pop()
		if !ok {
			return fragment{}, false
		}
		return v.(fragment), true
	}

	for i, c := range postfix {
		if c == '(' || c == ')' {
			return nil, fmt.Errorf("malformed pattern: unbalanced parentheses at postfix position %v", i)
		}
		if !regex.IsOperator(c) {
			start := arena.newState()
			end := arena.newState()
			arena.addTransition(start, c, end)
			frags.Push(fragment{start: start, end: end})
			continue
		}

		switch c {
		case regex.ConcatSentinel:
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return nil, fmt.Errorf("malformed pattern: concatenation lacks operands at postfix position %v", i)
			}
			arena.addEpsilon(a.end, b.start)
			frags.Push(fragment{start: a.start, end: b.end})
		case '|':
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return nil, fmt.Errorf("malformed pattern: alternation lacks operands at postfix position %v", i)
			}
			start := arena.newState()
			end := arena.newState()
			arena.addEpsilon(start, a.start)
			arena.addEpsilon(start, b.start)
			arena.addEpsilon(a.end, end)
			arena.addEpsilon(b.end, end)
			frags.Push(fragment{start: start, end: end})
		case '*':
			a, ok := pop()
			if !ok {
				return nil, fmt.Errorf("malformed pattern: %q lacks an operand at postfix position %v", c, i)
			}
			start := arena.newState()
			end := arena.newState()
			arena.addEpsilon(start, a.start)
			arena.addEpsilon(start, end)
			arena.addEpsilon(a.end, a.start)
			arena.addEpsilon(a.end, end)
			frags.Push(fragment{start: start, end: end})
		case '+':
			a, ok := pop()
			if !ok {
				return nil, fmt.Errorf("malformed pattern: %q lacks an operand at postfix position %v", c, i)
			}
			start := arena.newState()
			end := arena.newState()
			arena.addEpsilon(start, a.start)
			arena.addEpsilon(a.end, a.start)
			arena.addEpsilon(a.end, end)
			frags.Push(fragment{start: start, end: end})
		case '?':
			a, ok := pop()
			if !ok {
				return nil, fmt.Errorf("malformed pattern: %q lacks an operand at postfix position %v", c, i)
			}
			start := arena.newState()
			end := arena.newState()
			arena.addEpsilon(start, a.start)
			arena.addEpsilon(start, end)
			arena.addEpsilon(a.end, end)
			frags.Push(fragment{start: start, end: end})
		}
	}

	final, ok := pop()
	if !ok {
		return nil, fmt.Errorf("malformed pattern: no operand remains")
	}
	if !frags.Empty() {
		return nil, fmt.Errorf("malformed pattern: %v operands remain after construction (unbalanced parentheses?)", frags.Size()+1)
	}

	arena.markAccepting(final.end, tokenName, priority)

	return &NFA{
		Start: final.start,
		End:   final.end,
	}, nil
}

// Union connects a fresh start state to every pattern's start state with an
// ε-edge. Each pattern's end state keeps its own token name and priority, so
// the combined NFA has no unique end state.
func Union(arena *Arena, nfas []*NFA) (*NFA, error) {
	if len(nfas) == 0 {
		return nil, fmt.Errorf("a lexer needs at least one pattern")
	}

	start := arena.newState()
	for _, n := range nfas {
		arena.addEpsilon(start, n.Start)
	}

	return &NFA{
		Start: start,
		End:   StateIDNil,
	}, nil
}
