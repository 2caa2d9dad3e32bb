package lexical

import (
	"fmt"
	"io"
	"sort"

	"github.com/mobiusgate/falcata/lexical/dfa"
	"github.com/mobiusgate/falcata/lexical/nfa"
	"github.com/mobiusgate/falcata/lexical/regex"
	spec "github.com/mobiusgate/falcata/spec/lexer"
)

// CompileError describes the rule a compilation failure belongs to.
type CompileError struct {
	TokenName string
	Pattern   string
	Row       int
	Cause     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: %v: %v", e.Row, e.TokenName, e.Cause)
}

type compilerConfig struct {
	alphabet       []rune
	strictAlphabet bool
}

type CompilerOption func(config *compilerConfig) error

// Alphabet fixes the input alphabet of the generated tokenizer instead of
// inferring it from the patterns' literals. The column order of the emitted
// transition table follows the passed order.
func Alphabet(chars []rune) CompilerOption {
	return func(config *compilerConfig) error {
		if len(chars) == 0 {
			return fmt.Errorf("an alphabet must not be empty")
		}
		config.alphabet = chars
		return nil
	}
}

// StrictAlphabet makes a pattern literal outside the caller-supplied alphabet
// a compile error. Without it such literals merely produce no transitions.
func StrictAlphabet() CompilerOption {
	return func(config *compilerConfig) error {
		config.strictAlphabet = true
		return nil
	}
}

// Compile runs the whole lexer pipeline over a rule source: patterns become
// NFAs via postfix form, the NFAs are united, the union is determinized and
// minimized, and the minimal DFA is laid out as a LexerDefinition. Rule-level
// failures come back in the third return value with the error summarizing.
func Compile(src io.Reader, opts ...CompilerOption) (*spec.LexerDefinition, error, []*CompileError) {
	config := &compilerConfig{}
	for _, opt := range opts {
		err := opt(config)
		if err != nil {
			return nil, err, nil
		}
	}
	if config.strictAlphabet && config.alphabet == nil {
		return nil, fmt.Errorf("the strict alphabet mode needs a caller-supplied alphabet"), nil
	}

	entries, err := ParseEntries(src)
	if err != nil {
		return nil, err, nil
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("a lexer needs at least one entry"), nil
	}

	var cErrs []*CompileError

	arena := nfa.NewArena()
	var nfas []*nfa.NFA
	literals := map[rune]struct{}{}
	for i, e := range entries {
		// A rule appearing later outranks the rules before it.
		priority := len(entries) - i - 1

		postfix, err := regex.ToPostfix(e.Pattern)
		if err != nil {
			cErrs = append(cErrs, &CompileError{
				TokenName: e.TokenName,
				Pattern:   e.Pattern,
				Row:       e.Row,
				Cause:     err,
			})
			continue
		}
		for _, c := range postfix {
			if !regex.IsOperator(c) {
				literals[c] = struct{}{}
			}
		}

		n, err := nfa.FromPostfix(arena, postfix, e.TokenName, priority)
		if err != nil {
			cErrs = append(cErrs, &CompileError{
				TokenName: e.TokenName,
				Pattern:   e.Pattern,
				Row:       e.Row,
				Cause:     err,
			})
			continue
		}
		nfas = append(nfas, n)
	}

	alphabet := config.alphabet
	if alphabet == nil {
		alphabet = make([]rune, 0, len(literals))
		for c := range literals {
			alphabet = append(alphabet, c)
		}
		sort.Slice(alphabet, func(i, j int) bool {
			return alphabet[i] < alphabet[j]
		})
	} else if config.strictAlphabet {
		known := map[rune]struct{}{}
		for _, c := range alphabet {
			known[c] = struct{}{}
		}
		for _, e := range entries {
			postfix, err := regex.ToPostfix(e.Pattern)
			if err != nil {
				continue
			}
			for _, c := range postfix {
				if regex.IsOperator(c) {
					continue
				}
				if _, ok := known[c]; !ok {
					cErrs = append(cErrs, &CompileError{
						TokenName: e.TokenName,
						Pattern:   e.Pattern,
						Row:       e.Row,
						Cause:     fmt.Errorf("a pattern literal is outside the alphabet: %q", c),
					})
				}
			}
		}
	}

	if len(cErrs) > 0 {
		return nil, fmt.Errorf("the lexical specification contains %v errors", len(cErrs)), cErrs
	}

	combined, err := nfa.Union(arena, nfas)
	if err != nil {
		return nil, err, nil
	}

	d, err := dfa.Convert(arena, combined, alphabet)
	if err != nil {
		return nil, err, nil
	}
	min, err := dfa.Minimize(d)
	if err != nil {
		return nil, err, nil
	}

	return GenLexerDefinition(min), nil, nil
}

// GenLexerDefinition lays a DFA out as the dense transition-table artifact.
func GenLexerDefinition(d *dfa.DFA) *spec.LexerDefinition {
	alphabet := d.Alphabet()
	alphabetStrs := make([]string, len(alphabet))
	for i, c := range alphabet {
		alphabetStrs[i] = string(c)
	}

	states := d.States()
	transitions := make([][]int, len(states))
	isFinal := make([]bool, len(states))
	tokenTypeNames := make([]*string, len(states))
	for i, s := range states {
		row := make([]int, len(alphabet))
		for j, c := range alphabet {
			next, ok := s.Transition(c)
			if ok {
				row[j] = next.Int()
			} else {
				row[j] = spec.StateNil
			}
		}
		transitions[i] = row
		if s.Accepting() {
			isFinal[i] = true
			name := s.TokenName()
			tokenTypeNames[i] = &name
		}
	}

	return &spec.LexerDefinition{
		Alphabet:       alphabetStrs,
		StartState:     d.InitialState.Int(),
		Transitions:    transitions,
		IsFinal:        isFinal,
		TokenTypeNames: tokenTypeNames,
	}
}
