package lexer

import (
	"io"
	"unicode/utf8"

	spec "github.com/mobiusgate/falcata/spec/lexer"
)

// TokenNameUnknown tags the one-character tokens the lexer emits for input no
// rule matches.
const TokenNameUnknown = "UNKNOWN"

// Token represents a token.
type Token struct {
	// TokenName is the name of the lexical rule the lexeme matched.
	TokenName string

	// Lexeme is the matched byte sequence.
	Lexeme []byte

	// BytePos is the byte offset the lexeme starts at, and ByteLen is its
	// length in bytes.
	BytePos int
	ByteLen int

	// Row and Col are the position the lexeme starts at. Col is counted in
	// code points, not bytes.
	Row int
	Col int

	// When EOF is true, the token means the end of the input.
	EOF bool

	// When Invalid is true, no rule matched and the token covers exactly one
	// input character.
	Invalid bool
}

type lexerState struct {
	srcPtr int
	row    int
	col    int
}

// Lexer walks a transition table over an input with maximal munch: it runs
// the DFA as far as it can, remembers the last accepting state it passed,
// and resumes right after the emitted lexeme.
type Lexer struct {
	def      *spec.LexerDefinition
	alphabet map[rune]int
	src      []byte
	state    lexerState
}

func NewLexer(def *spec.LexerDefinition, src io.Reader) (*Lexer, error) {
	err := def.Validate()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		def:      def,
		alphabet: def.AlphabetIndexes(),
		src:      b,
	}, nil
}

// Next returns a next token.
func (l *Lexer) Next() (*Token, error) {
	start := l.state
	if start.srcPtr >= len(l.src) {
		return &Token{
			TokenName: "",
			BytePos:   start.srcPtr,
			Row:       start.row,
			Col:       start.col,
			EOF:       true,
		}, nil
	}

	state := l.def.StartState
	var accepted *lexerState
	var acceptedName string
	for l.state.srcPtr < len(l.src) {
		c, ok := l.read()
		if !ok {
			break
		}
		col, ok := l.alphabet[c]
		if !ok {
			// A character outside the alphabet halts the run as if no
			// transition existed.
			break
		}
		next := l.def.Transitions[state][col]
		if next == spec.StateNil {
			break
		}
		state = next
		if l.def.IsFinal[state] {
			point := l.state
			accepted = &point
			acceptedName = *l.def.TokenTypeNames[state]
		}
	}

	if accepted != nil {
		l.state = *accepted
		return &Token{
			TokenName: acceptedName,
			Lexeme:    l.src[start.srcPtr:l.state.srcPtr],
			BytePos:   start.srcPtr,
			ByteLen:   l.state.srcPtr - start.srcPtr,
			Row:       start.row,
			Col:       start.col,
		}, nil
	}

	// Nothing matched: emit a one-character token and resume after it.
	l.state = start
	l.read()
	return &Token{
		TokenName: TokenNameUnknown,
		Lexeme:    l.src[start.srcPtr:l.state.srcPtr],
		BytePos:   start.srcPtr,
		ByteLen:   l.state.srcPtr - start.srcPtr,
		Row:       start.row,
		Col:       start.col,
		Invalid:   true,
	}, nil
}

// read decodes the character at the read head and advances past it. The
// driver treats LF as the end of lines and counts columns in code points.
func (l *Lexer) read() (rune, bool) {
	c, size := utf8.DecodeRune(l.src[l.state.srcPtr:])
	if c == utf8.RuneError && size <= 1 {
		l.state.srcPtr++
		l.state.col++
		return c, false
	}
	l.state.srcPtr += size
	if c == '\n' {
		l.state.row++
		l.state.col = 0
	} else {
		l.state.col++
	}
	return c, true
}
