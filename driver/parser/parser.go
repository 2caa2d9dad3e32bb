package parser

import (
	"fmt"
)

// VToken is a token the parser consumes: a lexeme bound to a terminal of the
// grammar.
type VToken interface {
	// TerminalID returns the terminal number the token matched.
	TerminalID() int

	// Lexeme returns the matched byte sequence.
	Lexeme() []byte

	// EOF returns true when the token means the end of the input.
	EOF() bool

	// Invalid returns true when no lexical rule matched the token.
	Invalid() bool

	// BytePosition returns the byte offset and length of the lexeme.
	BytePosition() (int, int)

	// Position returns the row and column the lexeme starts at.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type Grammar interface {
	// InitialState returns the initial state of the LALR automaton.
	InitialState() int

	// StartProduction returns the number of the augmented start production.
	StartProduction() int

	// Action returns an ACTION entry: negative numbers are shifts to the
	// negated state, positive numbers are reductions of the production, and
	// zero is the error entry.
	Action(state int, terminal int) int

	// GoTo returns a GOTO entry, or zero when the entry is empty.
	GoTo(state int, lhs int) int

	// AlternativeSymbolCount returns the RHS length of a production.
	AlternativeSymbolCount(prod int) int

	// TerminalCount returns the number of terminal columns: one more than the
	// highest terminal number, since terminal numbers start at 1 (EOF).
	TerminalCount() int

	// LHS returns the LHS symbol number of a production.
	LHS(prod int) int

	// EOF returns the terminal number of the EOF symbol.
	EOF() int

	// Terminal returns the name of a terminal.
	Terminal(terminal int) string
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

// Parser is the LALR(1) shift/reduce driver. It stops at the first syntax
// error; the error is recorded, not returned, so a caller can distinguish
// rejection from I/O failure.
type Parser struct {
	toks       TokenStream
	gram       Grammar
	stateStack []int
	accepted   bool
	synErrs    []*SyntaxError
}

func NewParser(toks TokenStream, gram Grammar) (*Parser, error) {
	return &Parser{
		toks: toks,
		gram: gram,
	}, nil
}

func (p *Parser) Parse() error {
	p.stateStack = []int{p.gram.InitialState()}
	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for {
		act := p.gram.Action(p.top(), tok.TerminalID())
		switch {
		case act < 0: // Shift
			p.push(act * -1)

			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act

			if p.gram.LHS(prodNum) == p.gram.LHS(p.gram.StartProduction()) {
				p.accepted = true
				return nil
			}

			n := p.gram.AlternativeSymbolCount(prodNum)
			p.pop(n)
			nextState := p.gram.GoTo(p.top(), p.gram.LHS(prodNum))
			if nextState == 0 {
				return fmt.Errorf("a GOTO entry was not found; state: %v, LHS: %v", p.top(), p.gram.LHS(prodNum))
			}
			p.push(nextState)
		default: // Error
			row, col := tok.Position()
			p.synErrs = append(p.synErrs, &SyntaxError{
				Row:               row,
				Col:               col,
				Message:           "unexpected token",
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
			})
			return nil
		}
	}
}

// Accepted reports whether the last Parse call recognized the input.
func (p *Parser) Accepted() bool {
	return p.accepted
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// searchLookahead lists the terminals the parser would have accepted in a
// state.
func (p *Parser) searchLookahead(state int) []string {
	var kinds []string
	termCount := p.gram.TerminalCount()
	for term := 1; term < termCount; term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}
		if term == p.gram.EOF() {
			kinds = append(kinds, "<eof>")
			continue
		}
		kinds = append(kinds, p.gram.Terminal(term))
	}
	return kinds
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}
