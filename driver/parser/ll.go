package parser

import (
	"fmt"

	spec "github.com/mobiusgate/falcata/spec/grammar"
)

// LLParser is the LL(1) predictive driver. The stack holds grammar symbols:
// terminals as positive numbers, non-terminals negated, with the EOF symbol
// at the bottom. ε never reaches the stack; an ε-production just pushes
// nothing.
type LLParser struct {
	toks     TokenStream
	g        *spec.CompiledGrammar
	accepted bool
	synErrs  []*SyntaxError
}

func NewLLParser(toks TokenStream, g *spec.CompiledGrammar) (*LLParser, error) {
	if g.Predictive == nil {
		return nil, fmt.Errorf("the compiled grammar has no predictive part; the grammar is not LL(1)")
	}
	return &LLParser{
		toks: toks,
		g:    g,
	}, nil
}

func (p *LLParser) Parse() error {
	pred := p.g.Predictive
	eof := p.g.Syntactic.EOFSymbol

	stack := []int{eof, pred.StartSymbol * -1}

	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for len(stack) > 0 {
		x := stack[len(stack)-1]

		if x > 0 {
			if x != tok.TerminalID() {
				p.recordError(tok, x)
				return nil
			}
			stack = stack[:len(stack)-1]
			if x == eof {
				break
			}
			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
			continue
		}

		prod := pred.Table[(x*-1)*pred.TerminalCount+tok.TerminalID()]
		if prod == 0 {
			p.recordError(tok, x)
			return nil
		}
		stack = stack[:len(stack)-1]
		rhs := pred.RHSSymbols[prod]
		for i := len(rhs) - 1; i >= 0; i-- {
			stack = append(stack, rhs[i])
		}
	}

	p.accepted = true
	return nil
}

// Accepted reports whether the last Parse call recognized the input.
func (p *LLParser) Accepted() bool {
	return p.accepted
}

func (p *LLParser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

func (p *LLParser) recordError(tok VToken, stackSym int) {
	row, col := tok.Position()
	var expected []string
	if stackSym > 0 {
		expected = []string{p.terminalName(stackSym)}
	} else {
		pred := p.g.Predictive
		for term := 1; term < pred.TerminalCount; term++ {
			if pred.Table[(stackSym*-1)*pred.TerminalCount+term] == 0 {
				continue
			}
			expected = append(expected, p.terminalName(term))
		}
	}
	p.synErrs = append(p.synErrs, &SyntaxError{
		Row:               row,
		Col:               col,
		Message:           "unexpected token",
		Token:             tok,
		ExpectedTerminals: expected,
	})
}

func (p *LLParser) terminalName(term int) string {
	if term == p.g.Syntactic.EOFSymbol {
		return "<eof>"
	}
	return p.g.Syntactic.Terminals[term]
}
