package parser

import (
	"io"

	"github.com/mobiusgate/falcata/driver/lexer"
	spec "github.com/mobiusgate/falcata/spec/grammar"
	lexspec "github.com/mobiusgate/falcata/spec/lexer"
)

// terminalIDUnknown marks a token whose name is not a terminal of the
// grammar. Column 0 of the parsing tables is never filled, so the parser
// reports a syntax error at the token.
const terminalIDUnknown = 0

type vToken struct {
	terminalID int
	tok        *lexer.Token
}

func (t *vToken) TerminalID() int {
	return t.terminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *vToken) BytePosition() (int, int) {
	return t.tok.BytePos, t.tok.ByteLen
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex            *lexer.Lexer
	nameToTerminal map[string]int
	eofTerminal    int
}

// NewTokenStream adapts the tokenizer to the parser: each token's name is
// resolved to the grammar's terminal number.
func NewTokenStream(g *spec.CompiledGrammar, def *lexspec.LexerDefinition, src io.Reader) (TokenStream, error) {
	lex, err := lexer.NewLexer(def, src)
	if err != nil {
		return nil, err
	}

	nameToTerminal := map[string]int{}
	for num, name := range g.Syntactic.Terminals {
		if name == "" {
			continue
		}
		nameToTerminal[name] = num
	}

	return &tokenStream{
		lex:            lex,
		nameToTerminal: nameToTerminal,
		eofTerminal:    g.Syntactic.EOFSymbol,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	tok, err := l.lex.Next()
	if err != nil {
		return nil, err
	}
	terminalID := terminalIDUnknown
	if tok.EOF {
		terminalID = l.eofTerminal
	} else if id, ok := l.nameToTerminal[tok.TokenName]; ok {
		terminalID = id
	}
	return &vToken{
		terminalID: terminalID,
		tok:        tok,
	}, nil
}
