package grammar

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	verr "github.com/mobiusgate/falcata/error"
	"github.com/mobiusgate/falcata/grammar/symbol"
)

// Grammar is an immutable in-memory representation of a context-free grammar.
// It carries the augmented start production S' → S, so the canonical LR
// collection can use the augmented start symbol directly.
type Grammar struct {
	name                 string
	symbolTable          *symbol.SymbolTable
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	assumedTerminals     []string
}

func (g *Grammar) Name() string {
	return g.name
}

// AssumedTerminals lists RHS symbols that never appear on a LHS and are not
// declared token names. They are treated as terminals; callers may surface
// them as warnings.
func (g *Grammar) AssumedTerminals() []string {
	return g.assumedTerminals
}

// prodRule is a raw production read from a grammar source before symbol
// resolution. An empty alternative represents an ε-production.
type prodRule struct {
	lhs  string
	alts [][]string
	row  int
}

// GrammarBuilder builds a Grammar from a line-oriented grammar source.
//
// The accepted notation is:
//
//	expr -> expr add term | term ;
//	term ->
//	   | term mul factor
//
// A `->` line opens the productions of its LHS, a line beginning with `|`
// continues the previous LHS, a trailing `;` is optional, and blank lines and
// lines whose first non-space character is `#` are ignored. Symbols are
// whitespace-separated. An alternative with no symbols is an ε-production.
// The LHS of the first production is the start symbol. Every name that
// appears on some LHS is a non-terminal; every other name is a terminal.
type GrammarBuilder struct {
	// TokenNames optionally declares the lexical kinds the tokenizer can
	// produce. When it is non-nil, a terminal not contained in it is
	// recorded as an assumed terminal.
	TokenNames []string

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build(name string, src io.Reader) (*Grammar, error) {
	rules, err := b.parseRules(src)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	if len(rules) == 0 {
		return nil, semErrNoProduction
	}

	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	r := symTab.Reader()

	lhsNames := map[string]struct{}{}
	for _, rule := range rules {
		lhsNames[rule.lhs] = struct{}{}
	}

	// The augmented start symbol must not collide with a user-defined
	// symbol, so its name carries a prime suffix.
	augStartText := rules[0].lhs + "'"
	for {
		if _, ok := lhsNames[augStartText]; !ok {
			break
		}
		augStartText += "'"
	}
	augStartSym, err := w.RegisterStartSymbol(augStartText)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		_, err := w.RegisterNonTerminalSymbol(rule.lhs)
		if err != nil {
			return nil, err
		}
	}
	startSym, _ := r.ToSymbol(rules[0].lhs)

	declaredTokens := map[string]struct{}{}
	for _, name := range b.TokenNames {
		declaredTokens[name] = struct{}{}
	}

	var assumed []string
	assumedSeen := map[string]struct{}{}
	for _, rule := range rules {
		for _, alt := range rule.alts {
			for _, text := range alt {
				if _, ok := lhsNames[text]; ok {
					continue
				}
				_, err := w.RegisterTerminalSymbol(text)
				if err != nil {
					return nil, err
				}
				if b.TokenNames == nil {
					continue
				}
				if _, ok := declaredTokens[text]; ok {
					continue
				}
				if _, ok := assumedSeen[text]; ok {
					continue
				}
				assumedSeen[text] = struct{}{}
				assumed = append(assumed, text)
			}
		}
	}

	prods := newProductionSet()

	augProd, err := newProduction(augStartSym, []symbol.Symbol{startSym})
	if err != nil {
		return nil, err
	}
	prods.append(augProd)

	for _, rule := range rules {
		lhsSym, _ := r.ToSymbol(rule.lhs)
		for _, alt := range rule.alts {
			rhs := make([]symbol.Symbol, len(alt))
			for i, text := range alt {
				sym, ok := r.ToSymbol(text)
				if !ok {
					return nil, fmt.Errorf("a symbol was not registered; symbol: %v", text)
				}
				rhs[i] = sym
			}
			prod, err := newProduction(lhsSym, rhs)
			if err != nil {
				return nil, err
			}
			if !prods.append(prod) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: fmt.Sprintf("%v → %v", rule.lhs, strings.Join(alt, " ")),
					Row:    rule.row,
				})
			}
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		name:                 name,
		symbolTable:          symTab,
		productionSet:        prods,
		augmentedStartSymbol: augStartSym,
		startSymbol:          startSym,
		assumedTerminals:     assumed,
	}, nil
}

func (b *GrammarBuilder) parseRules(src io.Reader) ([]*prodRule, error) {
	var rules []*prodRule
	var last *prodRule

	scanner := bufio.NewScanner(src)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, ";")

		if strings.HasPrefix(line, "|") {
			if last == nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrMalformedProduction,
					Detail: "a continuation line needs a preceding production",
					Row:    row,
				})
				continue
			}
			last.alts = append(last.alts, parseAlternatives(line[1:])...)
			continue
		}

		lhs, rhs, found := strings.Cut(line, "->")
		if !found {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrMalformedProduction,
				Detail: "a production needs `->`",
				Row:    row,
			})
			continue
		}
		lhs = strings.TrimSpace(lhs)
		if lhs == "" || len(strings.Fields(lhs)) != 1 {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrMalformedProduction,
				Detail: "a LHS must be a single symbol",
				Row:    row,
			})
			continue
		}

		rule := &prodRule{
			lhs:  lhs,
			alts: parseAlternatives(rhs),
			row:  row,
		}
		rules = append(rules, rule)
		last = rule
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

func parseAlternatives(s string) [][]string {
	var alts [][]string
	for _, alt := range strings.Split(s, "|") {
		syms := strings.Fields(alt)
		if syms == nil {
			// An ε-production.
			syms = []string{}
		}
		alts = append(alts, syms)
	}
	return alts
}
