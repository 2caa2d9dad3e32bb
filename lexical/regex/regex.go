package regex

import (
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// ConcatSentinel joins two adjacent sub-expressions explicitly. It is reserved:
// a pattern containing it is rejected before preprocessing.
const ConcatSentinel = '·'

const (
	opAlt    = '|'
	opStar   = '*'
	opPlus   = '+'
	opOption = '?'
	opLParen = '('
	opRParen = ')'
)

var precedence = map[rune]int{
	opAlt:          1,
	ConcatSentinel: 2,
	opStar:         3,
	opPlus:         3,
	opOption:       3,
	opLParen:       0,
	opRParen:       0,
}

func isOperand(c rune) bool {
	switch c {
	case opAlt, opStar, opPlus, opOption, opLParen, opRParen, ConcatSentinel:
		return false
	}
	return true
}

// InsertConcatSentinel makes every implicit concatenation explicit.
// A sentinel goes between c1 and c2 when c1 can end a sub-expression
// (operand, `)`, or a postfix operator) and c2 can begin one (operand or `(`).
func InsertConcatSentinel(pattern string) (string, error) {
	runes := []rune(pattern)
	for _, c := range runes {
		if c == ConcatSentinel {
			return "", fmt.Errorf("a pattern must not contain the reserved concatenation character %q", ConcatSentinel)
		}
	}

	concatenated := make([]rune, 0, len(runes)*2)
	for i, c := range runes {
		concatenated = append(concatenated, c)
		if i >= len(runes)-1 {
			continue
		}
		next := runes[i+1]
		endsExpr := isOperand(c) || c == opRParen || c == opStar || c == opPlus || c == opOption
		beginsExpr := isOperand(next) || next == opLParen
		if endsExpr && beginsExpr {
			concatenated = append(concatenated, ConcatSentinel)
		}
	}
	return string(concatenated), nil
}

// ToPostfix converts an infix pattern to postfix form using the Shunting-Yard
// algorithm. `|` and concatenation are left-associative; the postfix operators
// `*`, `+`, and `?` bind tightest. Unbalanced parentheses are not diagnosed
// here: an unmatched `(` or `)` stays in the postfix form, and the NFA builder
// rejects it.
func ToPostfix(pattern string) (string, error) {
	concatenated, err := InsertConcatSentinel(pattern)
	if err != nil {
		return "", err
	}

	var postfix []rune
	operators := arraystack.New()
	for _, c := range concatenated {
		switch {
		case isOperand(c):
			postfix = append(postfix, c)
		case c == opLParen:
			operators.Push(c)
		case c == opRParen:
			for {
				top, ok := operators.Peek()
				if !ok || top.(rune) == opLParen {
					break
				}
				op, _ := operators.Pop()
				postfix = append(postfix, op.(rune))
			}
			// Discard the matching `(`; an unmatched `)` goes to the output.
			if _, ok := operators.Pop(); !ok {
				postfix = append(postfix, c)
			}
		default:
			for {
				top, ok := operators.Peek()
				if !ok || top.(rune) == opLParen || precedence[c] > precedence[top.(rune)] {
					break
				}
				op, _ := operators.Pop()
				postfix = append(postfix, op.(rune))
			}
			operators.Push(c)
		}
	}
	for !operators.Empty() {
		op, _ := operators.Pop()
		postfix = append(postfix, op.(rune))
	}

	return string(postfix), nil
}

// IsOperator reports whether c is one of the postfix operators the NFA
// builder interprets. Everything else in a postfix string is a literal, except
// a parenthesis left by an unbalanced pattern, which the NFA builder rejects.
func IsOperator(c rune) bool {
	switch c {
	case opAlt, ConcatSentinel, opStar, opPlus, opOption:
		return true
	}
	return false
}
