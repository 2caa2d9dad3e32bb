package lexer

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func validDefinition() *LexerDefinition {
	return &LexerDefinition{
		Alphabet:   []string{"a", "b"},
		StartState: 0,
		Transitions: [][]int{
			{1, StateNil},
			{StateNil, StateNil},
		},
		IsFinal:        []bool{false, true},
		TokenTypeNames: []*string{nil, strPtr("A")},
	}
}

func TestLexerDefinition_Validate(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		caption string
		mutate  func(def *LexerDefinition)
	}{
		{
			caption: "an empty alphabet",
			mutate: func(def *LexerDefinition) {
				def.Alphabet = nil
			},
		},
		{
			caption: "a multi-character alphabet entry",
			mutate: func(def *LexerDefinition) {
				def.Alphabet[0] = "ab"
			},
		},
		{
			caption: "a start state out of range",
			mutate: func(def *LexerDefinition) {
				def.StartState = 9
			},
		},
		{
			caption: "a ragged transition row",
			mutate: func(def *LexerDefinition) {
				def.Transitions[0] = []int{1}
			},
		},
		{
			caption: "a transition destination out of range",
			mutate: func(def *LexerDefinition) {
				def.Transitions[0][0] = 7
			},
		},
		{
			caption: "an isFinal length mismatch",
			mutate: func(def *LexerDefinition) {
				def.IsFinal = []bool{false}
			},
		},
		{
			caption: "a tokenTypeNames length mismatch",
			mutate: func(def *LexerDefinition) {
				def.TokenTypeNames = []*string{nil}
			},
		},
		{
			caption: "a final state without a token type name",
			mutate: func(def *LexerDefinition) {
				def.TokenTypeNames[1] = nil
			},
		},
		{
			caption: "a non-final state with a token type name",
			mutate: func(def *LexerDefinition) {
				def.TokenTypeNames[0] = strPtr("A")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)
			if err := def.Validate(); err == nil {
				t.Fatal("the broken definition must be rejected")
			}
		})
	}
}

func TestLexerDefinition_jsonLayout(t *testing.T) {
	b, err := json.Marshal(validDefinition())
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)

	// The external layout is fixed: camel-case keys, dense rows, and null
	// entries for states without a token.
	for _, key := range []string{`"alphabet"`, `"startState"`, `"transitions"`, `"isFinal"`, `"tokenTypeNames"`} {
		if !strings.Contains(s, key) {
			t.Fatalf("the JSON layout must contain %v; got: %v", key, s)
		}
	}
	if !strings.Contains(s, "null") {
		t.Fatalf("a non-final state must serialize as null; got: %v", s)
	}

	var def LexerDefinition
	if err := json.Unmarshal(b, &def); err != nil {
		t.Fatal(err)
	}
	if err := def.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLexerDefinition_AlphabetIndexes(t *testing.T) {
	def := validDefinition()
	indexes := def.AlphabetIndexes()
	if indexes['a'] != 0 || indexes['b'] != 1 {
		t.Fatalf("unexpected indexes: %v", indexes)
	}
}
