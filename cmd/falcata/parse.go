package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mobiusgate/falcata/driver/parser"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source     *string
	predictive *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path> <transition table file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | falcata parse grammar.json lexer.json`,
		Args:    cobra.ExactArgs(2),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.predictive = cmd.Flags().Bool("predictive", false, "use the LL(1) driver instead of the LALR(1) driver")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}
	def, err := readLexerDefinition(args[1])
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	toks, err := parser.NewTokenStream(cgram, def, src)
	if err != nil {
		return err
	}

	var accepted bool
	var synErrs []*parser.SyntaxError
	if *parseFlags.predictive {
		p, err := parser.NewLLParser(toks, cgram)
		if err != nil {
			return err
		}
		err = p.Parse()
		if err != nil {
			return err
		}
		accepted = p.Accepted()
		synErrs = p.SyntaxErrors()
	} else {
		p, err := parser.NewParser(toks, parser.NewGrammar(cgram))
		if err != nil {
			return err
		}
		err = p.Parse()
		if err != nil {
			return err
		}
		accepted = p.Accepted()
		synErrs = p.SyntaxErrors()
	}

	for _, synErr := range synErrs {
		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v; expected: %v\n",
			synErr.Row+1, synErr.Col+1, synErr.Message, tokenText(synErr.Token), expectedText(synErr))
	}
	if !accepted {
		return fmt.Errorf("the input is not a member of the language")
	}
	fmt.Fprintln(os.Stdout, "accepted")

	return nil
}

func tokenText(tok parser.VToken) string {
	if tok.EOF() {
		return "<eof>"
	}
	return fmt.Sprintf("%#v", string(tok.Lexeme()))
}

func expectedText(synErr *parser.SyntaxError) string {
	if len(synErr.ExpectedTerminals) == 0 {
		return "<nothing>"
	}
	s := synErr.ExpectedTerminals[0]
	for _, t := range synErr.ExpectedTerminals[1:] {
		s += ", " + t
	}
	return s
}
