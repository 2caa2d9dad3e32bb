package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mobiusgate/falcata/driver/lexer"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex <transition table file path>",
		Short:   "Tokenize a text stream",
		Example: `  cat src | falcata lex lexer.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLex,
	}
	lexFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) (retErr error) {
	def, err := readLexerDefinition(args[0])
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *lexFlags.source != "" {
		f, err := os.Open(*lexFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *lexFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	lex, err := lexer.NewLexer(def, src)
	if err != nil {
		return err
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return err
		}
		if tok.EOF {
			break
		}
		fmt.Fprintf(os.Stdout, "%v:%v: %v %#v %v..%v\n",
			tok.Row+1, tok.Col+1, tok.TokenName, string(tok.Lexeme), tok.BytePos, tok.BytePos+tok.ByteLen)
	}

	return nil
}
