package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mobiusgate/falcata/lexical"
	spec "github.com/mobiusgate/falcata/spec/lexer"
	"github.com/spf13/cobra"
)

var compileLexerFlags = struct {
	output   *string
	alphabet *string
	strict   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile-lexer <rule file path>",
		Short:   "Compile lexical rules into a transition table",
		Example: `  falcata compile-lexer rules.lex -o lexer.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompileLexer,
	}
	compileLexerFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileLexerFlags.alphabet = cmd.Flags().String("alphabet", "", "input alphabet (default: the literals of the patterns)")
	compileLexerFlags.strict = cmd.Flags().Bool("strict", false, "reject pattern literals outside the alphabet")
	rootCmd.AddCommand(cmd)
}

func runCompileLexer(cmd *cobra.Command, args []string) (retErr error) {
	var src io.Reader
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("Cannot open the rule file %s: %w", args[0], err)
		}
		defer f.Close()
		src = f
	} else {
		src = os.Stdin
	}

	var opts []lexical.CompilerOption
	if *compileLexerFlags.alphabet != "" {
		opts = append(opts, lexical.Alphabet([]rune(*compileLexerFlags.alphabet)))
	}
	if *compileLexerFlags.strict {
		opts = append(opts, lexical.StrictAlphabet())
	}

	def, err, cErrs := lexical.Compile(src, opts...)
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for _, cErr := range cErrs {
				fmt.Fprintf(&b, "%v\n", cErr)
			}
			fmt.Fprint(os.Stderr, b.String())
		}
		return err
	}

	var w io.Writer
	if *compileLexerFlags.output != "" {
		f, err := os.OpenFile(*compileLexerFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	b, err := json.Marshal(def)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))

	return nil
}

func readLexerDefinition(path string) (*spec.LexerDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the transition table file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	def := &spec.LexerDefinition{}
	err = json.Unmarshal(b, def)
	if err != nil {
		return nil, err
	}
	err = def.Validate()
	if err != nil {
		return nil, err
	}
	return def, nil
}
