package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "falcata",
	Short: "Generate tokenizers and parsing tables from lexical rules and grammars",
	Long: `falcata provides two features:
- Generates a transition table from lexical rules and tokenizes a text stream with it.
- Generates portable LL(1) and LALR(1) parsing tables from a grammar and parses a
  token stream with them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
