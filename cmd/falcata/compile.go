package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	verr "github.com/mobiusgate/falcata/error"
	"github.com/mobiusgate/falcata/grammar"
	spec "github.com/mobiusgate/falcata/spec/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output           *string
	compressionLevel *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar into LL(1) and LALR(1) parsing tables",
		Example: `  falcata compile grammar.txt -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.compressionLevel = cmd.Flags().Int("compression-level", 2, "compression level of the parsing tables (0-2)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}
	defer func() {
		if retErr == nil {
			return
		}
		specErrs, ok := retErr.(verr.SpecErrors)
		if !ok {
			return
		}
		for _, err := range specErrs {
			err.FilePath = grmPath
			if grmPath != "" {
				err.SourceName = grmPath
			} else {
				err.SourceName = "stdin"
			}
		}
	}()

	gram, err := readGrammar(grmPath)
	if err != nil {
		return err
	}

	cgram, report, err := grammar.Compile(gram,
		grammar.EnableReporting(),
		grammar.CompressionLevel(*compileFlags.compressionLevel),
	)
	if err != nil {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	srCount, rrCount := grammar.CountConflicts(report)
	if srCount > 0 || rrCount > 0 {
		fmt.Fprintf(os.Stdout, "%v conflicts (%v shift/reduce, %v reduce/reduce)\n", srCount+rrCount, srCount, rrCount)
	}
	if cgram.Predictive == nil {
		fmt.Fprintf(os.Stdout, "the grammar is not LL(1); the artifact has no predictive table\n")
	}

	return nil
}

func readGrammar(path string) (*grammar.Grammar, error) {
	var src io.Reader
	var name string
	if path == "" {
		src = os.Stdin
		name = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
		}
		defer f.Close()
		src = f
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	b := &grammar.GrammarBuilder{}
	return b.Build(name, src)
}

// writeCompiledGrammarAndReport writes a compiled grammar to a file located
// at the passed path, or to stdout when the path is empty, and the report to
// <grammar-name>-report.json next to it.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	reportFileName := cgram.Name + "-report.json"

	{
		var w io.Writer
		if path != "" {
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		} else {
			w = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v\n", string(b))
	}

	{
		dir, _ := filepath.Split(path)
		f, err := os.OpenFile(filepath.Join(dir, reportFileName), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "%v\n", string(b))
	}

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the compiled grammar file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(b, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
