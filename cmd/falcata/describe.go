package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	spec "github.com/mobiusgate/falcata/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <report file path>",
		Short:   "Print a report file in readable format",
		Example: `  falcata describe grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) (retErr error) {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	return writeReport(os.Stdout, report)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(b, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 2 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ if .Accept -}}
accept on <eof>
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .SRConflict -}}
{{ printSRConflict . }}
{{ end -}}
{{ range .RRConflict -}}
{{ printRRConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termName := func(num int) string {
		if t := report.Terminals[num]; t != nil {
			return t.Name
		}
		return "<eof>"
	}
	nonTermName := func(num int) string {
		return report.NonTerminals[num].Name
	}
	prodText := func(prod *spec.Production) string {
		var b strings.Builder
		fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
		if len(prod.RHS) == 0 {
			fmt.Fprintf(&b, " ε")
		}
		for _, sym := range prod.RHS {
			if sym >= 0 {
				fmt.Fprintf(&b, " %v", termName(sym))
			} else {
				fmt.Fprintf(&b, " %v", nonTermName(sym*-1))
			}
		}
		return b.String()
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			var sr, rr int
			for _, s := range report.States {
				sr += len(s.SRConflict)
				rr += len(s.RRConflict)
			}
			switch {
			case sr > 0 && rr > 0:
				return fmt.Sprintf("%v shift/reduce conflicts and %v reduce/reduce conflicts", sr, rr)
			case sr > 0:
				return fmt.Sprintf("%v shift/reduce conflicts", sr)
			case rr > 0:
				return fmt.Sprintf("%v reduce/reduce conflicts", rr)
			}
			return "no conflicts"
		},
		"printTerminal": func(term *spec.Terminal) string {
			if term == nil {
				return ""
			}
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printProduction": func(prod *spec.Production) string {
			return fmt.Sprintf("%4v %v", prod.Number, prodText(prod))
		},
		"printItem": func(item *spec.Item) string {
			prod := report.Productions[item.Production]
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			for i, sym := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				if sym >= 0 {
					fmt.Fprintf(&b, " %v", termName(sym))
				} else {
					fmt.Fprintf(&b, " %v", nonTermName(sym*-1))
				}
			}
			if item.Dot == len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}
			return b.String()
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *spec.Reduce) string {
			las := make([]string, len(reduce.LookAhead))
			for i, la := range reduce.LookAhead {
				las[i] = termName(la)
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, strings.Join(las, ", "))
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printSRConflict": func(c *spec.SRConflict) string {
			var adopted string
			switch {
			case c.AdoptedState != nil:
				adopted = fmt.Sprintf("shift %v", *c.AdoptedState)
			case c.AdoptedProduction != nil:
				adopted = fmt.Sprintf("reduce %v", *c.AdoptedProduction)
			}
			return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: adopted %v",
				c.State, c.Production, termName(c.Symbol), adopted)
		},
		"printRRConflict": func(c *spec.RRConflict) string {
			return fmt.Sprintf("reduce/reduce conflict (reduce %v and %v) on %v: adopted reduce %v",
				c.Production1, c.Production2, termName(c.Symbol), c.AdoptedProduction)
		},
	}

	tmpl, err := template.New("report").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, report)
}
