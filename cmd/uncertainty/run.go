package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/expr"
	"github.com/zephyrtronium/uncertainty/internal/log"
	"github.com/zephyrtronium/uncertainty/internal/report"
	"github.com/zephyrtronium/uncertainty/internal/source"
)

// isTerminal reports whether r is an interactive terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func buildRunCmd(a *app) *cobra.Command {
	var (
		formula string
		ask     bool
	)
	cmd := &cobra.Command{
		Use:   "run [session.yaml]",
		Short: "Analyze a formula with data from a session file or a prompt",
		Long: `Analyze a formula with data from a session file or a prompt.

With a session file, or when standard input is not a terminal, data is read
as YAML. Otherwise each value is asked for in turn.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			var (
				file   *source.File
				prompt *source.Prompt
				err    error
			)
			switch {
			case len(args) == 1:
				file, err = source.LoadFile(args[0])
			case isTerminal(in):
				prompt = source.NewPrompt(in, cmd.OutOrStdout())
			default:
				file, err = source.ReadFile(in)
			}
			if err != nil {
				return err
			}

			var extra []uncertainty.Option
			if prompt != nil && ask {
				digits, err := prompt.Digits(a.opts.Precision)
				if err != nil {
					return err
				}
				tnp, err := prompt.Coverage()
				if err != nil {
					return err
				}
				// The answers come after the configured options, so the tnp
				// given here replaces a configured confidence level.
				extra = append(extra, uncertainty.Digits(digits), uncertainty.Coverage(tnp))
			}
			eng, err := a.engine(extra...)
			if err != nil {
				return err
			}

			var e *expr.Expr
			var src uncertainty.MeasurementSource
			if prompt != nil {
				if formula != "" {
					e, err = expr.ParseString(formula)
				} else {
					e, err = prompt.Formula()
				}
				src = prompt
			} else {
				if formula == "" {
					formula = file.Formula
				}
				if formula == "" {
					return fmt.Errorf("no formula in session or --formula")
				}
				e, err = expr.ParseString(formula)
				if err == nil {
					err = file.Check(e.Vars())
				}
				src = file
			}
			if err != nil {
				return err
			}

			log.Debug().Stringer("formula", e).Strs("vars", e.Vars()).Msg("running analysis")
			r, err := eng.Run(e, src)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), a.opts.Output, r, a.opts.Scale)
		},
	}
	cmd.Flags().StringVarP(&formula, "formula", "f", "", "formula to analyze instead of the session's")
	cmd.Flags().BoolVar(&ask, "ask", false, "ask for precision and tnp when prompting")
	return cmd
}
