package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/expr"
)

// given parses name=value variable definitions.
func given(args []string) (map[string]*big.Float, error) {
	vars := make(map[string]*big.Float, len(args))
	for _, s := range args {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, usageError(`variable definitions must be "name=value", not %q`, s)
		}
		x, err := uncertainty.ParseFloat(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		vars[strings.TrimSpace(name)] = x
	}
	return vars, nil
}

func buildEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval formula [name=value...]",
		Short: "Evaluate a formula",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := expr.ParseString(args[0])
			if err != nil {
				return err
			}
			vars, err := given(args[1:])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			r, err := eng.Evaluate(e, vars)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Text('g', eng.Digits()))
			return nil
		},
	}
}

func buildDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff formula [var...]",
		Short: "Print partial derivatives of a formula",
		Long: `Print partial derivatives of a formula with respect to each named
variable, or to every variable of the formula if none are named.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := expr.ParseString(args[0])
			if err != nil {
				return err
			}
			vars := args[1:]
			if len(vars) == 0 {
				vars = e.Vars()
			}
			for _, v := range vars {
				d, err := e.Diff(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "d/d%s = %v\n", v, d)
			}
			return nil
		},
	}
}

func buildTValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tvalue confidence n",
		Short: "Print the Student's t coverage coefficient for n measurements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return usageError("bad confidence %q", args[0])
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return usageError("bad number of measurements %q", args[1])
			}
			t, err := uncertainty.StudentT(c, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Text('g', 15))
			return nil
		},
	}
}
