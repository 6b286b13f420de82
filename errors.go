package uncertainty

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoVariables is returned when binding a formula that has no variables.
// Such a formula has no uncertainty to propagate.
var ErrNoVariables = errors.New("formula has no variables")

// EmptySeriesError is a mean or standard error requested over a measurement
// series with no values.
type EmptySeriesError struct {
	// Var is the variable whose series is empty, if known.
	Var string
}

func (err *EmptySeriesError) Error() string {
	if err.Var == "" {
		return "empty measurement series"
	}
	return "empty measurement series for " + strconv.Quote(err.Var)
}

// InsufficientSamplesError is a standard error requested over a series with
// fewer than two values.
type InsufficientSamplesError struct {
	// Var is the variable whose series is too short, if known.
	Var string
	// N is the number of values in the series.
	N int
}

func (err *InsufficientSamplesError) Error() string {
	s := "standard error needs at least 2 measurements, have " + strconv.Itoa(err.N)
	if err.Var == "" {
		return s
	}
	return s + " for " + strconv.Quote(err.Var)
}

// NegativeErrorError is an absolute measurement error below zero.
type NegativeErrorError struct {
	// Var is the variable given the error.
	Var string
	// Value is the text of the offending value.
	Value string
}

func (err *NegativeErrorError) Error() string {
	return "negative error " + err.Value + " for " + strconv.Quote(err.Var)
}

// VariableSetError is a map of per-variable values whose keys are not all
// variables of the formula.
type VariableSetError struct {
	// Extra lists the unknown variable names in lexicographic order.
	Extra []string
}

func (err *VariableSetError) Error() string {
	if len(err.Extra) == 1 {
		return "unknown variable " + strconv.Quote(err.Extra[0])
	}
	q := make([]string, len(err.Extra))
	for i, v := range err.Extra {
		q[i] = strconv.Quote(v)
	}
	return "unknown variables " + strings.Join(q, ", ")
}

// VariableError is a failure to resolve the operating point or error of one
// variable.
type VariableError struct {
	// Var is the variable being resolved.
	Var string
	// Err is the cause.
	Err error
}

func (err *VariableError) Error() string {
	return strconv.Quote(err.Var) + ": " + err.Err.Error()
}

func (err *VariableError) Unwrap() error {
	return err.Err
}

// StateError is an analysis step invoked out of order.
type StateError struct {
	// Want is the state the step requires.
	Want State
	// Have is the state the analysis was in.
	Have State
}

func (err *StateError) Error() string {
	return "analysis step requires state " + err.Want.String() + " but is in " + err.Have.String()
}

var (
	_ error = (*EmptySeriesError)(nil)
	_ error = (*InsufficientSamplesError)(nil)
	_ error = (*NegativeErrorError)(nil)
	_ error = (*VariableSetError)(nil)
	_ error = (*VariableError)(nil)
	_ error = (*StateError)(nil)
)
