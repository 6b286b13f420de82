package uncertainty

import (
	"cmp"
	"math/big"
	"strconv"

	set "github.com/hashicorp/go-set/v3"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/uncertainty/expr"
)

// State is a stage of an Analysis. Each step of an analysis moves it to the
// next state, and steps can only happen in order.
type State int8

const (
	// ExpressionBound is the state of a new analysis.
	ExpressionBound State = iota
	// OperatingPointsResolved follows ResolveOperatingPoints.
	OperatingPointsResolved
	// ErrorsResolved follows ResolveErrors.
	ErrorsResolved
	// ResultComputed follows ComputeResult.
	ResultComputed
	// ResultErrorComputed follows ComputeResultError.
	ResultErrorComputed
	// Done follows Report.
	Done
)

func (s State) String() string {
	switch s {
	case ExpressionBound:
		return "ExpressionBound"
	case OperatingPointsResolved:
		return "OperatingPointsResolved"
	case ErrorsResolved:
		return "ErrorsResolved"
	case ResultComputed:
		return "ResultComputed"
	case ResultErrorComputed:
		return "ResultErrorComputed"
	case Done:
		return "Done"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Analysis is one run of error analysis of a formula. It resolves an operating
// point and an error for each variable, preferring supplied values over ones
// derived from measurements, then computes the formula's value and propagated
// error there. An Analysis is not safe for concurrent use.
//
// A failed step leaves the analysis in the state it was in, so the step can
// be retried, e.g. with a different source.
type Analysis struct {
	eng   *Engine
	e     *expr.Expr
	vars  *set.TreeSet[string]
	state State
	log   zerolog.Logger

	// series caches measurements so that each is requested at most once.
	series map[string]Series

	points map[string]*big.Float
	errs   map[string]*big.Float
	// meanOf and errOf hold the variables whose operating points and errors
	// were derived from measurements.
	meanOf *set.TreeSet[string]
	errOf  *set.TreeSet[string]

	result    *big.Float
	resultErr *big.Float
}

// Bind starts an analysis of e. If e has no variables, the result is
// ErrNoVariables.
func (eng *Engine) Bind(e *expr.Expr) (*Analysis, error) {
	vars := e.Vars()
	if len(vars) == 0 {
		return nil, ErrNoVariables
	}
	a := Analysis{
		eng:    eng,
		e:      e,
		vars:   set.TreeSetFrom(vars, cmp.Compare[string]),
		state:  ExpressionBound,
		log:    eng.log.With().Stringer("formula", e).Logger(),
		series: make(map[string]Series, len(vars)),
		meanOf: set.NewTreeSet(cmp.Compare[string]),
		errOf:  set.NewTreeSet(cmp.Compare[string]),
	}
	a.log.Debug().Strs("vars", vars).Msg("bound expression")
	return &a, nil
}

// State returns the current state of the analysis.
func (a *Analysis) State() State {
	return a.state
}

// Vars returns the variables of the analysis in lexicographic order.
func (a *Analysis) Vars() []string {
	return a.vars.Slice()
}

func (a *Analysis) step(want State) error {
	if a.state != want {
		return &StateError{Want: want, Have: a.state}
	}
	return nil
}

func (a *Analysis) advance() {
	a.state++
	a.log.Debug().Stringer("state", a.state).Msg("advanced")
}

// measurements gets the series of v from the cache or from src.
func (a *Analysis) measurements(src MeasurementSource, v string) (Series, error) {
	if xs, ok := a.series[v]; ok {
		return xs, nil
	}
	xs, err := src.Series(v)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, &EmptySeriesError{Var: v}
	}
	a.series[v] = xs
	return xs, nil
}

// ResolveOperatingPoints sets the operating point of each variable to its
// supplied average, or to the mean of its measurements if none is supplied.
// Supplied averages are rounded to the engine's precision.
func (a *Analysis) ResolveOperatingPoints(src MeasurementSource) error {
	if err := a.step(ExpressionBound); err != nil {
		return err
	}
	points := make(map[string]*big.Float, a.vars.Size())
	derived := set.NewTreeSet(cmp.Compare[string])
	for v := range a.vars.Items() {
		avg, err := src.Average(v)
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		if avg != nil {
			points[v] = expr.Round(new(big.Float), avg, a.eng.digits)
			continue
		}
		xs, err := a.measurements(src, v)
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		m, err := a.eng.Mean(xs)
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		a.log.Debug().Str("var", v).Int("n", len(xs)).Str("mean", m.Text('g', a.eng.digits)).Msg("derived average")
		points[v] = m
		derived.Insert(v)
	}
	a.points, a.meanOf = points, derived
	a.advance()
	return nil
}

// ResolveErrors sets the error of each variable to its supplied error, or to
// the variable error of its measurements about its operating point if none is
// supplied. Supplied errors must not be negative.
func (a *Analysis) ResolveErrors(src MeasurementSource) error {
	if err := a.step(OperatingPointsResolved); err != nil {
		return err
	}
	errs := make(map[string]*big.Float, a.vars.Size())
	derived := set.NewTreeSet(cmp.Compare[string])
	for v := range a.vars.Items() {
		dv, err := src.Error(v)
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		if dv != nil {
			if dv.Sign() < 0 {
				return &VariableError{Var: v, Err: &NegativeErrorError{Var: v, Value: dv.Text('g', -1)}}
			}
			errs[v] = expr.Round(new(big.Float), dv, a.eng.digits)
			continue
		}
		xs, err := a.measurements(src, v)
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		d, err := a.eng.VariableError(xs, a.points[v])
		if err != nil {
			return &VariableError{Var: v, Err: err}
		}
		a.log.Debug().Str("var", v).Int("n", len(xs)).Str("error", d.Text('g', a.eng.digits)).Msg("derived error")
		errs[v] = d
		derived.Insert(v)
	}
	a.errs, a.errOf = errs, derived
	a.advance()
	return nil
}

// ComputeResult evaluates the formula at the operating points.
func (a *Analysis) ComputeResult() error {
	if err := a.step(ErrorsResolved); err != nil {
		return err
	}
	r, err := a.eng.Evaluate(a.e, a.points)
	if err != nil {
		return err
	}
	a.result = r
	a.advance()
	return nil
}

// ComputeResultError computes the propagated error of the formula at the
// operating points.
func (a *Analysis) ComputeResultError() error {
	if err := a.step(ResultComputed); err != nil {
		return err
	}
	r, err := a.eng.PropagatedError(a.e, a.points, a.errs, a.vars.Slice())
	if err != nil {
		return err
	}
	a.resultErr = r
	a.advance()
	return nil
}

// Report finishes the analysis and returns its results.
func (a *Analysis) Report() (*Report, error) {
	if err := a.step(ResultErrorComputed); err != nil {
		return nil, err
	}
	r := Report{
		Formula:     a.e.String(),
		Digits:      a.eng.digits,
		Result:      a.result,
		ResultError: a.resultErr,
		Vars:        make([]Quantity, 0, a.vars.Size()),
	}
	for v := range a.vars.Items() {
		r.Vars = append(r.Vars, Quantity{
			Name:           v,
			Average:        a.points[v],
			Error:          a.errs[v],
			AverageDerived: a.meanOf.Contains(v),
			ErrorDerived:   a.errOf.Contains(v),
			N:              len(a.series[v]),
		})
	}
	a.advance()
	return &r, nil
}

// Run performs a complete analysis of e with data from src.
func (eng *Engine) Run(e *expr.Expr, src MeasurementSource) (*Report, error) {
	a, err := eng.Bind(e)
	if err != nil {
		return nil, err
	}
	if err := a.ResolveOperatingPoints(src); err != nil {
		return nil, err
	}
	if err := a.ResolveErrors(src); err != nil {
		return nil, err
	}
	if err := a.ComputeResult(); err != nil {
		return nil, err
	}
	if err := a.ComputeResultError(); err != nil {
		return nil, err
	}
	return a.Report()
}

// Report is the outcome of an analysis.
type Report struct {
	// Formula is the analyzed formula.
	Formula string
	// Digits is the precision of every value in the report.
	Digits int
	// Result is the formula evaluated at the operating points.
	Result *big.Float
	// ResultError is the propagated error of Result.
	ResultError *big.Float
	// Vars holds the resolved values of each variable in lexicographic order.
	Vars []Quantity
}

// Quantity is the resolved operating point and error of one variable.
type Quantity struct {
	Name    string
	Average *big.Float
	Error   *big.Float
	// AverageDerived and ErrorDerived tell whether Average and Error were
	// computed from measurements rather than supplied.
	AverageDerived bool
	ErrorDerived   bool
	// N is the number of measurements used, or 0 if none were needed.
	N int
}
