package uncertainty

import (
	"cmp"
	"math/big"
	"strconv"

	set "github.com/hashicorp/go-set/v3"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/uncertainty/expr"
)

// Engine computes measurement statistics and propagated errors to a fixed
// number of significant decimal digits. An Engine holds only configuration and
// is safe for concurrent use.
type Engine struct {
	digits int
	tnp    *big.Float
	// conf is the confidence level used to find tnp for each series, or 0 to
	// use the fixed tnp.
	conf float64
	log  zerolog.Logger
}

// Option is an option for creating an Engine.
type Option func(*Engine)

// Digits sets the number of significant decimal digits in every computed
// value. Panics if n is not positive.
func Digits(n int) Option {
	if n <= 0 {
		panic("uncertainty: non-positive digits " + strconv.Itoa(n))
	}
	return func(eng *Engine) {
		eng.digits = n
	}
}

// Coverage sets the coverage coefficient that converts standard errors into
// absolute measurement errors. It replaces any earlier Confidence option.
// Panics if tnp is negative or infinite.
func Coverage(tnp *big.Float) Option {
	if tnp.Sign() < 0 || tnp.IsInf() {
		panic("uncertainty: invalid coverage coefficient " + tnp.String())
	}
	tnp = new(big.Float).Copy(tnp)
	return func(eng *Engine) {
		eng.tnp = tnp
		eng.conf = 0
	}
}

// Confidence sets the coverage coefficient of each measured variable to the
// Student's t quantile for the given confidence level and the number of
// measurements of that variable, instead of a fixed value. It replaces any
// earlier Coverage option. Panics unless 0 < c < 1.
func Confidence(c float64) Option {
	if !(c > 0 && c < 1) {
		panic("uncertainty: confidence outside (0, 1)")
	}
	return func(eng *Engine) {
		eng.conf = c
	}
}

// WithLogger sets the logger the engine and its analyses write debug events
// to. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(eng *Engine) {
		eng.log = l
	}
}

// NewEngine creates an engine. By default it computes to expr.DefaultDigits
// significant digits with a coverage coefficient of 1.
func NewEngine(opts ...Option) *Engine {
	eng := Engine{
		digits: expr.DefaultDigits,
		tnp:    big.NewFloat(1),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&eng)
	}
	return &eng
}

// Digits returns the engine's precision in significant decimal digits.
func (eng *Engine) Digits() int {
	return eng.digits
}

// Coverage returns a copy of the engine's coverage coefficient.
func (eng *Engine) Coverage() *big.Float {
	return new(big.Float).Copy(eng.tnp)
}

// round rounds a rational to the engine's precision.
func (eng *Engine) round(x *big.Rat) *big.Float {
	f := new(big.Float).SetPrec(expr.Bits(eng.digits)).SetRat(x)
	return expr.Round(f, f, eng.digits)
}

// sqrt computes the square root of a non-negative rational, rounded to the
// engine's precision.
func (eng *Engine) sqrt(x *big.Rat) *big.Float {
	f := new(big.Float).SetPrec(expr.Bits(eng.digits)).SetRat(x)
	if f.Sign() == 0 {
		return f
	}
	f.Sqrt(f)
	return expr.Round(f, f, eng.digits)
}

// Mean computes the arithmetic mean of a series. The sum is exact, so the
// result does not depend on the order of the values.
func (eng *Engine) Mean(xs Series) (*big.Float, error) {
	if len(xs) == 0 {
		return nil, &EmptySeriesError{}
	}
	var sum big.Rat
	for _, x := range xs {
		sum.Add(&sum, x)
	}
	sum.Quo(&sum, new(big.Rat).SetInt64(int64(len(xs))))
	return eng.round(&sum), nil
}

// StandardError computes the standard error of the mean of a series about a
// given mean, sqrt(Σ(xᵢ − mean)² / (n(n−1))). The result is never negative.
func (eng *Engine) StandardError(xs Series, mean *big.Float) (*big.Float, error) {
	v, err := variance(xs, mean)
	if err != nil {
		return nil, err
	}
	return eng.sqrt(v), nil
}

// VariableError computes the absolute error of a measured variable, the
// standard error of its series about mean times the coverage coefficient. The
// product is formed before rounding.
func (eng *Engine) VariableError(xs Series, mean *big.Float) (*big.Float, error) {
	v, err := variance(xs, mean)
	if err != nil {
		return nil, err
	}
	tnp := eng.tnp
	if eng.conf != 0 {
		tnp, err = StudentT(eng.conf, len(xs))
		if err != nil {
			return nil, err
		}
	}
	if tnp.Sign() == 0 {
		return new(big.Float).SetPrec(expr.Bits(eng.digits)), nil
	}
	t, _ := tnp.Rat(nil)
	// (σ·t)² = σ²·t², so a single root suffices.
	v.Mul(v, t)
	v.Mul(v, t)
	return eng.sqrt(v), nil
}

// variance computes the squared standard error of the mean exactly.
func variance(xs Series, mean *big.Float) (*big.Rat, error) {
	n := len(xs)
	switch n {
	case 0:
		return nil, &EmptySeriesError{}
	case 1:
		return nil, &InsufficientSamplesError{N: 1}
	}
	m, _ := mean.Rat(nil)
	if m == nil {
		return nil, &expr.DomainError{X: new(big.Float).Copy(mean), Func: "standard error"}
	}
	var sum, d big.Rat
	for _, x := range xs {
		d.Sub(x, m)
		d.Mul(&d, &d)
		sum.Add(&sum, &d)
	}
	return sum.Quo(&sum, new(big.Rat).SetInt64(int64(n)*int64(n-1))), nil
}

// Evaluate evaluates e at an operating point. at must hold exactly the
// variables of e.
func (eng *Engine) Evaluate(e *expr.Expr, at map[string]*big.Float) (*big.Float, error) {
	if err := checkVars(e.Vars(), at); err != nil {
		return nil, err
	}
	return expr.Evaluate(e, at, eng.digits)
}

// PropagatedError computes the first-order propagated error of e,
// sqrt(Σ(∂e/∂v · errs[v])²) over each v in vars with the partial derivatives
// evaluated at the operating point at. If vars is nil, it is the variables of
// e. Each derivative value is rounded to the engine's precision; the products,
// squares, and sum are exact, and only the root is rounded again.
func (eng *Engine) PropagatedError(e *expr.Expr, at, errs map[string]*big.Float, vars []string) (*big.Float, error) {
	if vars == nil {
		vars = e.Vars()
	}
	if err := checkVars(e.Vars(), at); err != nil {
		return nil, err
	}
	known := set.TreeSetFrom(e.Vars(), cmp.Compare[string])
	var extra []string
	for _, v := range vars {
		if !known.Contains(v) {
			extra = append(extra, v)
		}
	}
	if extra != nil {
		return nil, &VariableSetError{Extra: extra}
	}
	var sum, t big.Rat
	for _, v := range vars {
		dv := errs[v]
		if dv == nil {
			return nil, &expr.NameError{Name: v}
		}
		if dv.Sign() < 0 {
			return nil, &NegativeErrorError{Var: v, Value: dv.Text('g', -1)}
		}
		d, err := e.Diff(v)
		if err != nil {
			return nil, err
		}
		p, err := expr.Evaluate(d, at, eng.digits)
		if err != nil {
			return nil, err
		}
		if p.IsInf() || dv.IsInf() {
			return nil, &expr.DomainError{X: p, Func: "∂/∂" + v}
		}
		eng.log.Debug().Str("var", v).Stringer("partial", d).Str("value", p.Text('g', eng.digits)).Msg("partial derivative")
		p.Rat(&t)
		r, _ := dv.Rat(nil)
		t.Mul(&t, r)
		t.Mul(&t, &t)
		sum.Add(&sum, &t)
	}
	return eng.sqrt(&sum), nil
}

// checkVars checks that the keys of m are exactly the variables in want.
func checkVars(want []string, m map[string]*big.Float) error {
	for _, v := range want {
		if m[v] == nil {
			return &expr.NameError{Name: v}
		}
	}
	if len(m) == len(want) {
		return nil
	}
	known := set.TreeSetFrom(want, cmp.Compare[string])
	extra := set.NewTreeSet(cmp.Compare[string])
	for k := range m {
		if !known.Contains(k) {
			extra.Insert(k)
		}
	}
	return &VariableSetError{Extra: extra.Slice()}
}
