package expr

import (
	"errors"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals.
type Func interface {
	// Call evaluates the function. The function arguments are passed in args,
	// which has a length for which CanCall returned true. The function must
	// set r to its result and should not use the value of r otherwise. Call
	// may modify the elements of args. Arguments outside the function's
	// domain should produce a *DomainError.
	Call(ctx *Context, args []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n expressions follows a function, the
	//		parser treats it as an argument list, rejected unless CanCall(n).
	//		(If CanCall(0) and !CanCall(1), then a nonempty bracket is instead
	//		a separate term, so "pi(r+1)" is parsed as "pi*(r+1)".)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "exp x" is
	//		parsed as "exp(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

// builtin is a default function. Builtins are the only functions that can be
// differentiated; see (*builtin).deriv.
type builtin struct {
	name string
	// f computes a function of one argument; nil for constants.
	f func(z, x *big.Float) error
	// c computes a constant.
	c func(z *big.Float)
}

func (b *builtin) CanCall(n int) bool {
	if b.c != nil {
		return n == 0
	}
	return n == 1
}

func (b *builtin) Call(ctx *Context, args []*big.Float, r *big.Float) error {
	r.SetPrec(ctx.bits)
	if b.c != nil {
		b.c(r)
		return nil
	}
	// Evaluation names the function in domain errors.
	return b.f(r, args[0])
}

var (
	fnExp = &builtin{name: "exp", f: func(z, x *big.Float) error {
		bigfloat.Exp(z, x)
		return nil
	}}
	fnLn    = &builtin{name: "ln", f: ln}
	fnLog   = &builtin{name: "log", f: ln}
	fnLog10 = &builtin{name: "log10", f: log10}
	fnSqrt  = &builtin{name: "sqrt", f: sqrt}
	fnSin   = &builtin{name: "sin", f: sin}
	fnCos   = &builtin{name: "cos", f: cos}
	fnTan   = &builtin{name: "tan", f: tan}
	fnPi    = &builtin{name: "pi", c: func(z *big.Float) { bigfloat.Pi(z) }}
	fnE     = &builtin{name: "e", c: func(z *big.Float) {
		one := new(big.Float).SetPrec(z.Prec()).SetInt64(1)
		bigfloat.Exp(z, one)
	}}
)

// globalfuncs are the default functions. log is the natural logarithm, and E
// is another name for e.
var globalfuncs = map[string]Func{
	"exp":   fnExp,
	"ln":    fnLn,
	"log":   fnLog,
	"log10": fnLog10,
	"sqrt":  fnSqrt,
	"sin":   fnSin,
	"cos":   fnCos,
	"tan":   fnTan,
	"pi":    fnPi,
	"e":     fnE,
	"E":     fnE,
}

func ln(z, x *big.Float) error {
	if x.Sign() <= 0 {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	bigfloat.Log(z, x)
	return nil
}

func log10(z, x *big.Float) error {
	if err := ln(z, x); err != nil {
		return err
	}
	ln10 := bigfloat.Log(new(big.Float).SetPrec(z.Prec()), big.NewFloat(10))
	z.Quo(z, ln10)
	return nil
}

func sqrt(z, x *big.Float) error {
	if x.Sign() < 0 {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	z.Sqrt(x)
	return nil
}

func sin(z, x *big.Float) error {
	if x.IsInf() {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	s, _ := sincos(x, z.Prec())
	z.Set(s)
	return nil
}

func cos(z, x *big.Float) error {
	if x.IsInf() {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	_, c := sincos(x, z.Prec())
	z.Set(c)
	return nil
}

func tan(z, x *big.Float) error {
	if x.IsInf() {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	s, c := sincos(x, z.Prec())
	if c.Sign() == 0 {
		return &DomainError{X: new(big.Float).Copy(x)}
	}
	z.Quo(s, c)
	return nil
}

// sincos computes sine and cosine of x to prec bits. x is reduced modulo 2π
// into [-π, π] before summing the Taylor series.
func sincos(x *big.Float, prec uint) (sin, cos *big.Float) {
	// Reduction loses about as many bits as the exponent of x.
	wp := prec + 64
	if e := x.MantExp(nil); e > 0 {
		wp += uint(e)
	}
	r := new(big.Float).SetPrec(wp).Set(x)
	tau := new(big.Float).SetPrec(wp)
	bigfloat.Pi(tau)
	tau.Mul(tau, big.NewFloat(2))
	k := new(big.Float).SetPrec(wp).Quo(r, tau)
	ki, _ := k.Int(nil)
	// Round to nearest rather than toward zero.
	if rem := new(big.Float).Sub(k, new(big.Float).SetInt(ki)); rem.Cmp(big.NewFloat(0.5)) > 0 {
		ki.Add(ki, big.NewInt(1))
	} else if rem.Cmp(big.NewFloat(-0.5)) < 0 {
		ki.Sub(ki, big.NewInt(1))
	}
	r.Sub(r, k.SetInt(ki).Mul(k, tau))

	r2 := new(big.Float).SetPrec(wp).Mul(r, r)
	sin = new(big.Float).SetPrec(wp).Set(r)
	cos = new(big.Float).SetPrec(wp).SetInt64(1)
	st := new(big.Float).SetPrec(wp).Set(r)
	ct := new(big.Float).SetPrec(wp).SetInt64(1)
	d := new(big.Float).SetPrec(wp)
	lim := -int(wp) - 4
	for n := int64(1); ; n++ {
		// st = (-1)^n r^(2n+1)/(2n+1)!, ct = (-1)^n r^(2n)/(2n)!
		st.Mul(st, r2)
		st.Quo(st, d.SetInt64(-(2*n)*(2*n+1)))
		ct.Mul(ct, r2)
		ct.Quo(ct, d.SetInt64(-(2*n-1)*(2*n)))
		sin.Add(sin, st)
		cos.Add(cos, ct)
		if (st.Sign() == 0 || st.MantExp(nil) < lim) && (ct.Sign() == 0 || ct.MantExp(nil) < lim) {
			break
		}
	}
	return sin.SetPrec(prec), cos.SetPrec(prec)
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(ctx *Context, args []*big.Float, r *big.Float) (err error) {
	in := args[0]
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, new(big.ErrNaN)) {
			err = &DomainError{X: in}
			return
		}
		panic(err)
	}()
	r.SetPrec(ctx.bits)
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of out; its return value is always ignored. If f is
// called on an argument outside its domain, it should panic with an error of
// type big.ErrNaN, or that unwraps to it.
//
// Functions created with Monadic cannot be differentiated.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, args []*big.Float, r *big.Float) error {
	r.SetPrec(ctx.bits)
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic. Niladic functions differentiate to zero.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}
