package expr

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// DefaultDigits is the number of significant decimal digits used by contexts
// created without a Prec option.
const DefaultDigits = 15

// Bits returns the binary precision used to compute values that are reported
// to digits significant decimal digits. It includes guard bits so that
// intermediate rounding does not show in the reported digits.
func Bits(digits int) uint {
	return uint(math.Ceil(float64(digits)*math.Log2(10))) + 32
}

// Round sets z to x rounded to digits significant decimal digits, with ties
// to even, and returns z. z is given the precision Bits(digits). Zero and
// infinities are copied unchanged.
func Round(z, x *big.Float, digits int) *big.Float {
	if digits <= 0 {
		panic("expr: non-positive digits " + strconv.Itoa(digits))
	}
	if x.Sign() == 0 || x.IsInf() {
		return z.SetPrec(Bits(digits)).Set(x)
	}
	s := x.Text('e', digits-1)
	if _, _, err := z.SetPrec(Bits(digits)).SetMode(big.ToNearestEven).Parse(s, 10); err != nil {
		panic("expr: reparsing rounded " + s + ": " + err.Error())
	}
	return z
}

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently.
type Context struct {
	stack  []*big.Float
	nums   map[string]*big.Float
	names  map[string]*big.Float
	digits int
	bits   uint
	err    error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  *big.Float
	}
	varsopt map[string]*big.Float
	precopt int
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}
func (precopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return varsopt(vars)
}

// Prec sets the number of significant decimal digits in results. Panics if
// digits is not positive.
func Prec(digits int) ContextOption {
	if digits <= 0 {
		panic("expr: non-positive precision " + strconv.Itoa(digits))
	}
	return precopt(digits)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is DefaultDigits.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{nums: make(map[string]*big.Float), digits: DefaultDigits, bits: Bits(DefaultDigits)}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result rounded to the
// context's precision. If an error occurs, e.g. a missing variable definition
// or an operand outside an operator's domain, then the result is nil and
// ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	switch len(ctx.stack) {
	case 0: // do nothing
	case 1:
		ctx.stack[0] = new(big.Float).SetPrec(ctx.bits)
		ctx.stack = ctx.stack[:0]
	default:
		panic("expr: Eval during Eval")
	}
	err := e.n.eval(ctx)
	ctx.err = err
	if err != nil {
		ctx.stack = ctx.stack[:0]
		return nil
	}
	r := ctx.Result()
	return Round(r, r, ctx.digits)
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("expr: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("expr: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining. Calling Set
// while the context is being used to evaluate an expression panics.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if len(ctx.stack) > 1 {
		panic("expr: Set on in-use context")
	}
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.bits).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Prec returns the number of significant decimal digits to which results are
// computed in the context.
func (ctx *Context) Prec() int {
	return ctx.digits
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack:  make([]*big.Float, 0, cap(ctx.stack)),
		nums:   make(map[string]*big.Float, len(ctx.nums)),
		names:  make(map[string]*big.Float, len(ctx.names)),
		digits: ctx.digits,
		bits:   ctx.bits,
	}
	// Loop backward so we apply the last precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.digits = int(p)
			n.bits = Bits(n.digits)
			break
		}
	}
	// Cached numbers are only reusable at the same precision.
	if n.bits == ctx.bits {
		for k, v := range ctx.nums {
			n.nums[k] = v
		}
	}
	if n.bits == ctx.bits {
		for name, val := range ctx.names {
			n.names[name] = val
		}
	} else {
		for name, val := range ctx.names {
			n.names[name] = new(big.Float).SetPrec(n.bits).Set(val)
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = new(big.Float).SetPrec(n.bits).Set(opt.val)
		case varsopt:
			for k, v := range opt {
				n.names[k] = new(big.Float).SetPrec(n.bits).Set(v)
			}
		case precopt:
			// Already done.
		default:
			panic("expr: unknown option type")
		}
	}
	return &n
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.bits)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.bits))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) (*big.Float, error) {
	if r := ctx.nums[s]; r != nil {
		return r, nil
	}
	r, _, err := new(big.Float).SetPrec(ctx.bits).Parse(s, 10)
	if err != nil {
		// Only exponent overflow gets here; the lexer validates the syntax.
		return nil, &DomainError{X: new(big.Float), Func: "number " + s}
	}
	ctx.nums[s] = r
	return r, nil
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		v, err := ctx.num(n.name)
		if err != nil {
			return err
		}
		ctx.push().Set(v)
	case nodeName:
		v := ctx.names[n.name]
		if v == nil {
			return &NameError{Name: n.name}
		}
		ctx.push().Set(v)
	case nodeCall:
		r := ctx.push()
		k := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.eval(ctx); err != nil {
				return err
			}
		}
		args := ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		if err := n.fn.Call(ctx, args, r); err != nil {
			var de *DomainError
			switch {
			case errors.As(err, &de):
				if de.Func == "" {
					de.Func = n.name
				}
			case errors.As(err, new(big.ErrNaN)):
				err = &DomainError{Func: n.name}
			}
			return err
		}
		ctx.stack = ctx.stack[:k]
	case nodeArg:
		panic("expr: eval on nodeArg")
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		switch n.kind {
		case nodeAdd:
			l.Add(l, r)
		case nodeSub:
			l.Sub(l, r)
		case nodeMul:
			l.Mul(l, r)
		case nodeDiv:
			if r.Sign() == 0 {
				return &DomainError{X: new(big.Float).Copy(r), Arg: 2, Func: "/"}
			}
			l.Quo(l, r)
		case nodePow:
			return pow(l, l, r)
		}
	case nodeNop:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	default:
		panic("expr: invalid AST node " + n.kind.String())
	}
	return nil
}

// maxIntPow is the largest exponent magnitude computed by repeated squaring.
const maxIntPow = 1 << 16

// pow sets z to x^y. A negative base requires an integer exponent, and zero
// cannot be raised to a negative power. z may alias x.
func pow(z, x, y *big.Float) error {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
		return nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return &DomainError{X: new(big.Float).Copy(y), Arg: 2, Func: "^"}
		}
		z.SetInt64(0)
		return nil
	}
	if y.IsInt() {
		if k, acc := y.Int64(); acc == big.Exact && -maxIntPow <= k && k <= maxIntPow {
			intpow(z, x, k)
			return nil
		}
	}
	if x.Sign() < 0 {
		if !y.IsInt() {
			return &DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "^"}
		}
		i, _ := y.Int(nil)
		t := new(big.Float).SetPrec(z.Prec()).Neg(x)
		z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), t, y))
		if i.Bit(0) == 1 {
			z.Neg(z)
		}
		return nil
	}
	z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), x, y))
	return nil
}

// intpow sets z to x^k by repeated squaring. z may alias x.
func intpow(z, x *big.Float, k int64) {
	neg := k < 0
	if neg {
		k = -k
	}
	b := new(big.Float).SetPrec(z.Prec()).Set(x)
	r := new(big.Float).SetPrec(z.Prec()).SetInt64(1)
	for ; k > 0; k >>= 1 {
		if k&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
	}
	if neg {
		r.Quo(new(big.Float).SetPrec(z.Prec()).SetInt64(1), r)
	}
	z.Set(r)
}

// Evaluate evaluates e with every variable substituted from vars and returns
// the result rounded to digits significant decimal digits. Variables of vars
// which e does not use are ignored. Each call uses its own context, so
// evaluating the same expression with the same inputs always gives the same
// result.
func Evaluate(e *Expr, vars map[string]*big.Float, digits int) (*big.Float, error) {
	ctx := NewContext(Prec(digits), SetVars(vars))
	r := ctx.Eval(e)
	if r == nil {
		return nil, ctx.Err()
	}
	return r, nil
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	a, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	ctx := NewContext(opts...)
	r := ctx.Eval(a)
	return r, ctx.Err()
}
