package expr

import (
	"sort"
)

// Diff returns the exact partial derivative of e with respect to the variable
// v. Variables other than v are treated as constants. If e does not use v, the
// result is the constant 0. The derivative of a call to a function other than
// the default functions results in a *DiffError, unless the function is
// niladic.
//
// The result is simplified only by removing additions of zero and
// multiplications by zero or one, so it may be larger than a hand-derived
// formula, but it evaluates to the same values wherever both are defined.
func (e *Expr) Diff(v string) (*Expr, error) {
	d, err := e.n.diff(v)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(e.names))
	d.vars(names)
	r := Expr{n: d, names: make([]string, 0, len(names))}
	for k := range names {
		r.names = append(r.names, k)
	}
	sort.Strings(r.names)
	return &r, nil
}

// diff builds the derivative of the tree rooted at n. Subtrees of n that are
// constant with respect to v are shared with the result.
func (n *node) diff(v string) (*node, error) {
	if !n.uses(v) {
		return zero, nil
	}
	switch n.kind {
	case nodeName:
		// n uses v, so this is v itself.
		return one, nil
	case nodeNeg:
		u, err := n.left.diff(v)
		if err != nil {
			return nil, err
		}
		return negn(u), nil
	case nodeNop:
		return n.left.diff(v)
	case nodeAdd, nodeSub:
		a, err := n.left.diff(v)
		if err != nil {
			return nil, err
		}
		b, err := n.right.diff(v)
		if err != nil {
			return nil, err
		}
		if n.kind == nodeAdd {
			return addn(a, b), nil
		}
		return subn(a, b), nil
	case nodeMul:
		// (fg)' = f'g + fg'
		a, err := n.left.diff(v)
		if err != nil {
			return nil, err
		}
		b, err := n.right.diff(v)
		if err != nil {
			return nil, err
		}
		return addn(muln(a, n.right), muln(n.left, b)), nil
	case nodeDiv:
		// (f/g)' = f'/g - f g'/g^2
		a, err := n.left.diff(v)
		if err != nil {
			return nil, err
		}
		b, err := n.right.diff(v)
		if err != nil {
			return nil, err
		}
		return subn(divn(a, n.right), divn(muln(n.left, b), pown(n.right, two))), nil
	case nodePow:
		return n.diffpow(v)
	case nodeCall:
		return n.diffcall(v)
	default:
		panic("expr: cannot differentiate node " + n.kind.String())
	}
}

func (n *node) diffpow(v string) (*node, error) {
	f, g := n.left, n.right
	switch {
	case !g.uses(v):
		// (f^c)' = c f^(c-1) f'
		a, err := f.diff(v)
		if err != nil {
			return nil, err
		}
		return muln(muln(g, pown(f, subn(g, one))), a), nil
	case !f.uses(v):
		// (c^g)' = c^g ln(c) g'
		b, err := g.diff(v)
		if err != nil {
			return nil, err
		}
		return muln(muln(n, calln(fnLn, f)), b), nil
	default:
		// (f^g)' = f^g (g' ln f + g f'/f)
		a, err := f.diff(v)
		if err != nil {
			return nil, err
		}
		b, err := g.diff(v)
		if err != nil {
			return nil, err
		}
		return muln(n, addn(muln(b, calln(fnLn, f)), divn(muln(g, a), f))), nil
	}
}

func (n *node) diffcall(v string) (*node, error) {
	b, ok := n.fn.(*builtin)
	if !ok {
		return nil, &DiffError{Func: n.name}
	}
	if n.right == nil || n.right.right != nil {
		// Builtins take at most one argument, and niladic calls can't use v.
		panic("expr: bad argument list for " + n.name)
	}
	u := n.right.left
	du, err := u.diff(v)
	if err != nil {
		return nil, err
	}
	return muln(b.deriv(n, u), du), nil
}

// deriv returns the derivative of the builtin with respect to its argument,
// evaluated at u. call is the node calling b with u.
func (b *builtin) deriv(call, u *node) *node {
	switch b {
	case fnExp:
		return call
	case fnLn, fnLog:
		return divn(one, u)
	case fnLog10:
		return divn(one, muln(u, calln(fnLn, num("10"))))
	case fnSqrt:
		return divn(one, muln(two, call))
	case fnSin:
		return calln(fnCos, u)
	case fnCos:
		return negn(calln(fnSin, u))
	case fnTan:
		return divn(one, pown(calln(fnCos, u), two))
	default:
		panic("expr: no derivative for " + b.name)
	}
}

var (
	zero = num("0")
	one  = num("1")
	two  = num("2")
)

func num(s string) *node {
	return &node{kind: nodeNum, name: s}
}

func iszero(n *node) bool {
	return n.kind == nodeNum && n.name == "0"
}

func isone(n *node) bool {
	return n.kind == nodeNum && n.name == "1"
}

func addn(a, b *node) *node {
	switch {
	case iszero(a):
		return b
	case iszero(b):
		return a
	}
	return &node{kind: nodeAdd, left: a, right: b}
}

func subn(a, b *node) *node {
	switch {
	case iszero(b):
		return a
	case iszero(a):
		return negn(b)
	}
	return &node{kind: nodeSub, left: a, right: b}
}

func negn(a *node) *node {
	switch {
	case iszero(a):
		return a
	case a.kind == nodeNeg:
		return a.left
	}
	return &node{kind: nodeNeg, left: a}
}

func muln(a, b *node) *node {
	switch {
	case iszero(a), iszero(b):
		return zero
	case isone(a):
		return b
	case isone(b):
		return a
	}
	return &node{kind: nodeMul, left: a, right: b}
}

func divn(a, b *node) *node {
	switch {
	case iszero(a):
		return zero
	case isone(b):
		return a
	}
	return &node{kind: nodeDiv, left: a, right: b}
}

func pown(a, b *node) *node {
	switch {
	case iszero(b):
		return one
	case isone(b):
		return a
	}
	return &node{kind: nodePow, left: a, right: b}
}

func calln(b *builtin, arg *node) *node {
	return &node{kind: nodeCall, name: b.name, fn: b, right: &node{kind: nodeArg, left: arg}}
}
