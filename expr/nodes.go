package expr

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Nodes are
// never modified after parsing; derivatives share subtrees with their source.
type node struct {
	kind nodeKind

	name string
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall // name is Func to call, right is link to nodeArg unless niladic
	nodeArg  // eval left, right is link to next arg

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeName:
		return "Name"
	case nodeCall:
		return "Call"
	case nodeArg:
		return "Arg"
	case nodeNeg:
		return "Neg"
	case nodeAdd:
		return "Add"
	case nodeSub:
		return "Sub"
	case nodeMul:
		return "Mul"
	case nodeDiv:
		return "Div"
	case nodePow:
		return "Pow"
	case nodeNop:
		return "Nop"
	}
	return "nodeKind(" + strconv.Itoa(int(k)) + ")"
}

// binding is how tightly a node holds together when printed. Children that
// bind more loosely than their parent are parenthesized.
func (n *node) binding() int8 {
	switch n.kind {
	case nodeAdd, nodeSub:
		return precSum
	case nodeMul, nodeDiv:
		return precProd
	case nodeNeg, nodeNop:
		return precSign
	case nodePow:
		return precPow
	default:
		return 100
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes n in infix notation with the fewest brackets that parse back to
// the same tree.
func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		if n.right == nil && !n.fn.CanCall(1) {
			return
		}
		n.fmtargs(b)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b)
		if n.right != nil {
			n.right.fmt(b)
		}
	case nodeNeg, nodeNop:
		if n.kind == nodeNeg {
			b.WriteByte('-')
		} else {
			b.WriteByte('+')
		}
		n.left.fmtchild(b, n.left.binding() < n.binding())
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		// Left associative: a right operand at the same level needs brackets.
		n.left.fmtchild(b, n.left.binding() < n.binding())
		switch n.kind {
		case nodeAdd:
			b.WriteString(" + ")
		case nodeSub:
			b.WriteString(" - ")
		case nodeMul:
			b.WriteString(" * ")
		case nodeDiv:
			b.WriteString(" / ")
		}
		n.right.fmtchild(b, n.right.binding() <= n.binding())
	case nodePow:
		// Right associative.
		n.left.fmtchild(b, n.left.binding() <= n.binding())
		b.WriteString("^")
		n.right.fmtchild(b, n.right.binding() < n.binding())
	default:
		panic("expr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtchild(b *strings.Builder, paren bool) {
	if !paren {
		n.fmt(b)
		return
	}
	b.WriteByte('(')
	n.fmt(b)
	b.WriteByte(')')
}

func (n *node) fmtargs(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	for a := n.right; a != nil; a = a.right {
		if a.kind != nodeArg {
			b.WriteString("***")
			a.fmt(b)
			return
		}
		if a != n.right {
			b.WriteString(", ")
		}
		a.left.fmt(b)
	}
}

// uses reports whether the tree rooted at n refers to the variable name.
func (n *node) uses(name string) bool {
	if n == nil {
		return false
	}
	if n.kind == nodeName {
		return n.name == name
	}
	return n.left.uses(name) || n.right.uses(name)
}

// vars collects the variable names in the tree rooted at n.
func (n *node) vars(into map[string]bool) {
	if n == nil {
		return
	}
	if n.kind == nodeName {
		into[n.name] = true
		return
	}
	n.left.vars(into)
	n.right.vars(into)
}
