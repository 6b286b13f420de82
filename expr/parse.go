package expr

import (
	"io"
	"sort"
	"strings"
)

// The grammar, loosest binding first:
//
//	sum     = product { ('+' | '-') product }
//	product = terms { ('*' | '×' | '·' | '/' | '÷') terms }
//	terms   = unary [ terms ]
//	unary   = ('+' | '-') unary | power
//	power   = primary [ ('^' | '**') unary ]
//	primary = num | name | call | open sum close
//	call    = func [ ('^' | '**') unary ] [ terms | open [ sum { ',' sum } ] close ]
//
// A second term in terms must begin with a number, name, or open bracket.

// Expr is a parsed expression over named variables. An Expr is immutable and
// safe for concurrent use.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the sorted list of variable names used in the expression.
	names []string
}

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(*parser)
}

type (
	funcopt struct {
		name string
		fn   Func
	}
	funcsopt map[string]Func
)

// parser holds the state of a single parse.
type parser struct {
	scan *lexer
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// funcs maps names to the functions they call. A nil Func makes its name
	// an ordinary variable.
	funcs map[string]Func
}

func (p *parser) own() {
	if p.funcs != nil {
		return
	}
	p.funcs = make(map[string]Func, len(globalfuncs))
	for k, v := range globalfuncs {
		p.funcs[k] = v
	}
}

// ParseFunc sets a function for parsing. To disable parsing a function, so
// that its name is read as a variable, pass nil for fn.
func ParseFunc(name string, fn Func) ParseOption {
	return &funcopt{name, fn}
}

func (o *funcopt) parseOption(p *parser) {
	p.own()
	p.funcs[o.name] = o.fn
}

// ParseFuncs sets a group of functions for parsing. To disable parsing any
// function, set it to nil.
func ParseFuncs(fns map[string]Func) ParseOption {
	return funcsopt(fns)
}

func (o funcsopt) parseOption(p *parser) {
	p.own()
	for k, v := range o {
		p.funcs[k] = v
	}
}

// DisableDefaultFuncs disables all default functions during parsing. Their
// names will be parsed as variables instead.
func DisableDefaultFuncs() ParseOption {
	m := make(funcsopt, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}

// Parse parses an expression so it can be evaluated and differentiated. The
// given options are applied in order. The whole of src must be a single
// expression.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parser{
		scan:  lex(src),
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		opt.parseOption(&p)
	}
	if p.funcs == nil {
		p.funcs = globalfuncs
	}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenEOF {
		return nil, unexpected(tok, "")
	}
	if n == nil {
		return nil, &EmptyExpressionError{Col: tok.pos}
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sort.Strings(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Each parsing method below returns nil with no error when the input has no
// expression where one could start, leaving the token that ended it pushed
// back. Callers decide whether an empty subexpression is an error.

// sum parses terms joined by addition and subtraction.
func (p *parser) sum() (*node, error) {
	return p.chain(precSum, p.product)
}

// product parses terms joined by explicit multiplication and division.
func (p *parser) product() (*node, error) {
	return p.chain(precProd, p.terms)
}

// chain parses left-associative binary operations at one precedence level.
func (p *parser) chain(prec int8, operand func() (*node, error)) (*node, error) {
	n, err := operand()
	if err != nil || n == nil {
		return nil, err
	}
	for {
		tok, err := p.scan.next()
		if err != nil {
			return nil, err
		}
		op := binop(tok.text)
		if tok.kind != tokenOp || op.prec != prec {
			p.scan.push(tok)
			return n, nil
		}
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, p.empty()
		}
		n = &node{kind: op.op, left: n, right: rhs}
	}
}

// terms parses a product written as adjacent terms, as in 2 x or m (v-u).
// Adjacent terms group to the right, so x y z is x*(y*z).
func (p *parser) terms() (*node, error) {
	n, err := p.unary()
	if err != nil || n == nil {
		return nil, err
	}
	tok, err := p.scan.peek()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum, tokenIdent, tokenOpen:
		rhs, err := p.terms()
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeMul, left: n, right: rhs}
	}
	return n, nil
}

// unary parses a power with any leading signs. Signs bind more loosely than
// exponentiation, so -x^2 is -(x^2), but x^-2 is x^(-2).
func (p *parser) unary() (*node, error) {
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOp {
		p.scan.push(tok)
		return p.power()
	}
	op := unop(tok.text)
	if op.op == nodeNone {
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	}
	n, err := p.unary()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, p.empty()
	}
	return &node{kind: op.op, left: n}, nil
}

// power parses a primary with an optional exponent. Exponentiation groups to
// the right.
func (p *parser) power() (*node, error) {
	n, err := p.primary()
	if err != nil || n == nil {
		return nil, err
	}
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	if !ispow(tok) {
		p.scan.push(tok)
		return n, nil
	}
	up, err := p.unary()
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, p.empty()
	}
	return &node{kind: nodePow, left: n, right: up}, nil
}

// primary parses a number, variable, function call, or bracketed
// subexpression.
func (p *parser) primary() (*node, error) {
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return &node{kind: nodeNum, name: tok.text}, nil
	case tokenIdent:
		fn := p.funcs[tok.text]
		if fn == nil {
			p.names[tok.text] = true
			return &node{kind: nodeName, name: tok.text}, nil
		}
		return p.call(tok.text, fn)
	case tokenOpen:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		end, err := p.scan.next()
		if err != nil {
			return nil, err
		}
		if !closes(tok, end) {
			return nil, unexpected(end, tok.text)
		}
		if n == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return n, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenOp:
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	default:
		p.scan.push(tok)
		return nil, nil
	}
}

// call parses the arguments of a call to fn after its name.
//
// A bracket after the name holds the argument list. Without one, a function
// of one argument takes the following adjacent terms, so sin 2 x is
// sin(2*x). An exponent may come between the name and the arguments, so
// sin^2 x is (sin x)^2. A function that can be called with no arguments but
// not with one leaves a nonempty bracket after it as a separate term, so
// pi(r+1) is pi*(r+1).
func (p *parser) call(name string, fn Func) (*node, error) {
	n := &node{kind: nodeCall, name: name, fn: fn}
	tok, err := p.scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenOp:
		if ispow(tok) {
			up, err := p.unary()
			if err != nil {
				return nil, err
			}
			if up == nil {
				return nil, p.empty()
			}
			c, err := p.call(name, fn)
			if err != nil {
				return nil, err
			}
			return &node{kind: nodePow, left: c, right: up}, nil
		}
		// Any other operator starts the argument, as in sin -x.
		fallthrough
	case tokenNum, tokenIdent:
		p.scan.push(tok)
		switch {
		case fn.CanCall(1):
			arg, err := p.terms()
			if err != nil {
				return nil, err
			}
			n.right = &node{kind: nodeArg, left: arg}
		case fn.CanCall(0):
			// pi x is pi*x, which the caller sees as adjacent terms.
		default:
			return nil, &CallError{Col: tok.pos, Func: name, Len: 1}
		}
		return n, nil
	case tokenOpen:
		if fn.CanCall(0) && !fn.CanCall(1) {
			end, err := p.scan.next()
			if err != nil {
				return nil, err
			}
			if !closes(tok, end) {
				p.scan.push(end)
				p.scan.push(tok)
			}
			return n, nil
		}
		args, k, err := p.arglist(tok)
		if err != nil {
			return nil, err
		}
		if !fn.CanCall(k) {
			return nil, &CallError{Col: tok.pos, Func: name, Len: k}
		}
		n.right = args
		return n, nil
	default:
		if !fn.CanCall(0) {
			return nil, &CallError{Col: tok.pos, Func: name}
		}
		p.scan.push(tok)
		return n, nil
	}
}

// arglist parses a comma-separated argument list after its open bracket. The
// result is the list of nodeArg nodes and its length.
func (p *parser) arglist(open token) (*node, int, error) {
	var head node
	last := &head
	k := 0
	for {
		arg, err := p.sum()
		if err != nil {
			return nil, 0, err
		}
		end, err := p.scan.next()
		if err != nil {
			return nil, 0, err
		}
		switch {
		case end.kind == tokenSep:
			if arg == nil {
				return nil, 0, &SeparatorError{Col: end.pos, Sep: end.text}
			}
		case closes(open, end):
			if arg == nil {
				// f() is allowed, but f(a,) isn't.
				if k != 0 {
					return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, 0, nil
			}
		default:
			return nil, 0, unexpected(end, open.text)
		}
		last.right = &node{kind: nodeArg, left: arg}
		last = last.right
		k++
		if end.kind != tokenSep {
			return head.right, k, nil
		}
	}
}

// empty creates the error for a missing operand, which ends at the next
// token.
func (p *parser) empty() error {
	tok, err := p.scan.peek()
	if err != nil {
		return err
	}
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

// closes reports whether end is the close bracket matching open.
func closes(open, end token) bool {
	return end.kind == tokenClose && closer[open.text] == end.text
}

// ispow reports whether tok is an exponentiation operator.
func ispow(tok token) bool {
	return tok.kind == tokenOp && binop(tok.text).op == nodePow
}

// unexpected creates the error for tok ending a subexpression that should
// have ended with the close bracket for open, or with the end of input if open
// is empty.
func unexpected(tok token, open string) error {
	switch tok.kind {
	case tokenEOF:
		return &BracketError{Col: tok.pos, Left: open}
	case tokenClose:
		return &BracketError{Col: tok.pos, Left: open, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		return &OperatorError{Col: tok.pos, Operator: tok.text}
	}
}

// Vars returns the variable names used in the expression in lexicographic
// order.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String formats the expression in infix notation. The result parses back to
// an equivalent expression.
func (e *Expr) String() string {
	return e.n.String()
}

// Precedence levels, from loosest to tightest. Adjacent terms multiply at
// precProd.
const (
	precSum  int8 = 1
	precProd int8 = 5
	precSign int8 = 10
	precPow  int8 = 15
)

type operator struct {
	// prec is the precedence level.
	prec int8
	// op is the node kind the operator creates.
	op nodeKind
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{precSum, nodeAdd}
	case "-":
		return operator{precSum, nodeSub}
	case "*", "×", "·":
		return operator{precProd, nodeMul}
	case "/", "÷":
		return operator{precProd, nodeDiv}
	case "^", "**":
		return operator{precPow, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{precSign, nodeNop}
	case "-":
		return operator{precSign, nodeNeg}
	default:
		return operator{}
	}
}
