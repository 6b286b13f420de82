package expr

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type token struct {
	text string
	kind tokenKind
	pos  int
}

func (t token) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal number, e.g. 1.5e-3.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator. "**" is a single token.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep separates function arguments.
	tokenSep
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	}
	return "tokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Operators contains the runes which begin operators. A doubled * is
// exponentiation, as in "x**2".
const Operators = "+-*/^×÷·"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The k-th rune of OpenBrackets is matched with the k-th rune of
// CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// symbols maps each rune that is a token by itself to its kind.
var symbols = func() map[rune]tokenKind {
	m := map[rune]tokenKind{',': tokenSep}
	for _, r := range Operators {
		m[r] = tokenOp
	}
	for _, r := range OpenBrackets {
		m[r] = tokenOpen
	}
	for _, r := range CloseBrackets {
		m[r] = tokenClose
	}
	return m
}()

// closer maps each open bracket to its close bracket.
var closer = func() map[string]string {
	m := make(map[string]string)
	cl := []rune(CloseBrackets)
	for k, r := range []rune(OpenBrackets) {
		m[string(r)] = string(cl[k])
	}
	return m
}()

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	// back holds pushed tokens, last pushed at the end.
	back []token
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next.
func (l *lexer) push(tok token) {
	l.back = append(l.back, tok)
}

// peek returns the next token without consuming it.
func (l *lexer) peek() (token, error) {
	tok, err := l.next()
	if err != nil {
		return tok, err
	}
	l.push(tok)
	return tok, nil
}

func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src. Panics if unreading returns an
// error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF.
func (l *lexer) next() (token, error) {
	if k := len(l.back) - 1; k >= 0 {
		tok := l.back[k]
		l.back = l.back[:k]
		return tok, nil
	}
	if l.eof {
		return token{}, io.EOF
	}
	defer l.buf.Reset()
	tok := token{pos: l.rune}
	r, err := l.readRune()
	for err == nil && unicode.IsSpace(r) {
		tok.pos++
		r, err = l.readRune()
	}
	switch {
	case errors.Is(err, io.EOF):
		l.eof = true
		tok.kind = tokenEOF
		return tok, nil
	case err != nil:
		return tok, err
	}
	if kind := symbols[r]; kind != tokenNone {
		tok.kind, tok.text = kind, string(r)
		if r == '*' {
			if _, ok := l.accept("*"); ok {
				tok.text = "**"
			}
		}
		return tok, nil
	}
	scan := l.scanIdent
	switch {
	case '0' <= r && r <= '9', r == '.':
		tok.kind, scan = tokenNum, l.scanNum
	case r == '_', unicode.IsLetter(r):
		tok.kind = tokenIdent
	default:
		// Write the rune so that it shows up in the error message.
		l.buf.WriteRune(r)
		return token{pos: tok.pos}, l.error("")
	}
	l.unreadRune()
	if err := scan(); err != nil {
		return token{pos: tok.pos}, err
	}
	tok.text = l.buf.String()
	return tok, nil
}

// accept consumes the next rune if it is in set.
func (l *lexer) accept(set string) (rune, bool) {
	r, err := l.readRune()
	if err != nil {
		return 0, false
	}
	if !strings.ContainsRune(set, r) {
		l.unreadRune()
		return 0, false
	}
	return r, true
}

// digits scans decimal digits and returns how many there were.
func (l *lexer) digits() int {
	n := 0
	for {
		r, ok := l.accept("0123456789")
		if !ok {
			return n
		}
		l.buf.WriteRune(r)
		n++
	}
}

// scanNum scans a decimal number: digits with at most one point, then
// optionally e or E, a sign, and exponent digits. The number must be followed
// by space, a symbol, or the end of input.
func (l *lexer) scanNum() error {
	n := l.digits()
	if _, ok := l.accept("."); ok {
		l.buf.WriteByte('.')
		n += l.digits()
	}
	if n == 0 {
		return l.error("number")
	}
	if r, ok := l.accept("eE"); ok {
		l.buf.WriteRune(r)
		if r, ok := l.accept("+-"); ok {
			l.buf.WriteRune(r)
		}
		if l.digits() == 0 {
			return l.error("number")
		}
	}
	r, err := l.readRune()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	case unicode.IsSpace(r), symbols[r] != tokenNone:
		l.unreadRune()
		return nil
	}
	l.buf.WriteRune(r)
	return l.error("number")
}

// scanIdent scans letters, digits, and underscores.
func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning: "number" or the empty
	// string if a token kind hadn't been decided.
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
