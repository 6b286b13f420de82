package expr

import (
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []token
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []token{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []token{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []token{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []token{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []token{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e1", []token{{text: "1e1", kind: tokenNum, pos: 1}}, 0},
		{"1e", []token{{pos: 1}}, 1},
		{"1e+1", []token{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1e-1", []token{{text: "1e-1", kind: tokenNum, pos: 1}}, 0},
		{"1.0e1", []token{{text: "1.0e1", kind: tokenNum, pos: 1}}, 0},
		{".1", []token{{text: ".1", kind: tokenNum, pos: 1}}, 0},
		{".1e1", []token{{text: ".1e1", kind: tokenNum, pos: 1}}, 0},
		{"1+0", []token{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1*0", []token{{text: "1", kind: tokenNum, pos: 1}, {text: "*", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"(1)", []token{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		// identifiers
		{"e", []token{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []token{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"π", []token{{text: "π", kind: tokenIdent, pos: 1}}, 0},
		{"eπ", []token{{text: "eπ", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []token{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"e(", []token{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, 0},
		// operators
		{"+", []token{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []token{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []token{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"x**2", []token{{text: "x", kind: tokenIdent, pos: 1}, {text: "**", kind: tokenOp, pos: 2}, {text: "2", kind: tokenNum, pos: 4}}, 0},
		{"x***2", []token{{text: "x", kind: tokenIdent, pos: 1}, {text: "**", kind: tokenOp, pos: 2}, {text: "*", kind: tokenOp, pos: 4}, {text: "2", kind: tokenNum, pos: 5}}, 0},
		{"x*", []token{{text: "x", kind: tokenIdent, pos: 1}, {text: "*", kind: tokenOp, pos: 2}}, 0},
		{"a×b", []token{{text: "a", kind: tokenIdent, pos: 1}, {text: "×", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		// brackets and separators
		{"()", []token{{text: "(", kind: tokenOpen, pos: 1}, {text: ")", kind: tokenClose, pos: 2}}, 0},
		{"[]", []token{{text: "[", kind: tokenOpen, pos: 1}, {text: "]", kind: tokenClose, pos: 2}}, 0},
		{"{}", []token{{text: "{", kind: tokenOpen, pos: 1}, {text: "}", kind: tokenClose, pos: 2}}, 0},
		{"a,b", []token{{text: "a", kind: tokenIdent, pos: 1}, {text: ",", kind: tokenSep, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		// erroneous symbols
		{"$", []token{{pos: 1}}, 1},
		{"a$", []token{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
			continue
		}
		// The input must end cleanly with one EOF token.
		got, err := scan.next()
		if err != nil || got.kind != tokenEOF {
			t.Errorf("scanning %q: want EOF, got %v with error %v", c.src, got, err)
		}
		if _, err := scan.next(); err != io.EOF {
			t.Errorf("scanning %q: second EOF gave error %v", c.src, err)
		}
	}
}

func TestLexErrorMessage(t *testing.T) {
	scan := lex(strings.NewReader("1.2.3"))
	_, err := scan.next()
	if err == nil {
		t.Fatal("no error from bad number")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error %#v is not *LexError", err)
	}
	if le.Kind != "number" {
		t.Errorf("wrong kind: want number, got %q", le.Kind)
	}
	if !strings.Contains(le.Error(), "1.2.") {
		t.Errorf("message %q doesn't contain the bad token", le.Error())
	}
}

func TestLexPushBack(t *testing.T) {
	scan := lex(strings.NewReader("f(x)"))
	f, _ := scan.next()
	open, _ := scan.next()
	x, err := scan.peek()
	if err != nil || x.text != "x" {
		t.Fatalf("peek: got %v with error %v", x, err)
	}
	// Pushing the bracket back after peeking leaves two tokens pending.
	scan.push(open)
	for _, want := range []string{"(", "x", ")"} {
		tok, err := scan.next()
		if err != nil || tok.text != want {
			t.Errorf("want %q, got %v with error %v", want, tok, err)
		}
	}
	if f.kind != tokenIdent {
		t.Errorf("first token should be identifier, got %v", f)
	}
}
