package expr_test

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/zephyrtronium/uncertainty/expr"
)

func TestDiff(t *testing.T) {
	cases := []struct {
		name string
		src  string
		v    string
		at   map[string]float64
		want string
	}{
		{"const", "2", "x", map[string]float64{"x": 1}, "0"},
		{"other", "y^2", "x", map[string]float64{"x": 1, "y": 3}, "0"},
		{"self", "x", "x", map[string]float64{"x": 5}, "1"},
		{"neg", "-x", "x", map[string]float64{"x": 5}, "-1"},
		{"sum", "x + x + 3", "x", map[string]float64{"x": 5}, "2"},
		{"diff", "3 - x", "x", map[string]float64{"x": 5}, "-1"},
		{"product", "x*y", "x", map[string]float64{"x": 2, "y": 5}, "5"},
		{"product-y", "x*y", "y", map[string]float64{"x": 2, "y": 5}, "2"},
		{"square", "x*x", "x", map[string]float64{"x": 3}, "6"},
		{"quotient", "x/y", "y", map[string]float64{"x": 1, "y": 2}, "-0.25"},
		{"quotient-x", "x/y", "x", map[string]float64{"x": 1, "y": 4}, "0.25"},
		{"power", "x^3", "x", map[string]float64{"x": 2}, "12"},
		{"power-neg", "x^-1", "x", map[string]float64{"x": 2}, "-0.25"},
		{"power-neg-base", "x^2", "x", map[string]float64{"x": -3}, "-6"},
		{"exponential", "2^x", "x", map[string]float64{"x": 0}, "0.693147180559945"},
		{"general-power", "x^x", "x", map[string]float64{"x": 1}, "1"},
		{"exp", "exp(2 x)", "x", map[string]float64{"x": 0}, "2"},
		{"ln", "ln(x)", "x", map[string]float64{"x": 4}, "0.25"},
		{"log", "log(x)", "x", map[string]float64{"x": 4}, "0.25"},
		{"log10", "log10(x)", "x", map[string]float64{"x": 1}, "0.434294481903252"},
		{"E", "E x", "x", map[string]float64{"x": 3}, "2.71828182845905"},
		{"sqrt", "sqrt(x)", "x", map[string]float64{"x": 4}, "0.25"},
		{"sin", "sin(x)", "x", map[string]float64{"x": 0}, "1"},
		{"cos", "cos(x)", "x", map[string]float64{"x": 1}, "-0.841470984807897"},
		{"tan", "tan(x)", "x", map[string]float64{"x": 0}, "1"},
		{"chain", "sin(x^2)", "x", map[string]float64{"x": 0}, "0"},
		{"pi", "pi x", "x", map[string]float64{"x": 7}, "3.14159265358979"},
		{"ohm", "u/i", "i", map[string]float64{"u": 10, "i": 2}, "-2.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := expr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			d, err := a.Diff(c.v)
			if err != nil {
				t.Fatalf("couldn't differentiate %q by %s: %v", c.src, c.v, err)
			}
			at := make(map[string]*big.Float, len(c.at))
			for k, v := range c.at {
				at[k] = big.NewFloat(v)
			}
			r, err := expr.Evaluate(d, at, 15)
			if err != nil {
				t.Fatalf("couldn't evaluate %v: %v", d, err)
			}
			if s := r.Text('g', 15); s != c.want {
				t.Errorf("d(%s)/d%s = %v gave wrong value: want %s, got %s", c.src, c.v, d, c.want, s)
			}
		})
	}
}

func TestDiffString(t *testing.T) {
	cases := []struct {
		name string
		src  string
		v    string
		want string
	}{
		{"const", "y", "x", "0"},
		{"self", "x", "x", "1"},
		{"product", "x*y", "x", "y"},
		{"quotient", "x/y", "x", "1 / y"},
		{"sin", "sin(x)", "x", "cos(x)"},
		{"cos", "cos(x)", "x", "-sin(x)"},
		{"chain", "exp(2 x)", "x", "exp(2 * x) * 2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := expr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			d, err := a.Diff(c.v)
			if err != nil {
				t.Fatal(err)
			}
			if s := d.String(); s != c.want {
				t.Errorf("d(%s)/d%s: want %q, got %q", c.src, c.v, c.want, s)
			}
			// The result must parse back.
			if _, err := expr.ParseString(d.String()); err != nil {
				t.Errorf("%q doesn't parse: %v", d, err)
			}
		})
	}
}

func TestDiffVars(t *testing.T) {
	a, err := expr.ParseString("x*y + z")
	if err != nil {
		t.Fatal(err)
	}
	d, err := a.Diff("x")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := d.Vars(), []string{"y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("wrong variables: want %q, got %q", want, got)
	}
	if got, want := a.Vars(), []string{"x", "y", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("source expression changed variables: want %q, got %q", want, got)
	}
}

func TestDiffDomain(t *testing.T) {
	// d/dx sqrt(x) is undefined at 0 even though sqrt(0) is defined.
	a, err := expr.ParseString("sqrt(x)")
	if err != nil {
		t.Fatal(err)
	}
	d, err := a.Diff("x")
	if err != nil {
		t.Fatal(err)
	}
	_, err = expr.Evaluate(d, map[string]*big.Float{"x": new(big.Float)}, 15)
	if !errors.As(err, new(*expr.DomainError)) {
		t.Errorf("want DomainError, got %v", err)
	}
}

func TestDiffUnknownFunc(t *testing.T) {
	f := expr.Monadic(func(out, in *big.Float) *big.Float { return out.Set(in) })
	a, err := expr.ParseString("f(x) + y", expr.ParseFunc("f", f))
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Diff("x")
	var de *expr.DiffError
	if !errors.As(err, &de) {
		t.Fatalf("want DiffError, got %v", err)
	}
	if de.Func != "f" {
		t.Errorf("wrong function: want f, got %q", de.Func)
	}
	// The unknown function doesn't involve y.
	if _, err := a.Diff("y"); err != nil {
		t.Errorf("derivative by y: %v", err)
	}
}
