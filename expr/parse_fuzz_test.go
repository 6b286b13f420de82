package expr_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/uncertainty/expr"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("x**2 / sin y")
	f.Add("m(v-u)")
	f.Add("(a+b)(c+d)")
	f.Add("pi(r+1)^2")
	f.Fuzz(func(t *testing.T, s string) {
		a, err := expr.Parse(strings.NewReader(s))
		if err != nil {
			return
		}
		for _, v := range a.Vars() {
			if _, err := a.Diff(v); err != nil {
				t.Errorf("%q: derivative by %s: %v", s, v, err)
			}
		}
	})
}
