// Package report writes the results of analyses.
package report

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/expr"
)

// Write writes r in the named format, "text" or "yaml". Results and errors
// are shown multiplied by 10^scale.
func Write(w io.Writer, format string, r *uncertainty.Report, scale int) error {
	switch format {
	case "text", "":
		return Text(w, r, scale)
	case "yaml":
		return YAML(w, r, scale)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Text writes r as lines of the form "-> name = value". If scale is not zero,
// results and errors are written as "-> name = v * 10 ^ (-scale)" where v is
// the value times 10^scale. Averages are never scaled.
func Text(w io.Writer, r *uncertainty.Report, scale int) error {
	p := printer{w: w}
	p.scaled("formula result", r.Result, r.Digits, scale)
	for _, q := range r.Vars {
		p.line("avg value of "+q.Name, format(q.Average, r.Digits))
	}
	for _, q := range r.Vars {
		p.scaled("error for "+q.Name, q.Error, r.Digits, scale)
	}
	p.scaled("formula error", r.ResultError, r.Digits, scale)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(name, value string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "-> %s = %s\n", name, value)
}

func (p *printer) scaled(name string, x *big.Float, digits, scale int) {
	if scale == 0 {
		p.line(name, format(x, digits))
		return
	}
	p.line(name, format(Scale(x, digits, scale), digits)+" * 10 ^ ("+strconv.Itoa(-scale)+")")
}

// Scale returns x·10^k rounded to digits significant digits.
func Scale(x *big.Float, digits, k int) *big.Float {
	r, _ := x.Rat(nil)
	if r == nil {
		return new(big.Float).Copy(x)
	}
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(k))), nil)
	if k > 0 {
		r.Mul(r, new(big.Rat).SetInt(p))
	} else {
		r.Quo(r, new(big.Rat).SetInt(p))
	}
	z := new(big.Float).SetPrec(expr.Bits(digits)).SetRat(r)
	return expr.Round(z, z, digits)
}

func abs(k int) int {
	if k < 0 {
		return -k
	}
	return k
}

// format formats x with at most digits significant digits.
func format(x *big.Float, digits int) string {
	return x.Text('g', digits)
}

type document struct {
	Formula   string     `yaml:"formula"`
	Digits    int        `yaml:"digits"`
	Scale     int        `yaml:"scale,omitempty"`
	Result    number     `yaml:"result"`
	Error     number     `yaml:"error"`
	Variables []variable `yaml:"variables"`
}

type variable struct {
	Name           string `yaml:"name"`
	Average        number `yaml:"average"`
	Error          number `yaml:"error"`
	AverageDerived bool   `yaml:"average_derived,omitempty"`
	ErrorDerived   bool   `yaml:"error_derived,omitempty"`
	Measurements   int    `yaml:"measurements,omitempty"`
}

// number is a decimal written as a plain YAML scalar rather than a string.
type number string

func (n number) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: string(n)}, nil
}

// YAML writes r as a YAML document. Results and errors are multiplied by
// 10^scale, and the document records scale.
func YAML(w io.Writer, r *uncertainty.Report, scale int) error {
	doc := document{
		Formula:   r.Formula,
		Digits:    r.Digits,
		Scale:     scale,
		Result:    number(format(Scale(r.Result, r.Digits, scale), r.Digits)),
		Error:     number(format(Scale(r.ResultError, r.Digits, scale), r.Digits)),
		Variables: make([]variable, 0, len(r.Vars)),
	}
	for _, q := range r.Vars {
		doc.Variables = append(doc.Variables, variable{
			Name:           q.Name,
			Average:        number(format(q.Average, r.Digits)),
			Error:          number(format(Scale(q.Error, r.Digits, scale), r.Digits)),
			AverageDerived: q.AverageDerived,
			ErrorDerived:   q.ErrorDerived,
			Measurements:   q.N,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
