package source

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/expr"
)

// Prompt is a MeasurementSource that asks a person for each value, one line
// at a time. Questions begin with "<-" and remarks with "->". Invalid answers
// are reported and asked again.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

var _ uncertainty.MeasurementSource = (*Prompt)(nil)

// NewPrompt creates a prompter reading answers from r and writing questions
// to w.
func NewPrompt(r io.Reader, w io.Writer) *Prompt {
	return &Prompt{in: bufio.NewScanner(r), out: w}
}

// Print writes a remark.
func (p *Prompt) Print(s string) {
	fmt.Fprintf(p.out, "-> %s\n", s)
}

func (p *Prompt) ask(q string) (string, error) {
	fmt.Fprintf(p.out, "<- %s", q)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Formula asks for a formula until one parses and the person confirms it.
func (p *Prompt) Formula(opts ...expr.ParseOption) (*expr.Expr, error) {
	for {
		s, err := p.ask("Enter formula: ")
		if err != nil {
			return nil, err
		}
		e, err := expr.Parse(strings.NewReader(s), opts...)
		if err != nil {
			p.Print(err.Error())
			continue
		}
		p.Print("formula = " + e.String())
		ok, err := p.ask("Is formula valid [yes/no]: ")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(ok, "yes") {
			return e, nil
		}
	}
}

// Digits asks for the number of significant digits, with def used for a blank
// answer.
func (p *Prompt) Digits(def int) (int, error) {
	for {
		s, err := p.ask("Enter significant digits or leave blank for default " + strconv.Itoa(def) + ": ")
		if err != nil {
			return 0, err
		}
		if s == "" {
			p.Print("precision is set to " + strconv.Itoa(def))
			return def, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			p.Print("Provided value is not valid.")
			continue
		}
		p.Print("precision is set to " + strconv.Itoa(n))
		return n, nil
	}
}

// Coverage asks for the coverage coefficient.
func (p *Prompt) Coverage() (*big.Float, error) {
	for {
		s, err := p.ask("Enter tnp: ")
		if err != nil {
			return nil, err
		}
		x, err := uncertainty.ParseFloat(s)
		if err != nil || x.Sign() < 0 {
			p.Print("Provided value is not valid.")
			continue
		}
		p.Print("tnp is set to " + s)
		return x, nil
	}
}

// value asks for an optional decimal value.
func (p *Prompt) value(q string) (*big.Float, error) {
	for {
		s, err := p.ask(q)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		x, err := uncertainty.ParseFloat(s)
		if err != nil {
			p.Print("Provided value is invalid.")
			continue
		}
		return x, nil
	}
}

// Average asks for the average of v. A blank answer means it is computed
// from measurements.
func (p *Prompt) Average(v string) (*big.Float, error) {
	return p.value("Enter average value for " + v + " or leave blank if it needs to be calculated: ")
}

// Error asks for the absolute error of v. A blank answer means it is computed
// from measurements.
func (p *Prompt) Error(v string) (*big.Float, error) {
	for {
		x, err := p.value("Enter error value for " + v + " or leave blank if it needs to be calculated: ")
		if err != nil || x == nil || x.Sign() >= 0 {
			return x, err
		}
		p.Print("Error must not be negative.")
	}
}

// Series asks for measurements of v separated by spaces or commas.
func (p *Prompt) Series(v string) (uncertainty.Series, error) {
	for {
		s, err := p.ask("Enter measurements values for " + v + " separated by spaces: ")
		if err != nil {
			return nil, err
		}
		xs, err := uncertainty.ParseSeries(s)
		if err != nil || len(xs) == 0 {
			p.Print("Provided values are invalid.")
			continue
		}
		return xs, nil
	}
}
