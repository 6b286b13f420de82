// Package source implements measurement sources that read data from files
// and from people.
package source

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/uncertainty"
)

// File is a MeasurementSource holding a session read from YAML:
//
//	formula: x y^2
//	variables:
//	  x:
//	    average: 2.5
//	    error: 0.01
//	  y:
//	    measurements: [1.02, 0.98, 1.01]
//
// Numbers are read from their decimal text, without binary rounding.
// Measurements may also be a single string of values separated by spaces or
// commas.
type File struct {
	uncertainty.MapSource
	// Formula is the formula of the session, if the file names one.
	Formula string
	// Vars lists the variables the file has data for.
	Vars *set.TreeSet[string]
}

type fileDoc struct {
	Formula   string             `yaml:"formula"`
	Variables map[string]fileVar `yaml:"variables"`
}

type fileVar struct {
	Average      *decimal `yaml:"average"`
	Error        *decimal `yaml:"error"`
	Measurements series   `yaml:"measurements"`
}

// decimal is a number kept as the text it was written as.
type decimal string

func (d *decimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float", "!!str":
	default:
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	if _, err := uncertainty.ParseValue(node.Value); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = decimal(node.Value)
	return nil
}

type series uncertainty.Series

func (s *series) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		xs, err := uncertainty.ParseSeries(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = series(xs)
	case yaml.SequenceNode:
		xs := make(series, 0, len(node.Content))
		for _, c := range node.Content {
			var d decimal
			if err := d.UnmarshalYAML(c); err != nil {
				return err
			}
			x, _ := uncertainty.ParseValue(string(d))
			xs = append(xs, x)
		}
		*s = xs
	default:
		return fmt.Errorf("line %d: expected a list of measurements", node.Line)
	}
	return nil
}

// ReadFile reads a session from r.
func ReadFile(r io.Reader) (*File, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	f := File{
		MapSource: uncertainty.MapSource{
			Averages:     make(map[string]*big.Float, len(doc.Variables)),
			Errors:       make(map[string]*big.Float, len(doc.Variables)),
			Measurements: make(map[string]uncertainty.Series, len(doc.Variables)),
		},
		Formula: strings.TrimSpace(doc.Formula),
		Vars:    set.NewTreeSet(cmp.Compare[string]),
	}
	for name, v := range doc.Variables {
		f.Vars.Insert(name)
		if v.Average != nil {
			f.Averages[name], _ = uncertainty.ParseFloat(string(*v.Average))
		}
		if v.Error != nil {
			f.Errors[name], _ = uncertainty.ParseFloat(string(*v.Error))
		}
		if len(v.Measurements) != 0 {
			f.Measurements[name] = uncertainty.Series(v.Measurements)
		}
	}
	return &f, nil
}

// LoadFile reads a session from the named file.
func LoadFile(name string) (*File, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadFile(r)
}

// Check reports every problem with using the file for a formula with the
// given variables: data for unknown variables, variables with no usable
// average or error, and negative errors.
func (f *File) Check(vars []string) error {
	var errs *multierror.Error
	want := set.TreeSetFrom(vars, cmp.Compare[string])
	for v := range f.Vars.Items() {
		if !want.Contains(v) {
			errs = multierror.Append(errs, fmt.Errorf("data for unknown variable %q", v))
		}
	}
	for _, v := range vars {
		n := len(f.Measurements[v])
		if f.Averages[v] == nil && n == 0 {
			errs = multierror.Append(errs, fmt.Errorf("no average or measurements for %q", v))
		}
		switch dv := f.Errors[v]; {
		case dv == nil && n < 2:
			errs = multierror.Append(errs, fmt.Errorf("no error and %d measurements for %q", n, v))
		case dv != nil && dv.Sign() < 0:
			errs = multierror.Append(errs, &uncertainty.NegativeErrorError{Var: v, Value: dv.Text('g', -1)})
		}
	}
	return errs.ErrorOrNil()
}
