package uncertainty

import (
	"math/big"
)

//go:generate go run go.uber.org/mock/mockgen -package mock_uncertainty -destination ./mock_uncertainty/source.go . MeasurementSource

// MeasurementSource supplies the data an Analysis asks for about each
// variable. For each method, a nil result with a nil error means the value is
// not supplied, and the Analysis derives it from the variable's measurement
// series instead.
type MeasurementSource interface {
	// Average returns the supplied operating point of v.
	Average(v string) (*big.Float, error)
	// Error returns the supplied absolute error of v.
	Error(v string) (*big.Float, error)
	// Series returns the repeated measurements of v. It is called at most
	// once per variable in an Analysis, and only when the average or error
	// of v is not supplied.
	Series(v string) (Series, error)
}

// MapSource is a MeasurementSource over in-memory maps. Missing or nil
// entries are not supplied.
type MapSource struct {
	Averages     map[string]*big.Float
	Errors       map[string]*big.Float
	Measurements map[string]Series
}

var _ MeasurementSource = (*MapSource)(nil)

func (m *MapSource) Average(v string) (*big.Float, error) {
	return m.Averages[v], nil
}

func (m *MapSource) Error(v string) (*big.Float, error) {
	return m.Errors[v], nil
}

func (m *MapSource) Series(v string) (Series, error) {
	return m.Measurements[v], nil
}

// InputPrec is the binary precision sources use for decimal values they read,
// enough to hold any practical precision exactly after rounding.
const InputPrec = 256

// ParseFloat parses a decimal value for use as a supplied average or error.
// The error, if any, is a *strconv.NumError.
func ParseFloat(s string) (*big.Float, error) {
	r, err := ParseValue(s)
	if err != nil {
		return nil, err
	}
	return new(big.Float).SetPrec(InputPrec).SetRat(r), nil
}
