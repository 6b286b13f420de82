package uncertainty

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Series is a sequence of repeated measurements of one variable. Values are
// exact rationals so that the decimal text they were read from is kept
// without binary rounding.
type Series []*big.Rat

// ParseValue parses a decimal number such as "1.25" or "-3e-4" exactly. The
// error, if any, is a *strconv.NumError.
func ParseValue(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if !decimal(s) {
		return nil, &strconv.NumError{Func: "ParseValue", Num: s, Err: strconv.ErrSyntax}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, &strconv.NumError{Func: "ParseValue", Num: s, Err: strconv.ErrSyntax}
	}
	return r, nil
}

// decimal reports whether s avoids the forms big.Rat accepts beyond decimal
// numbers: fractions, base prefixes, binary exponents, and digit separators.
func decimal(s string) bool {
	if s == "" || strings.ContainsAny(s, "/_pP") {
		return false
	}
	t := strings.TrimLeft(s, "+-")
	return len(t) < 2 || t[0] != '0' || !strings.ContainsRune("xXbBoO", rune(t[1]))
}

// ParseSeries parses measurements separated by whitespace or commas. Empty
// input gives an empty series.
func ParseSeries(s string) (Series, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	xs := make(Series, 0, len(fields))
	for _, f := range fields {
		x, err := ParseValue(f)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

// Strings formats the series with each value in its shortest exact decimal
// form where one exists.
func (xs Series) Strings() []string {
	r := make([]string, len(xs))
	for i, x := range xs {
		r[i] = ratString(x)
	}
	return r
}

// ratString formats x as a terminating decimal if it is one, or as a fraction
// otherwise.
func ratString(x *big.Rat) string {
	if n, exact := x.FloatPrec(); exact {
		return x.FloatString(n)
	}
	return x.RatString()
}
