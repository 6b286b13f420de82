package uncertainty

import (
	"fmt"
	"math"
	"math/big"

	"github.com/aclements/go-moremath/stats"
)

// StudentT returns the two-sided Student's t coverage coefficient for the
// given confidence level and n measurements, i.e. the (1+confidence)/2
// quantile of the t distribution with n−1 degrees of freedom. The result is
// computed in float64 and has about 15 significant digits.
func StudentT(confidence float64, n int) (*big.Float, error) {
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("confidence %g outside (0, 1)", confidence)
	}
	if n < 2 {
		return nil, &InsufficientSamplesError{N: n}
	}
	q := stats.InvCDF(stats.TDist{V: float64(n - 1)})((1 + confidence) / 2)
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return nil, fmt.Errorf("no t quantile for confidence %g with %d measurements", confidence, n)
	}
	return big.NewFloat(q), nil
}
