// Package uncertainty computes a derived quantity from a formula and
// measurements of its variables, along with the measurement error of the
// result propagated to first order.
//
// Each variable of a formula has an operating point, the value at which the
// formula is evaluated, and an absolute error. Either may be supplied directly
// or derived from a series of repeated measurements: the operating point as
// the mean of the series, and the error as the standard error of the mean
// scaled by a coverage coefficient. The error of the result is then
//
//	sqrt(Σ (∂f/∂x · Δx)²)
//
// over the variables x of the formula f, with each partial derivative found
// symbolically and evaluated at the operating point.
//
// All arithmetic happens to a fixed number of significant decimal digits set
// on the Engine. Sums of measurements are exact, so results do not depend on
// the order of the data.
package uncertainty
