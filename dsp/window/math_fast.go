//go:build fastmath

package window

import "github.com/meko-christian/algo-approx"

// mathExp evaluates kernel coefficients with the fast exponential approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
