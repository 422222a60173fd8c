package core

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FillNaN returns a copy of src with every NaN replaced by value.
// Infinite samples are kept as they are.
func FillNaN(src []float64, value float64) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		if math.IsNaN(v) {
			out[i] = value
			continue
		}

		out[i] = v
	}

	return out
}

// AllFinite reports whether buf contains neither NaN nor Inf.
func AllFinite(buf []float64) bool {
	for _, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
