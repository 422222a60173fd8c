// Package window generates the smoothing kernels: Gaussian by standard
// deviation, rectangular, Hann and triangle.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a tapered or flat kernel shape.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeTriangle
)

// Generate returns the symmetric coefficients of t with the given length.
// Hann and triangle reach zero at both ends.
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = shape(t, position(i, length))
	}

	return out
}

// Rectangular returns a boxcar of ones.
func Rectangular(size int) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}
	return Generate(TypeRectangular, size), nil
}

// GaussianSigma returns a symmetric Gaussian kernel exp(-k²/(2σ²)) with
// standard deviation sigma (in samples), truncated at ±truncate·sigma. The
// length is always odd so the kernel is centred on a sample. A non-positive
// truncate selects DefaultTruncate.
func GaussianSigma(sigma, truncate float64) ([]float64, error) {
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, errInvalidSigma
	}

	if truncate <= 0 {
		truncate = DefaultTruncate
	}

	half := max(int(math.Ceil(truncate*sigma)), 1)

	out := make([]float64, 2*half+1)
	scale := -1 / (2 * sigma * sigma)
	for k := 0; k <= half; k++ {
		v := mathExp(scale * float64(k*k))
		out[half+k] = v
		out[half-k] = v
	}

	return out, nil
}

// Normalize scales coeffs in place so that they sum to one.
func Normalize(coeffs []float64) error {
	if len(coeffs) == 0 {
		return errEmptyCoeffs
	}

	sum := vecmath.Sum(coeffs)
	if sum == 0 {
		return errZeroCoherentGain
	}

	vecmath.ScaleBlockInPlace(coeffs, 1/sum)

	return nil
}

func shape(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	default:
		return 1
	}
}

// position maps sample n of size onto [0, 1].
func position(n, size int) float64 {
	if size <= 1 {
		return 0.5
	}
	return float64(n) / float64(size-1)
}
