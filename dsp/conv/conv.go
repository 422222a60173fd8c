package conv

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// Mode selects which part of the full convolution is returned.
type Mode int

const (
	// ModeFull returns all len(a)+len(b)-1 samples.
	ModeFull Mode = iota

	// ModeSame returns len(a) samples centred on the kernel midpoint.
	ModeSame
)

// directThreshold is the longest kernel Convolve handles in the time domain.
const directThreshold = 64

// Direct is the O(N*M) time-domain convolution of a and b. The result has
// len(a)+len(b)-1 samples.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	out := make([]float64, len(a)+len(b)-1)
	if len(b) < 4 {
		for i, av := range a {
			for j, bv := range b {
				out[i+j] += av * bv
			}
		}
		return out, nil
	}

	// Each input sample adds a scaled copy of the kernel.
	scaled := make([]float64, len(b))
	for i, av := range a {
		vecmath.ScaleBlock(scaled, b, av)
		vecmath.AddBlockInPlace(out[i:i+len(b)], scaled)
	}

	return out, nil
}

// Convolve returns the full linear convolution of a and b. The shorter
// operand is treated as the kernel: up to 64 samples it is applied directly,
// longer kernels go through FFT overlap-add.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}
	return OverlapAdd(a, b)
}

// ConvolveMode convolves a with b and trims the result to mode.
func ConvolveMode(a, b []float64, mode Mode) ([]float64, error) {
	full, err := Convolve(a, b)
	if err != nil {
		return nil, err
	}

	if mode == ModeSame {
		start := (len(b) - 1) / 2
		return full[start : start+len(a)], nil
	}
	return full, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
