// Package smooth low-pass smooths sampled signals with a normalized window
// kernel.
//
// The kernel is convolved with the signal in [conv.ModeSame], so the output
// has the input length and the edges see implicit zero padding. Kernel
// widths are given in milliseconds and converted with the sample rate.
package smooth

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-resp/dsp/conv"
	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/dsp/window"
)

// Shape selects the smoothing kernel.
type Shape string

const (
	// ShapeGaussian uses a Gaussian kernel. The width is the standard
	// deviation in milliseconds.
	ShapeGaussian Shape = "gaussian"

	// ShapeRectangular uses a boxcar (moving average). The width is the full
	// window length in milliseconds.
	ShapeRectangular Shape = "rectangular"

	// ShapeHann and ShapeTriangle are tapered kernels. The width is the
	// full window length in milliseconds; the zero end points are dropped.
	ShapeHann     Shape = "hann"
	ShapeTriangle Shape = "triangle"
)

// DefaultGaussianWidthMs is the Gaussian sigma used for respiratory flow.
const DefaultGaussianWidthMs = 90.0

var (
	ErrUnknownShape      = errors.New("smooth: unknown kernel shape")
	ErrInvalidWidth      = errors.New("smooth: kernel width must be finite and > 0")
	ErrInvalidSampleRate = errors.New("smooth: sample rate must be finite and > 0")
	ErrEmptySignal       = errors.New("smooth: empty signal")
	ErrNonFinite         = errors.New("smooth: non-finite output")
)

// ParseShape converts a configuration string into a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeGaussian, ShapeRectangular, ShapeHann, ShapeTriangle:
		return Shape(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}
}

// Kernel returns the unit-gain kernel for shape at sample rate fs.
func Kernel(shape Shape, fs, widthMs float64) ([]float64, error) {
	if !(fs > 0) || math.IsInf(fs, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, fs)
	}
	if !(widthMs > 0) || math.IsInf(widthMs, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, widthMs)
	}

	var (
		kernel []float64
		err    error
	)

	switch shape {
	case ShapeGaussian:
		sigma := widthMs / 1000 * fs
		kernel, err = window.GaussianSigma(sigma, window.DefaultTruncate)
	case ShapeRectangular:
		kernel, err = window.Rectangular(taps(fs, widthMs))
	case ShapeHann:
		kernel = tapered(window.TypeHann, taps(fs, widthMs))
	case ShapeTriangle:
		kernel = tapered(window.TypeTriangle, taps(fs, widthMs))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}

	if err != nil {
		return nil, fmt.Errorf("smooth: kernel: %w", err)
	}

	if err := window.Normalize(kernel); err != nil {
		return nil, fmt.Errorf("smooth: kernel: %w", err)
	}

	return kernel, nil
}

// taps converts a full window length in milliseconds to samples, at least 1.
func taps(fs, widthMs float64) int {
	return max(int(math.Round(widthMs/1000*fs)), 1)
}

// tapered returns size interior coefficients of a window that is zero at
// both ends.
func tapered(t window.Type, size int) []float64 {
	return window.Generate(t, size+2)[1 : size+1]
}

// Smooth convolves signal with the kernel for shape and returns a new slice
// of the same length.
func Smooth(signal []float64, fs float64, shape Shape, widthMs float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	kernel, err := Kernel(shape, fs, widthMs)
	if err != nil {
		return nil, err
	}

	out, err := conv.ConvolveMode(signal, kernel, conv.ModeSame)
	if err != nil {
		return nil, fmt.Errorf("smooth: convolve: %w", err)
	}

	if !core.AllFinite(out) {
		return nil, ErrNonFinite
	}

	return out, nil
}
