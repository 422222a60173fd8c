// Package time computes time-domain statistics over sample segments.
//
// Segments are addressed by inclusive sample positions, matching how breath
// boundaries are stored.
package time

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// ErrRange is returned when a segment lies outside the signal or is reversed.
var ErrRange = errors.New("stats: segment out of range")

// Stats summarises one segment.
type Stats struct {
	Length int
	Mean   float64
	Min    float64
	Max    float64
	Range  float64 // Max - Min
}

// Calculate summarises signal. An empty signal yields NaN values.
func Calculate(signal []float64) Stats {
	if len(signal) == 0 {
		nan := math.NaN()
		return Stats{Mean: nan, Min: nan, Max: nan, Range: nan}
	}

	lo, hi := floats.Min(signal), floats.Max(signal)

	return Stats{
		Length: len(signal),
		Mean:   Mean(signal),
		Min:    lo,
		Max:    hi,
		Range:  hi - lo,
	}
}

// Span summarises signal[start..end], both ends inclusive.
func Span(signal []float64, start, end int) (Stats, error) {
	if err := checkSpan(len(signal), start, end); err != nil {
		return Stats{}, err
	}

	return Calculate(signal[start : end+1]), nil
}

// Mean returns the arithmetic mean of signal, or NaN when it is empty.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return math.NaN()
	}

	return vecmath.Sum(signal) / float64(len(signal))
}

// SpanMean returns the mean of signal[start..end], both ends inclusive.
func SpanMean(signal []float64, start, end int) (float64, error) {
	if err := checkSpan(len(signal), start, end); err != nil {
		return math.NaN(), err
	}

	return Mean(signal[start : end+1]), nil
}

func checkSpan(n, start, end int) error {
	if start < 0 || end >= n || start > end {
		return fmt.Errorf("%w: [%d, %d] of %d samples", ErrRange, start, end, n)
	}
	return nil
}
