// Package testutil provides deterministic flow and channel signals and
// tolerance helpers for tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns amplitude·sin(2π·freqHz·i/fs) for i in [0, n).
func Sine(freqHz, fs, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freqHz / fs
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SineFlow returns n samples of sin(2π·freqHz·t) with t spaced linearly
// from 0 to duration seconds inclusive.
func SineFlow(n int, freqHz, duration float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := duration * float64(i) / float64(n-1)
		out[i] = math.Sin(2 * math.Pi * freqHz * t)
	}
	return out
}

// Noise returns uniform noise in [-amplitude, amplitude) from a fixed seed.
func Noise(seed int64, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// NoisyBreathing is a breathing-rate sine with additive seeded noise.
func NoisyBreathing(rateHz, fs, amplitude, noise float64, seed int64, n int) []float64 {
	out := Sine(rateHz, fs, amplitude, n)
	for i, v := range Noise(seed, noise, n) {
		out[i] += v
	}
	return out
}

// Ramp returns start, start+step, ... with n elements.
func Ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// Impulse returns n zeros with a 1 at pos.
func Impulse(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}

// DC returns n copies of value.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// WithNaN returns a copy of signal with NaN at the given positions.
// Out-of-range positions are ignored.
func WithNaN(signal []float64, positions ...int) []float64 {
	out := append([]float64(nil), signal...)
	for _, p := range positions {
		if p >= 0 && p < len(out) {
			out[p] = math.NaN()
		}
	}
	return out
}
