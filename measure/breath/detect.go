package breath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// derivativeOnsetFraction is the share of the steepest falling slope below
// which the derivative adjustment stops walking back.
const derivativeOnsetFraction = 0.2

// DetectCycles finds inspiration and expiration crossings of resp around
// baseline and pairs them into candidate cycles.
//
// An inspiration starts where resp falls below the baseline
// (resp[i] >= b && resp[i+1] < b, reported at i+1); an expiration where it
// rises back to or above it. Expirations before the first inspiration are
// ignored. The trailing inspiration is emitted with the unresolved
// boundaries set to NoIndex. Only indices are filled in; use
// ComputeFeatures for the derived values.
//
// With adjustOnDerivative each inspiration is moved back to the onset of its
// falling slope, never past the preceding expiration.
func DetectCycles(resp []float64, fs, baseline float64, adjustOnDerivative bool) ([]Cycle, error) {
	if !validSampleRate(fs) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, fs)
	}

	inspis, expis := crossings(resp, baseline)
	if len(inspis) == 0 {
		return nil, nil
	}

	if adjustOnDerivative {
		adjustInspirations(resp, inspis, expis)
	}

	cycles := make([]Cycle, 0, len(inspis))
	e := 0

	for k, inspi := range inspis {
		for e < len(expis) && expis[e] <= inspi {
			e++
		}

		expi, next := NoIndex, NoIndex
		if e < len(expis) {
			expi = expis[e]
			if k+1 < len(inspis) && inspis[k+1] > expi {
				next = inspis[k+1]
			}
		}

		cycles = append(cycles, newCycle(inspi, expi, next))
	}

	return cycles, nil
}

// crossings returns the downward (inspiration) and upward (expiration)
// baseline crossings of resp in increasing order. They alternate strictly.
func crossings(resp []float64, baseline float64) (down, up []int) {
	for i := 0; i+1 < len(resp); i++ {
		above, nextAbove := resp[i] >= baseline, resp[i+1] >= baseline
		switch {
		case above && !nextAbove:
			down = append(down, i+1)
		case !above && nextAbove:
			up = append(up, i+1)
		}
	}

	return down, up
}

// adjustInspirations moves each inspiration index in place back along its
// falling slope while the fall per sample stays above
// derivativeOnsetFraction of the steepest fall since the previous
// expiration.
func adjustInspirations(resp []float64, inspis, expis []int) {
	fall := func(i int) float64 { return resp[i-1] - resp[i] }

	e := 0
	for k, inspi := range inspis {
		for e < len(expis) && expis[e] < inspi {
			e++
		}

		bound := 0
		if e > 0 {
			bound = expis[e-1]
		}

		peak := 0.0
		for i := bound + 1; i <= inspi; i++ {
			if f := fall(i); f > peak {
				peak = f
			}
		}

		if peak <= 0 {
			continue
		}

		j := inspi
		for j-1 > bound && fall(j) >= derivativeOnsetFraction*peak {
			j--
		}

		inspis[k] = j
	}
}

// ComputeFeatures returns a copy of cycles with times, durations, volumes
// and amplitudes derived from resp.
//
// Volumes are the absolute integral of (resp - baseline) over each half
// cycle; amplitudes are the peak |resp - baseline| over the same span.
// Totals are the sums of both halves. Values that depend on an unresolved
// boundary stay NaN.
func ComputeFeatures(resp []float64, fs, baseline float64, cycles []Cycle) []Cycle {
	out := make([]Cycle, len(cycles))
	if len(cycles) == 0 {
		return out
	}

	dev := make([]float64, len(resp))
	for i, v := range resp {
		dev[i] = (v - baseline) / fs
	}

	cum := floats.CumSum(make([]float64, len(dev)), dev)

	absDev := make([]float64, len(resp))
	for i, v := range resp {
		absDev[i] = math.Abs(v - baseline)
	}

	volume := func(a, b int) float64 {
		lo := 0.0
		if a > 0 {
			lo = cum[a-1]
		}
		return math.Abs(cum[b-1] - lo)
	}

	inRange := func(a, b int) bool {
		return a != NoIndex && b != NoIndex && a >= 0 && a < b && b <= len(resp)
	}

	indexTime := func(i int) float64 {
		if i == NoIndex {
			return math.NaN()
		}
		return float64(i) / fs
	}

	for n, c := range cycles {
		f := newCycle(c.InspiIndex, c.ExpiIndex, c.NextInspiIndex)
		f.InspiTime = indexTime(c.InspiIndex)
		f.ExpiTime = indexTime(c.ExpiIndex)
		f.NextInspiTime = indexTime(c.NextInspiIndex)
		f.InspiDuration = f.ExpiTime - f.InspiTime
		f.ExpiDuration = f.NextInspiTime - f.ExpiTime
		f.CycleDuration = f.NextInspiTime - f.InspiTime

		if inRange(c.InspiIndex, c.ExpiIndex) {
			f.InspiVolume = volume(c.InspiIndex, c.ExpiIndex)
			f.InspiAmplitude = floats.Max(absDev[c.InspiIndex:c.ExpiIndex])
		}

		if inRange(c.ExpiIndex, c.NextInspiIndex) {
			f.ExpiVolume = volume(c.ExpiIndex, c.NextInspiIndex)
			f.ExpiAmplitude = floats.Max(absDev[c.ExpiIndex:c.NextInspiIndex])
		}

		f.TotalVolume = f.InspiVolume + f.ExpiVolume
		f.TotalAmplitude = f.InspiAmplitude + f.ExpiAmplitude
		out[n] = f
	}

	return out
}
