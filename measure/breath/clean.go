package breath

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-resp/internal/monitoring"
)

// DefaultCleanLogRatio is the number of MADs below the median log amplitude
// at which a cycle is treated as noise.
const DefaultCleanLogRatio = 5.0

// minLogMAD is the smallest MAD used for the cleaning limit. With equal
// amplitudes and DefaultCleanLogRatio a cycle must be about 5 % below the
// median to be dropped.
const minLogMAD = 0.01

// CleanCycles drops cycles whose inspiratory or expiratory amplitude is an
// outlier on the low side.
//
// For each half independently the natural log of the amplitudes is taken
// and a cycle is rejected when its log amplitude falls below
// median - logRatio*max(MAD, minLogMAD). Non-positive amplitudes are always
// rejected. NaN amplitudes (unresolved halves) are left for the table
// builder to drop.
// A non-positive logRatio selects DefaultCleanLogRatio.
func CleanCycles(cycles []Cycle, logRatio float64) []Cycle {
	if logRatio <= 0 {
		logRatio = DefaultCleanLogRatio
	}

	inspLow := lowLogLimit(cycles, func(c Cycle) float64 { return c.InspiAmplitude }, logRatio)
	expLow := lowLogLimit(cycles, func(c Cycle) float64 { return c.ExpiAmplitude }, logRatio)

	out := make([]Cycle, 0, len(cycles))
	for _, c := range cycles {
		if rejectAmplitude(c.InspiAmplitude, inspLow) || rejectAmplitude(c.ExpiAmplitude, expLow) {
			monitoring.Logf("[breath] dropped low-amplitude %s (insp=%.4g exp=%.4g)",
				c, c.InspiAmplitude, c.ExpiAmplitude)
			continue
		}
		out = append(out, c)
	}

	return out
}

func rejectAmplitude(amp, lowLog float64) bool {
	if math.IsNaN(amp) {
		return false
	}
	if amp <= 0 {
		return true
	}
	return math.Log(amp) < lowLog
}

// lowLogLimit returns median - ratio*max(MAD, minLogMAD) of the log
// amplitudes selected by get, or -Inf when no amplitude is usable.
func lowLogLimit(cycles []Cycle, get func(Cycle) float64, ratio float64) float64 {
	logs := make([]float64, 0, len(cycles))
	for _, c := range cycles {
		a := get(c)
		if a > 0 && !math.IsInf(a, 0) {
			logs = append(logs, math.Log(a))
		}
	}

	if len(logs) == 0 {
		return math.Inf(-1)
	}

	med := median(logs)

	dev := make([]float64, len(logs))
	for i, l := range logs {
		dev[i] = math.Abs(l - med)
	}

	return med - ratio*max(median(dev), minLogMAD)
}

// median sorts x in place and returns its median, averaging the two middle
// values for even lengths.
func median(x []float64) float64 {
	slices.Sort(x)

	lo := stat.Quantile(0.5, stat.Empirical, x, nil)
	if len(x)%2 == 1 {
		return lo
	}

	hi := stat.Quantile(0.5+0.5/float64(len(x)), stat.Empirical, x, nil)
	return (lo + hi) / 2
}
