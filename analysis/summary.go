package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the breathing pattern of one recording.
type Summary struct {
	Breaths int

	// Duration is the recording length in seconds.
	Duration float64

	// Rate is in breaths per minute, from the mean cycle duration.
	Rate float64

	MeanCycleDuration float64
	StdCycleDuration  float64

	// Mean volume changes over the breaths with a feature row.
	MeanInspVolume float64
	MeanExpVolume  float64
}

// Summarize computes the summary of entries from a recording of n samples.
// Undefined statistics are NaN.
func Summarize(n int, fs float64, entries []Entry) Summary {
	nan := math.NaN()
	s := Summary{
		Breaths:           len(entries),
		Rate:              nan,
		MeanCycleDuration: nan,
		StdCycleDuration:  nan,
		MeanInspVolume:    nan,
		MeanExpVolume:     nan,
	}

	if fs > 0 {
		s.Duration = float64(n) / fs
	}

	if len(entries) == 0 {
		return s
	}

	durations := make([]float64, len(entries))
	var insp, exp []float64
	for i, e := range entries {
		durations[i] = e.Breath.TotalDuration
		if e.Features != nil {
			insp = append(insp, e.Features.InspVolume)
			exp = append(exp, e.Features.ExpVolume)
		}
	}

	if len(durations) > 1 {
		s.MeanCycleDuration, s.StdCycleDuration = stat.MeanStdDev(durations, nil)
	} else {
		s.MeanCycleDuration = durations[0]
	}

	if s.MeanCycleDuration > 0 {
		s.Rate = 60 / s.MeanCycleDuration
	}

	if len(insp) > 0 {
		s.MeanInspVolume = stat.Mean(insp, nil)
		s.MeanExpVolume = stat.Mean(exp, nil)
	}

	return s
}
