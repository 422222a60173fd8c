package breath

import (
	"fmt"
	"math"
)

// NoIndex marks a cycle boundary the detector could not resolve.
const NoIndex = -1

// Cycle is a candidate breath as produced by the cycle detector. Inspiration
// runs from InspiIndex to ExpiIndex, expiration from ExpiIndex to
// NextInspiIndex. Unresolved indices are NoIndex and their dependent
// features are NaN.
type Cycle struct {
	InspiIndex     int
	ExpiIndex      int
	NextInspiIndex int

	InspiTime     float64
	ExpiTime      float64
	NextInspiTime float64

	InspiDuration float64
	ExpiDuration  float64
	CycleDuration float64

	InspiVolume float64
	ExpiVolume  float64
	TotalVolume float64

	InspiAmplitude float64
	ExpiAmplitude  float64
	TotalAmplitude float64
}

// Resolved reports whether all three boundary indices are known.
func (c Cycle) Resolved() bool {
	return c.InspiIndex != NoIndex && c.ExpiIndex != NoIndex && c.NextInspiIndex != NoIndex
}

func (c Cycle) String() string {
	return fmt.Sprintf("cycle{inspi=%d expi=%d next=%d}", c.InspiIndex, c.ExpiIndex, c.NextInspiIndex)
}

func newCycle(inspi, expi, next int) Cycle {
	nan := math.NaN()
	return Cycle{
		InspiIndex:     inspi,
		ExpiIndex:      expi,
		NextInspiIndex: next,
		InspiTime:      nan,
		ExpiTime:       nan,
		NextInspiTime:  nan,
		InspiDuration:  nan,
		ExpiDuration:   nan,
		CycleDuration:  nan,
		InspiVolume:    nan,
		ExpiVolume:     nan,
		TotalVolume:    nan,
		InspiAmplitude: nan,
		ExpiAmplitude:  nan,
		TotalAmplitude: nan,
	}
}

func validSampleRate(fs float64) bool {
	return fs > 0 && !math.IsInf(fs, 0)
}
