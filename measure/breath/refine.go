package breath

// DefaultRefineWindow is the half width, in samples, searched for a sign
// change around each cycle boundary.
const DefaultRefineWindow = 20

// NearestZero returns the index closest to a sign change of signal near idx.
//
// It scans i from max(idx-window, 1) up to but excluding
// min(idx+window, len(signal)-1) and stops at the first i where
// signal[i-1] and signal[i] have strictly opposite signs. Of the two
// samples the one with the smaller magnitude is returned, i-1 on ties.
// When no sign change is found idx is returned unchanged. The result does
// not depend on the sign convention of signal. Because the first crossing
// in the window wins, a second pass over noisy flow can move the index
// again.
func NearestZero(signal []float64, idx, window int) int {
	lo := max(idx-window, 1)
	hi := min(idx+window, len(signal)-1)

	for i := lo; i < hi; i++ {
		if signal[i-1]*signal[i] < 0 {
			if abs(signal[i]) < abs(signal[i-1]) {
				return i
			}
			return i - 1
		}
	}

	return idx
}

// RefineCycles snaps every resolved boundary of cycles to the nearest zero
// crossing of raw. Unresolved boundaries stay NoIndex. The input slice is
// not modified.
func RefineCycles(raw []float64, cycles []Cycle, window int) []Cycle {
	if window <= 0 {
		window = DefaultRefineWindow
	}

	snap := func(idx int) int {
		if idx == NoIndex {
			return NoIndex
		}
		return NearestZero(raw, idx, window)
	}

	out := make([]Cycle, len(cycles))
	for i, c := range cycles {
		c.InspiIndex = snap(c.InspiIndex)
		c.ExpiIndex = snap(c.ExpiIndex)
		c.NextInspiIndex = snap(c.NextInspiIndex)
		out[i] = c
	}

	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
