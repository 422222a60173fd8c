package breath

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/internal/monitoring"
)

const timeEpsilon = 1e-9

// Breath is one row of the breath table. Boundaries are inclusive sample
// indices with InspirationStart <= InspirationEnd < ExpirationStart <=
// ExpirationEnd. The *Time fields are the boundaries in seconds.
type Breath struct {
	Index int // 1-based

	InspirationStart int
	InspirationEnd   int
	ExpirationStart  int
	ExpirationEnd    int

	InspirationStartTime float64
	InspirationEndTime   float64
	ExpirationStartTime  float64
	ExpirationEndTime    float64

	InspirationDuration float64
	ExpirationDuration  float64
	TotalDuration       float64

	InspirationVolume float64
	ExpirationVolume  float64
	TotalVolume       float64

	InspirationAmplitude float64
	ExpirationAmplitude  float64
	TotalAmplitude       float64
}

// Table is the ordered breath table of one recording. Consecutive breaths
// are chained so that each inspiration starts one sample after the
// previous expiration ends. A Table must not be modified after BuildTable
// returns it.
type Table struct {
	SampleRate float64
	Breaths    []Breath

	// Skipped counts the cycles rejected while building the table.
	Skipped int
}

// Len returns the number of breaths.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Breaths)
}

// BuildTable converts refined cycles into a breath table for a signal of
// signalLen samples.
//
// Cycles with an unresolved index, with NextInspiIndex beyond the signal or
// with boundaries out of order are skipped. The remaining rows are stably
// sorted by inspiration start and chained: every breath after the first
// starts at the previous ExpirationEnd + 1. A row whose chained start would
// pass its InspirationEnd is skipped and the previous breath stays the
// anchor. Indices are assigned after chaining, starting at 1.
func BuildTable(cycles []Cycle, signalLen int, fs float64) (*Table, error) {
	if !validSampleRate(fs) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, fs)
	}

	table := &Table{SampleRate: fs}

	rows := make([]Breath, 0, len(cycles))
	for _, c := range cycles {
		if reason := malformed(c, signalLen); reason != "" {
			monitoring.Logf("[breath] skipped %s: %s", c, reason)
			table.Skipped++
			continue
		}
		rows = append(rows, breathFromCycle(c, fs))
	}

	slices.SortStableFunc(rows, func(a, b Breath) int {
		return a.InspirationStart - b.InspirationStart
	})

	breaths := make([]Breath, 0, len(rows))
	for _, b := range rows {
		if n := len(breaths); n > 0 {
			prev := breaths[n-1]
			start := prev.ExpirationEnd + 1
			if start > b.InspirationEnd {
				monitoring.Logf("[breath] skipped breath at %d: chained start %d passes inspiration end %d",
					b.InspirationStart, start, b.InspirationEnd)
				table.Skipped++
				continue
			}
			b.InspirationStart = start
			b.InspirationStartTime = prev.ExpirationEndTime + 1/fs
		}
		breaths = append(breaths, b)
	}

	for i := range breaths {
		breaths[i].Index = i + 1
	}

	table.Breaths = breaths

	return table, nil
}

func malformed(c Cycle, signalLen int) string {
	switch {
	case !c.Resolved():
		return "unresolved index"
	case c.InspiIndex < 0 || c.NextInspiIndex >= signalLen:
		return fmt.Sprintf("outside signal of %d samples", signalLen)
	case c.InspiIndex > c.ExpiIndex:
		return "inspiration starts after it ends"
	case c.ExpiIndex+1 > c.NextInspiIndex:
		return "expiration starts after it ends"
	default:
		return ""
	}
}

func breathFromCycle(c Cycle, fs float64) Breath {
	return Breath{
		InspirationStart: c.InspiIndex,
		InspirationEnd:   c.ExpiIndex,
		ExpirationStart:  c.ExpiIndex + 1,
		ExpirationEnd:    c.NextInspiIndex,

		InspirationStartTime: float64(c.InspiIndex) / fs,
		InspirationEndTime:   float64(c.ExpiIndex) / fs,
		ExpirationStartTime:  float64(c.ExpiIndex+1) / fs,
		ExpirationEndTime:    float64(c.NextInspiIndex) / fs,

		InspirationDuration: c.InspiDuration,
		ExpirationDuration:  c.ExpiDuration,
		TotalDuration:       c.CycleDuration,

		InspirationVolume: c.InspiVolume,
		ExpirationVolume:  c.ExpiVolume,
		TotalVolume:       c.TotalVolume,

		InspirationAmplitude: c.InspiAmplitude,
		ExpirationAmplitude:  c.ExpiAmplitude,
		TotalAmplitude:       c.TotalAmplitude,
	}
}

// Validate checks the ordering and chaining invariants of the table.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrInvalidTable)
	}

	for i, b := range t.Breaths {
		if b.Index != i+1 {
			return fmt.Errorf("%w: breath %d has index %d", ErrInvalidTable, i, b.Index)
		}

		if b.InspirationStart > b.InspirationEnd || b.InspirationEnd >= b.ExpirationStart ||
			b.ExpirationStart > b.ExpirationEnd {
			return fmt.Errorf("%w: breath %d boundaries out of order [%d %d %d %d]", ErrInvalidTable,
				b.Index, b.InspirationStart, b.InspirationEnd, b.ExpirationStart, b.ExpirationEnd)
		}

		if i == 0 {
			continue
		}

		prev := t.Breaths[i-1]
		if b.InspirationStart != prev.ExpirationEnd+1 {
			return fmt.Errorf("%w: breath %d starts at %d, previous ends at %d", ErrInvalidTable,
				b.Index, b.InspirationStart, prev.ExpirationEnd)
		}

		if !core.NearlyEqual(b.InspirationStartTime, prev.ExpirationEndTime+1/t.SampleRate, timeEpsilon) {
			return fmt.Errorf("%w: breath %d start time %v not chained to %v", ErrInvalidTable,
				b.Index, b.InspirationStartTime, prev.ExpirationEndTime)
		}
	}

	return nil
}
