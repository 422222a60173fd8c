package impedance

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-resp/internal/monitoring"
	"github.com/cwbudde/algo-resp/measure/breath"
	"github.com/cwbudde/algo-resp/recording"
)

// captureLogs collects monitoring output; workers log concurrently.
func captureLogs(t *testing.T) func() []string {
	t.Helper()

	var (
		mu    sync.Mutex
		lines []string
	)
	original := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...any) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.Logf = original })

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}
}

// ramps builds n rows with R5 = i, R19 = 1, X5 = -i and Volume = i/2.
func ramps(t *testing.T, index []int) *recording.Recording {
	t.Helper()

	n := len(index)
	r5 := make([]float64, n)
	r19 := make([]float64, n)
	x5 := make([]float64, n)
	vol := make([]float64, n)
	for i := range n {
		r5[i] = float64(i)
		r19[i] = 1
		x5[i] = -float64(i)
		vol[i] = float64(i) / 2
	}

	rec, err := recording.New("ramps", 200, index, map[string][]float64{
		recording.ColumnR5:     r5,
		recording.ColumnR19:    r19,
		recording.ColumnX5:     x5,
		recording.ColumnVolume: vol,
	})
	require.NoError(t, err)
	return rec
}

func seq(n, step int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i * step
	}
	return out
}

func table(breaths ...breath.Breath) *breath.Table {
	return &breath.Table{SampleRate: 200, Breaths: breaths}
}

func br(idx, is, ie, es, ee int) breath.Breath {
	return breath.Breath{
		Index:            idx,
		InspirationStart: is,
		InspirationEnd:   ie,
		ExpirationStart:  es,
		ExpirationEnd:    ee,
	}
}

func TestColumnsAndRequired(t *testing.T) {
	e := NewExtractor(Config{})

	assert.Equal(t, []string{"R5-19", "R5", "R19", "X5"}, e.Columns())
	assert.ElementsMatch(t, []string{"R5", "R19", "X5", "R5", "R19", "Volume"}, e.Required())
}

func TestCalc(t *testing.T) {
	rec := ramps(t, seq(20, 1))

	rows, err := Calc(rec, table(br(1, 0, 4, 5, 9), br(2, 10, 14, 15, 19)), Config{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 1, first.BreathIndex)
	assert.InDelta(t, 2.0, first.InspVolume, 1e-12)
	assert.InDelta(t, 2.0, first.ExpVolume, 1e-12)

	want := ChannelStats{Insp: 2, Exp: 7, Total: 4.5, Min: 0, Max: 9, Range: 9, InspMinusExp: -5}
	assert.Equal(t, want, first.Channels["R5"])

	wantDiff := ChannelStats{Insp: 1, Exp: 6, Total: 3.5, Min: -1, Max: 8, Range: 9, InspMinusExp: -5}
	assert.Equal(t, wantDiff, first.Channels["R5-19"])

	assert.Equal(t, -2.0, first.Channels["X5"].Insp)
	assert.Equal(t, -9.0, first.Channels["X5"].Min)
	assert.Zero(t, first.Channels["R19"].Range)

	second := rows[1]
	assert.Equal(t, 2, second.BreathIndex)
	assert.Equal(t, 12.0, second.Channels["R5"].Insp)
	assert.Equal(t, 17.0, second.Channels["R5"].Exp)
}

func TestCalcDerivedMatchesChannels(t *testing.T) {
	rec := ramps(t, seq(200, 1))

	rows, err := Calc(rec, table(br(1, 3, 50, 51, 120), br(2, 121, 160, 161, 199)), Config{})
	require.NoError(t, err)

	for _, row := range rows {
		r5, r19, diff := row.Channels["R5"], row.Channels["R19"], row.Channels["R5-19"]
		assert.InDelta(t, r5.Insp-r19.Insp, diff.Insp, 1e-9)
		assert.InDelta(t, r5.Exp-r19.Exp, diff.Exp, 1e-9)
		assert.InDelta(t, r5.Total-r19.Total, diff.Total, 1e-9)
	}
}

func TestCalcSingleSampleHalves(t *testing.T) {
	rec := ramps(t, seq(10, 1))

	rows, err := Calc(rec, table(br(1, 4, 4, 5, 5)), Config{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r5 := rows[0].Channels["R5"]
	assert.Equal(t, 4.0, r5.Insp)
	assert.Equal(t, 5.0, r5.Exp)
	assert.Equal(t, 1.0, r5.Range)
	assert.Zero(t, rows[0].InspVolume)
	assert.Zero(t, rows[0].ExpVolume)
}

func TestCalcSkipsBreathsOutsideRecording(t *testing.T) {
	logs := captureLogs(t)
	rec := ramps(t, seq(20, 1))

	rows, err := Calc(rec, table(br(1, 0, 4, 5, 9), br(2, 20, 22, 23, 25), br(3, 10, 14, 15, 19)), Config{})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].BreathIndex)
	assert.Equal(t, 3, rows[1].BreathIndex)

	lines := logs()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[impedance] skipped breath 2"), lines[0])
}

func TestCalcSparseIndex(t *testing.T) {
	captureLogs(t)
	// Sample numbers 0, 2, 4, ..., 38.
	rec := ramps(t, seq(20, 2))

	rows, err := Calc(rec, table(br(1, 0, 6, 9, 18), br(2, 0, 7, 8, 15)), Config{})
	require.NoError(t, err)

	// Breath 2 collapses: 7 and 8 both resolve to position 4.
	require.Len(t, rows, 1)

	// Positions 0..3 and 5..9.
	r5 := rows[0].Channels["R5"]
	assert.Equal(t, 1.5, r5.Insp)
	assert.Equal(t, 7.0, r5.Exp)
	assert.Equal(t, 1.5, rows[0].InspVolume)
	assert.Equal(t, 2.0, rows[0].ExpVolume)
}

func TestCalcMissingColumns(t *testing.T) {
	rec, err := recording.New("partial", 200, nil, map[string][]float64{
		recording.ColumnR19: {1, 2},
		recording.ColumnX5:  {1, 2},
	})
	require.NoError(t, err)

	_, err = Calc(rec, table(br(1, 0, 0, 1, 1)), Config{})
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "R5, Volume")
}

func TestCalcCustomChannels(t *testing.T) {
	rec := ramps(t, seq(20, 1))
	e := NewExtractor(Config{Channels: []string{recording.ColumnX5}, Diffs: []Diff{}})

	assert.Equal(t, []string{"X5"}, e.Columns())

	rows, err := e.Calc(rec, table(br(1, 0, 4, 5, 9)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Channels, 1)
}

func TestCalcNilInput(t *testing.T) {
	rec := ramps(t, seq(4, 1))

	_, err := Calc(nil, table(), Config{})
	require.ErrorIs(t, err, ErrNoInput)

	_, err = Calc(rec, nil, Config{})
	require.ErrorIs(t, err, ErrNoInput)
}

func TestCalcEmptyTable(t *testing.T) {
	rows, err := Calc(ramps(t, seq(4, 1)), table(), Config{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCalcWorkerCountDoesNotChangeResult(t *testing.T) {
	rec := ramps(t, seq(400, 1))

	var breaths []breath.Breath
	for k := range 20 {
		s := k * 20
		breaths = append(breaths, br(k+1, s, s+9, s+10, s+19))
	}

	serial, err := Calc(rec, table(breaths...), Config{Workers: 1})
	require.NoError(t, err)

	parallel, err := Calc(rec, table(breaths...), Config{Workers: 8})
	require.NoError(t, err)

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("worker count changed rows (-serial +parallel):\n%s", diff)
	}
}
