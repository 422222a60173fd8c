package breath

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-resp/dsp/smooth"
	"github.com/cwbudde/algo-resp/internal/testutil"
)

func TestSegmentSine(t *testing.T) {
	captureLogs(t)

	raw := testutil.SineFlow(1000, 0.25, 10)

	table, err := Segment(raw, Config{SampleRate: 200})
	require.NoError(t, err)
	require.GreaterOrEqual(t, table.Len(), 1)
	require.NoError(t, table.Validate())

	b := table.Breaths[0]
	assert.Equal(t, 1, b.Index)

	// Inspiration is where the raw flow turns positive.
	assert.Equal(t, 400, b.InspirationStart)
	assert.Equal(t, 599, b.InspirationEnd)
	assert.Equal(t, 600, b.ExpirationStart)
	assert.Equal(t, 799, b.ExpirationEnd)
	assert.Greater(t, b.InspirationVolume, 0.0)
	assert.Greater(t, b.InspirationAmplitude, 0.5)

	// The trailing half cycle has no following inspiration.
	assert.Equal(t, 1, table.Skipped)
}

func TestSegmentManyBreaths(t *testing.T) {
	captureLogs(t)

	flow := testutil.Sine(0.3, 200, 1.2, 200*60)
	noise := testutil.Noise(5, 0.05, len(flow))
	for i := range flow {
		flow[i] += noise[i]
	}

	table, err := NewSegmenter(Config{}).Segment(flow)
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	// 18 cycles per minute; the first and last are incomplete.
	assert.InDelta(t, 16, table.Len(), 1)

	for _, b := range table.Breaths {
		assert.InDelta(t, 1/0.3, b.TotalDuration, 0.1, "breath %d", b.Index)
	}
}

func TestSegmentKeepsEveryCycleOfCleanSine(t *testing.T) {
	for _, freq := range []float64{0.2, 0.25, 0.3} {
		t.Run(fmt.Sprintf("%gHz", freq), func(t *testing.T) {
			lines := captureLogs(t)

			const fs = 200.0
			raw := testutil.Sine(freq, fs, 1, 12000)

			resp, err := Preprocess(raw, fs, DefaultSmoothConfig())
			require.NoError(t, err)
			cycles, err := DetectCycles(resp, fs, 0, false)
			require.NoError(t, err)

			complete := 0
			for _, c := range cycles {
				if c.NextInspiIndex != NoIndex {
					complete++
				}
			}

			table, err := Segment(raw, Config{SampleRate: fs})
			require.NoError(t, err)
			require.NoError(t, table.Validate())
			assert.Equal(t, complete, table.Len())

			for _, line := range *lines {
				assert.NotContains(t, line, "low-amplitude")
			}

			for _, b := range table.Breaths {
				span := float64(b.ExpirationEnd-b.InspirationStart+1) / fs
				assert.InDelta(t, b.TotalDuration, span, 3/fs, "breath %d", b.Index)
				assert.InDelta(t, 1/freq, b.TotalDuration, 0.05, "breath %d", b.Index)
			}
		})
	}
}

func TestSegmentDerivativeAdjustment(t *testing.T) {
	captureLogs(t)

	raw := testutil.SineFlow(4000, 0.25, 20)

	plain, err := Segment(raw, Config{SampleRate: 200})
	require.NoError(t, err)

	adjusted, err := Segment(raw, Config{SampleRate: 200, AdjustOnDerivative: true})
	require.NoError(t, err)

	require.NoError(t, adjusted.Validate())
	require.Equal(t, plain.Len(), adjusted.Len())
	assert.Less(t, adjusted.Breaths[0].InspirationStart, plain.Breaths[0].InspirationStart)
}

func TestSegmentNoCrossings(t *testing.T) {
	captureLogs(t)

	table, err := Segment(testutil.DC(1, 2000), Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestSegmentFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  []float64
		cfg  Config
		want error
	}{
		{"missing flow", nil, Config{}, ErrMissingFlow},
		{"negative sample rate", []float64{1, -1}, Config{SampleRate: -200}, ErrInvalidSampleRate},
		{"bad kernel", []float64{1, -1}, Config{Smooth: SmoothConfig{Shape: "parabola"}}, ErrSmoothing},
		{"negative width", []float64{1, -1}, Config{Smooth: SmoothConfig{WidthMs: -90}}, ErrSmoothing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Segment(tt.raw, tt.cfg)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, table)
		})
	}
}

func TestSegmentMissingSamples(t *testing.T) {
	captureLogs(t)

	raw := testutil.SineFlow(1000, 0.25, 10)
	raw[500] = math.NaN()

	table, err := Segment(raw, Config{SampleRate: 200})
	require.NoError(t, err)
	require.NoError(t, table.Validate())
	assert.GreaterOrEqual(t, table.Len(), 1)
}

func TestNormalizeConfig(t *testing.T) {
	cfg := NewSegmenter(Config{}).Config()

	assert.Equal(t, 200.0, cfg.SampleRate)
	assert.Equal(t, smooth.ShapeGaussian, cfg.Smooth.Shape)
	assert.Equal(t, 90.0, cfg.Smooth.WidthMs)
	assert.Equal(t, DefaultCleanLogRatio, cfg.CleanLogRatio)
	assert.Equal(t, DefaultRefineWindow, cfg.RefineWindow)
	assert.False(t, cfg.AdjustOnDerivative)

	kept := NewSegmenter(Config{SampleRate: 100, RefineWindow: 5, CleanLogRatio: 3}).Config()
	assert.Equal(t, 100.0, kept.SampleRate)
	assert.Equal(t, 5, kept.RefineWindow)
	assert.Equal(t, 3.0, kept.CleanLogRatio)
}
