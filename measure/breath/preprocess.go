package breath

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/dsp/smooth"
)

// SmoothConfig selects the smoothing kernel applied to the negated flow.
type SmoothConfig struct {
	Shape   smooth.Shape
	WidthMs float64
}

// DefaultSmoothConfig returns the 90 ms Gaussian used for oscillometry flow.
func DefaultSmoothConfig() SmoothConfig {
	return SmoothConfig{
		Shape:   smooth.ShapeGaussian,
		WidthMs: smooth.DefaultGaussianWidthMs,
	}
}

// Preprocess prepares raw flow for cycle detection: NaN samples become 0,
// the signal is negated so that inspiration lies below the baseline, and the
// result is smoothed. The output has the input length. Any smoothing
// failure is reported as ErrSmoothing.
func Preprocess(raw []float64, fs float64, cfg SmoothConfig) ([]float64, error) {
	resp := core.FillNaN(raw, 0)
	vecmath.ScaleBlockInPlace(resp, -1)

	out, err := smooth.Smooth(resp, fs, cfg.Shape, cfg.WidthMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSmoothing, err)
	}

	return out, nil
}
