package breath

import (
	"fmt"

	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/internal/monitoring"
)

// Config holds breath segmentation parameters.
type Config struct {
	SampleRate         float64
	Baseline           float64
	Smooth             SmoothConfig
	CleanLogRatio      float64
	RefineWindow       int
	AdjustOnDerivative bool
}

// Segmenter runs the full segmentation pipeline on flow recordings.
type Segmenter struct {
	cfg Config
}

// NewSegmenter creates a segmenter. Zero fields of cfg take their defaults.
func NewSegmenter(cfg Config) *Segmenter {
	return &Segmenter{cfg: normalizeConfig(cfg)}
}

// Segment is a one-shot segmentation of raw flow.
func Segment(raw []float64, cfg Config) (*Table, error) {
	return NewSegmenter(cfg).Segment(raw)
}

// Config returns the effective configuration.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// Segment smooths raw flow, detects and cleans candidate cycles, refines
// their boundaries against raw and builds the breath table. A signal
// without baseline crossings yields an empty table and no error.
func (s *Segmenter) Segment(raw []float64) (*Table, error) {
	cfg := s.cfg

	if len(raw) == 0 {
		return nil, ErrMissingFlow
	}

	if !validSampleRate(cfg.SampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, cfg.SampleRate)
	}

	resp, err := Preprocess(raw, cfg.SampleRate, cfg.Smooth)
	if err != nil {
		return nil, err
	}

	cycles, err := DetectCycles(resp, cfg.SampleRate, cfg.Baseline, cfg.AdjustOnDerivative)
	if err != nil {
		return nil, err
	}

	cycles = ComputeFeatures(resp, cfg.SampleRate, cfg.Baseline, cycles)
	cleaned := CleanCycles(cycles, cfg.CleanLogRatio)

	// Refinement looks at the unsmoothed, un-negated signal.
	refined := RefineCycles(core.FillNaN(raw, 0), cleaned, cfg.RefineWindow)

	table, err := BuildTable(refined, len(raw), cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	monitoring.Logf("[breath] %d candidate cycles, %d after cleaning, %d breaths (%d skipped)",
		len(cycles), len(cleaned), table.Len(), table.Skipped)

	return table, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = core.DefaultSampleRate
	}

	if cfg.Smooth.Shape == "" {
		cfg.Smooth.Shape = DefaultSmoothConfig().Shape
	}

	if cfg.Smooth.WidthMs == 0 {
		cfg.Smooth.WidthMs = DefaultSmoothConfig().WidthMs
	}

	if cfg.CleanLogRatio <= 0 {
		cfg.CleanLogRatio = DefaultCleanLogRatio
	}

	if cfg.RefineWindow <= 0 {
		cfg.RefineWindow = DefaultRefineWindow
	}

	return cfg
}
