// Package config loads the JSON analysis configuration of the command-line
// tool.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-resp/analysis"
	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/dsp/smooth"
	"github.com/cwbudde/algo-resp/measure/breath"
	"github.com/cwbudde/algo-resp/measure/impedance"
	"github.com/cwbudde/algo-resp/recording"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the analysis configuration. Omitted fields take the defaults
// returned by the Get* methods, so partial files are valid.
type Config struct {
	FlowColumn *string  `json:"flow_column,omitempty"`
	SampleRate *float64 `json:"sample_rate,omitempty"`
	Channels   []string `json:"channels,omitempty"`
	MinRows    *int     `json:"min_rows,omitempty"`

	// Segmentation
	Baseline           *float64 `json:"baseline,omitempty"`
	SmoothingShape     *string  `json:"smoothing_shape,omitempty"`
	SmoothingWidthMs   *float64 `json:"smoothing_width_ms,omitempty"`
	CleanLogRatio      *float64 `json:"clean_log_ratio,omitempty"`
	RefineWindow       *int     `json:"refine_window,omitempty"`
	AdjustOnDerivative *bool    `json:"adjust_on_derivative,omitempty"`

	// Feature extraction
	Workers *int `json:"workers,omitempty"`
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and be at most 1 MiB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.FlowColumn != nil && *c.FlowColumn == "" {
		return fmt.Errorf("flow_column must not be empty")
	}

	if c.SampleRate != nil && !(*c.SampleRate > 0 && !math.IsInf(*c.SampleRate, 0)) {
		return fmt.Errorf("sample_rate must be finite and positive, got %v", *c.SampleRate)
	}

	for _, ch := range c.Channels {
		if ch == "" {
			return fmt.Errorf("channels must not contain empty names")
		}
	}

	if c.MinRows != nil && *c.MinRows <= 0 {
		return fmt.Errorf("min_rows must be positive, got %d", *c.MinRows)
	}

	if c.SmoothingShape != nil {
		if _, err := smooth.ParseShape(*c.SmoothingShape); err != nil {
			return fmt.Errorf("invalid smoothing_shape: %w", err)
		}
	}

	if c.SmoothingWidthMs != nil && !(*c.SmoothingWidthMs > 0) {
		return fmt.Errorf("smoothing_width_ms must be positive, got %v", *c.SmoothingWidthMs)
	}

	if c.CleanLogRatio != nil && !(*c.CleanLogRatio > 0) {
		return fmt.Errorf("clean_log_ratio must be positive, got %v", *c.CleanLogRatio)
	}

	if c.RefineWindow != nil && *c.RefineWindow <= 0 {
		return fmt.Errorf("refine_window must be positive, got %d", *c.RefineWindow)
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	return nil
}

// GetFlowColumn returns the segmented channel or the default.
func (c *Config) GetFlowColumn() string {
	if c.FlowColumn == nil {
		return recording.ColumnFlow
	}
	return *c.FlowColumn
}

// GetSampleRate returns the sample rate or the default.
func (c *Config) GetSampleRate() float64 {
	if c.SampleRate == nil {
		return core.DefaultSampleRate
	}
	return *c.SampleRate
}

// GetChannels returns the summarized impedance channels or the default.
func (c *Config) GetChannels() []string {
	if len(c.Channels) == 0 {
		return impedance.DefaultChannels
	}
	return c.Channels
}

// GetMinRows returns the minimum number of data rows or the default.
func (c *Config) GetMinRows() int {
	if c.MinRows == nil {
		return recording.MinRows
	}
	return *c.MinRows
}

// GetBaseline returns the crossing baseline or the default.
func (c *Config) GetBaseline() float64 {
	if c.Baseline == nil {
		return 0
	}
	return *c.Baseline
}

// GetSmoothingShape returns the smoothing kernel shape or the default.
func (c *Config) GetSmoothingShape() smooth.Shape {
	if c.SmoothingShape == nil {
		return smooth.ShapeGaussian
	}
	shape, err := smooth.ParseShape(*c.SmoothingShape)
	if err != nil {
		return smooth.ShapeGaussian
	}
	return shape
}

// GetSmoothingWidthMs returns the kernel width or the default.
func (c *Config) GetSmoothingWidthMs() float64 {
	if c.SmoothingWidthMs == nil {
		return smooth.DefaultGaussianWidthMs
	}
	return *c.SmoothingWidthMs
}

// GetCleanLogRatio returns the outlier rejection ratio or the default.
func (c *Config) GetCleanLogRatio() float64 {
	if c.CleanLogRatio == nil {
		return breath.DefaultCleanLogRatio
	}
	return *c.CleanLogRatio
}

// GetRefineWindow returns the zero-crossing search radius or the default.
func (c *Config) GetRefineWindow() int {
	if c.RefineWindow == nil {
		return breath.DefaultRefineWindow
	}
	return *c.RefineWindow
}

// GetAdjustOnDerivative returns the onset adjustment flag or the default.
func (c *Config) GetAdjustOnDerivative() bool {
	if c.AdjustOnDerivative == nil {
		return false
	}
	return *c.AdjustOnDerivative
}

// GetWorkers returns the extractor worker count; 0 selects GOMAXPROCS.
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// Analysis returns the pipeline configuration.
func (c *Config) Analysis() analysis.Config {
	return analysis.Config{
		FlowColumn: c.GetFlowColumn(),
		Breath: breath.Config{
			SampleRate: c.GetSampleRate(),
			Baseline:   c.GetBaseline(),
			Smooth: breath.SmoothConfig{
				Shape:   c.GetSmoothingShape(),
				WidthMs: c.GetSmoothingWidthMs(),
			},
			CleanLogRatio:      c.GetCleanLogRatio(),
			RefineWindow:       c.GetRefineWindow(),
			AdjustOnDerivative: c.GetAdjustOnDerivative(),
		},
		Impedance: impedance.Config{
			Channels: c.GetChannels(),
			Workers:  c.GetWorkers(),
		},
	}
}

// Loader returns the recording loader for this configuration.
func (c *Config) Loader() recording.Loader {
	return recording.Loader{SampleRate: c.GetSampleRate(), MinRows: c.GetMinRows()}
}
