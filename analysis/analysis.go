// Package analysis runs breath segmentation and impedance feature
// extraction on one recording and joins the results per breath.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-resp/dsp/core"
	"github.com/cwbudde/algo-resp/internal/monitoring"
	"github.com/cwbudde/algo-resp/measure/breath"
	"github.com/cwbudde/algo-resp/measure/impedance"
	"github.com/cwbudde/algo-resp/recording"
)

// ReasonNoBreaths is the Result.Reason of a run that found no valid breath.
const ReasonNoBreaths = "no valid breaths"

// ErrNoRecording is returned by Run for a nil recording.
var ErrNoRecording = errors.New("analysis: nil recording")

// Config holds the pipeline parameters.
type Config struct {
	// FlowColumn names the channel that is segmented.
	FlowColumn string

	Breath    breath.Config
	Impedance impedance.Config
}

// DefaultConfig returns the configuration used for device exports.
func DefaultConfig() Config {
	return Config{FlowColumn: recording.ColumnFlow}
}

// Entry is one breath of the table and its feature row. Features is nil
// when the extractor skipped the breath.
type Entry struct {
	Breath   breath.Breath
	Features *impedance.Row
}

// Result is the outcome of one run.
type Result struct {
	Recording  string
	SampleRate float64

	// Columns are the impedance channels of the feature rows, in order.
	Columns []string

	Table   *breath.Table
	Entries []Entry
	Summary Summary

	// Reason is empty for a run with breaths. It carries the error message
	// of an aborted run or ReasonNoBreaths.
	Reason string
}

// Analyzer runs the pipeline with a fixed configuration.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer. Processor options override the sample
// rate and the extractor worker count of cfg.
func NewAnalyzer(cfg Config, opts ...core.ProcessorOption) *Analyzer {
	proc := core.ProcessorConfig{
		SampleRate: cfg.Breath.SampleRate,
		Workers:    cfg.Impedance.Workers,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&proc)
		}
	}

	cfg.Breath.SampleRate = proc.SampleRate
	cfg.Impedance.Workers = proc.Workers

	if cfg.FlowColumn == "" {
		cfg.FlowColumn = recording.ColumnFlow
	}

	return &Analyzer{cfg: cfg}
}

// Run is a one-shot analysis of rec.
func Run(rec *recording.Recording, cfg Config, opts ...core.ProcessorOption) (*Result, error) {
	return NewAnalyzer(cfg, opts...).Run(rec)
}

// Run segments the flow channel of rec, extracts impedance features for
// every breath and left-joins them by breath index.
//
// A missing column or a segmentation failure aborts the run: the returned
// Result has no table, Reason holds the message, and the error wraps
// breath.ErrMissingFlow, breath.ErrSmoothing, breath.ErrInvalidSampleRate
// or impedance.ErrMissingColumns. A run that finds no breath is not an
// error; its Reason is ReasonNoBreaths.
func (a *Analyzer) Run(rec *recording.Recording) (*Result, error) {
	if rec == nil {
		return nil, ErrNoRecording
	}

	cfg := a.cfg
	if cfg.Breath.SampleRate == 0 {
		cfg.Breath.SampleRate = rec.SampleRate
	}

	res := &Result{Recording: rec.Name, SampleRate: cfg.Breath.SampleRate}

	table, rows, cols, err := a.process(rec, cfg)
	if err != nil {
		monitoring.Logf("[analysis] %s: %v", rec.Name, err)
		res.Reason = err.Error()
		return res, err
	}

	res.Columns = cols
	res.Table = table
	res.Entries = join(table, rows)
	res.Summary = Summarize(rec.Len(), table.SampleRate, res.Entries)

	if len(res.Entries) == 0 {
		monitoring.Logf("[analysis] %s: %s", rec.Name, ReasonNoBreaths)
		res.Reason = ReasonNoBreaths
	}

	return res, nil
}

func (a *Analyzer) process(rec *recording.Recording, cfg Config) (*breath.Table, []impedance.Row, []string, error) {
	flow, ok := rec.Channel(cfg.FlowColumn)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: column %q", breath.ErrMissingFlow, cfg.FlowColumn)
	}

	extractor := impedance.NewExtractor(cfg.Impedance)
	if missing := rec.Missing(extractor.Required()...); len(missing) > 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", impedance.ErrMissingColumns, strings.Join(missing, ", "))
	}

	table, err := breath.Segment(flow, cfg.Breath)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := extractor.Calc(rec, table)
	if err != nil {
		return nil, nil, nil, err
	}

	return table, rows, extractor.Columns(), nil
}

// join pairs every breath with its feature row, if any.
func join(table *breath.Table, rows []impedance.Row) []Entry {
	byIndex := make(map[int]*impedance.Row, len(rows))
	for i := range rows {
		byIndex[rows[i].BreathIndex] = &rows[i]
	}

	entries := make([]Entry, 0, table.Len())
	for _, b := range table.Breaths {
		entries = append(entries, Entry{Breath: b, Features: byIndex[b.Index]})
	}

	return entries
}
