// Package impedance computes per-breath statistics of the oscillometry
// impedance channels.
//
// For every breath of a [breath.Table] the extractor averages each channel
// over the inspiration, the expiration and the whole breath, reports the
// minimum, maximum and range over the whole breath, and takes the volume
// change of both halves from the cumulative Volume channel. Breaths are
// processed concurrently and returned in table order.
package impedance

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-resp/internal/monitoring"
	"github.com/cwbudde/algo-resp/measure/breath"
	"github.com/cwbudde/algo-resp/recording"
	timestats "github.com/cwbudde/algo-resp/stats/time"
)

var (
	// ErrMissingColumns is returned when a required channel is absent.
	ErrMissingColumns = errors.New("impedance: missing required columns")

	// ErrNoInput is returned for a nil recording or breath table.
	ErrNoInput = errors.New("impedance: nil recording or breath table")
)

// DefaultChannels are the measured channels summarized per breath.
var DefaultChannels = []string{recording.ColumnR5, recording.ColumnR19, recording.ColumnX5}

// DefaultDiffs derives the small-airway resistance R5-R19.
var DefaultDiffs = []Diff{{Name: "R5-19", Minuend: recording.ColumnR5, Subtrahend: recording.ColumnR19}}

// Diff is a channel derived as Minuend - Subtrahend.
type Diff struct {
	Name       string
	Minuend    string
	Subtrahend string
}

// Config holds extraction parameters.
type Config struct {
	// Channels are summarized in addition to the derived ones.
	Channels []string

	// Diffs are derived channels, summarized before Channels.
	Diffs []Diff

	// Workers bounds the number of breaths processed concurrently.
	Workers int
}

// ChannelStats are the statistics of one channel over one breath.
type ChannelStats struct {
	Insp         float64 // mean over the inspiration
	Exp          float64 // mean over the expiration
	Total        float64 // mean over the whole breath
	Min          float64
	Max          float64
	Range        float64 // Max - Min
	InspMinusExp float64
}

// Row holds the features of one breath.
type Row struct {
	BreathIndex int
	Channels    map[string]ChannelStats
	InspVolume  float64
	ExpVolume   float64
}

// Extractor computes feature rows from a recording and its breath table.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor. Nil Channels and Diffs select the
// defaults; a non-positive Workers selects GOMAXPROCS.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: normalizeConfig(cfg)}
}

// Calc is a one-shot extraction with cfg.
func Calc(rec *recording.Recording, table *breath.Table, cfg Config) ([]Row, error) {
	return NewExtractor(cfg).Calc(rec, table)
}

// Columns returns the summarized channel names in output order.
func (e *Extractor) Columns() []string {
	cols := make([]string, 0, len(e.cfg.Diffs)+len(e.cfg.Channels))
	for _, d := range e.cfg.Diffs {
		cols = append(cols, d.Name)
	}
	return append(cols, e.cfg.Channels...)
}

// Required returns the channels a recording must provide.
func (e *Extractor) Required() []string {
	req := append([]string(nil), e.cfg.Channels...)
	for _, d := range e.cfg.Diffs {
		req = append(req, d.Minuend, d.Subtrahend)
	}
	return append(req, recording.ColumnVolume)
}

// Calc computes one row per valid breath of table, in table order.
//
// Breath boundaries are sample numbers and are located in rec.Index by
// binary search. A breath whose boundaries fall outside the recording or
// are out of order is logged and skipped. A missing required channel fails
// the whole call with ErrMissingColumns.
func (e *Extractor) Calc(rec *recording.Recording, table *breath.Table) ([]Row, error) {
	if rec == nil || table == nil {
		return nil, ErrNoInput
	}

	if missing := rec.Missing(e.Required()...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	signals := e.signals(rec)
	volume, _ := rec.Channel(recording.ColumnVolume)
	cols := e.Columns()

	slots := make([]*Row, len(table.Breaths))

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)

	for i, b := range table.Breaths {
		g.Go(func() error {
			pos, reason := locate(rec.Index, b)
			if reason != "" {
				monitoring.Logf("[impedance] skipped breath %d: %s", b.Index, reason)
				return nil
			}

			row := Row{
				BreathIndex: b.Index,
				Channels:    make(map[string]ChannelStats, len(cols)),
				InspVolume:  volume[pos.inspEnd] - volume[pos.inspStart],
				ExpVolume:   volume[pos.expEnd] - volume[pos.expStart],
			}

			for n, sig := range signals {
				row.Channels[cols[n]] = channelStats(sig, pos)
			}

			slots[i] = &row
			return nil
		})
	}

	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	rows := make([]Row, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			rows = append(rows, *r)
		}
	}

	return rows, nil
}

// signals returns the sample arrays in Columns order, deriving the diffs.
func (e *Extractor) signals(rec *recording.Recording) [][]float64 {
	out := make([][]float64, 0, len(e.cfg.Diffs)+len(e.cfg.Channels))

	for _, d := range e.cfg.Diffs {
		a, _ := rec.Channel(d.Minuend)
		b, _ := rec.Channel(d.Subtrahend)
		out = append(out, subtract(a, b))
	}

	for _, name := range e.cfg.Channels {
		ch, _ := rec.Channel(name)
		out = append(out, ch)
	}

	return out
}

func subtract(a, b []float64) []float64 {
	neg := make([]float64, len(b))
	vecmath.ScaleBlock(neg, b, -1)

	out := make([]float64, len(a))
	vecmath.AddBlock(out, a, neg)

	return out
}

type positions struct {
	inspStart, inspEnd, expStart, expEnd int
}

// locate maps breath boundaries to array positions (leftmost insertion
// point, like numpy's searchsorted) and checks them.
func locate(index []int, b breath.Breath) (positions, string) {
	p := positions{
		inspStart: sort.SearchInts(index, b.InspirationStart),
		inspEnd:   sort.SearchInts(index, b.InspirationEnd),
		expStart:  sort.SearchInts(index, b.ExpirationStart),
		expEnd:    sort.SearchInts(index, b.ExpirationEnd),
	}

	switch {
	case len(index) == 0:
		return p, "empty recording"
	case p.expEnd >= len(index) || p.inspEnd >= len(index) || p.expStart >= len(index):
		return p, fmt.Sprintf("boundary %d past the last sample %d", b.ExpirationEnd, index[len(index)-1])
	case p.inspStart > p.inspEnd:
		return p, "inspiration start after end"
	case p.expStart > p.expEnd:
		return p, "expiration start after end"
	case p.inspEnd >= p.expStart:
		return p, "inspiration overlaps expiration"
	default:
		return p, ""
	}
}

func channelStats(sig []float64, p positions) ChannelStats {
	// Positions are checked by locate.
	insp, _ := timestats.SpanMean(sig, p.inspStart, p.inspEnd)
	exp, _ := timestats.SpanMean(sig, p.expStart, p.expEnd)
	total, _ := timestats.Span(sig, p.inspStart, p.expEnd)

	return ChannelStats{
		Insp:         insp,
		Exp:          exp,
		Total:        total.Mean,
		Min:          total.Min,
		Max:          total.Max,
		Range:        total.Range,
		InspMinusExp: insp - exp,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Channels == nil {
		cfg.Channels = DefaultChannels
	}

	if cfg.Diffs == nil {
		cfg.Diffs = DefaultDiffs
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	return cfg
}
