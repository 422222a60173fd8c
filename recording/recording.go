// Package recording models one oscillometry recording and loads it from the
// device's tab-delimited export.
package recording

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-resp/dsp/core"
)

// Column names of the device export.
const (
	ColumnFlow   = "Flow_Filtered"
	ColumnR5     = "R5"
	ColumnX5     = "X5"
	ColumnR11    = "R11"
	ColumnX11    = "X11"
	ColumnR19    = "R19"
	ColumnX19    = "X19"
	ColumnIndex  = "#"
	ColumnVolume = "Volume"
)

// ExpectedColumns lists every column of a valid export, in device order.
var ExpectedColumns = []string{
	ColumnFlow, ColumnR5, ColumnX5, ColumnR11, ColumnX11, ColumnR19, ColumnX19, ColumnIndex, ColumnVolume,
}

var (
	ErrLengthMismatch = errors.New("recording: channel length differs from index length")
	ErrUnsortedIndex  = errors.New("recording: sample index must be strictly increasing")
	ErrEmpty          = errors.New("recording: no samples")
)

// Recording holds the synchronized channels of one recording. All channels
// share Index, the integer sample number of each row.
type Recording struct {
	Name       string
	SampleRate float64
	Index      []int
	Channels   map[string][]float64
}

// New validates and returns a recording. A nil index is replaced by
// 0..N-1, where N is the common channel length. A non-positive sample rate
// selects core.DefaultSampleRate.
func New(name string, sampleRate float64, index []int, channels map[string][]float64) (*Recording, error) {
	if sampleRate <= 0 {
		sampleRate = core.DefaultSampleRate
	}

	if index == nil {
		keys := sortedKeys(channels)
		if len(keys) == 0 || len(channels[keys[0]]) == 0 {
			return nil, ErrEmpty
		}

		n := len(channels[keys[0]])

		index = make([]int, n)
		for i := range index {
			index[i] = i
		}
	}

	if len(index) == 0 {
		return nil, ErrEmpty
	}

	for i := 1; i < len(index); i++ {
		if index[i] <= index[i-1] {
			return nil, fmt.Errorf("%w: row %d has %d after %d", ErrUnsortedIndex, i, index[i], index[i-1])
		}
	}

	for _, ch := range sortedKeys(channels) {
		if len(channels[ch]) != len(index) {
			return nil, fmt.Errorf("%w: %s has %d samples, index has %d",
				ErrLengthMismatch, ch, len(channels[ch]), len(index))
		}
	}

	return &Recording{
		Name:       name,
		SampleRate: sampleRate,
		Index:      index,
		Channels:   channels,
	}, nil
}

// Len returns the number of samples.
func (r *Recording) Len() int {
	return len(r.Index)
}

// Channel returns the samples of the named channel.
func (r *Recording) Channel(name string) ([]float64, bool) {
	ch, ok := r.Channels[name]
	return ch, ok
}

// Missing returns the names that are not channels of r, sorted and without
// duplicates.
func (r *Recording) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := r.Channels[name]; !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// ChannelNames returns the channel names in sorted order.
func (r *Recording) ChannelNames() []string {
	return sortedKeys(r.Channels)
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
