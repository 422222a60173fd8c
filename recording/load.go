package recording

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/cwbudde/algo-resp/internal/monitoring"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads tab-delimited device exports.
type Loader struct {
	// SampleRate is assigned to loaded recordings. Zero selects the default.
	SampleRate float64

	// MinRows overrides the minimum row count. Zero selects MinRows.
	MinRows int
}

// Read parses and validates one export from r. Input that is not valid
// UTF-8 is decoded as Windows-1252.
func (l Loader) Read(r io.Reader, name string) (*Recording, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("recording: read %s: %w", name, err)
	}

	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("recording: decode %s: %w", name, err)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("recording: parse %s: %w", name, err)
	}

	var header []string
	var rows [][]string
	if len(records) > 0 {
		header = trimAll(records[0])
		rows = records[1:]
	}

	if err := Validate(header, rows, l.MinRows); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return build(name, l.SampleRate, header, rows)
}

// LoadFile reads one export from disk. The recording is named after the
// file without its extension.
func (l Loader) LoadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}
	defer f.Close()

	return l.Read(f, stem(path))
}

// Load reads a single file, or every .csv and .txt file of a directory in
// name order. In directory mode files that fail to load are skipped with a
// warning.
func (l Loader) Load(path string) ([]*Recording, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	if !info.IsDir() {
		rec, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []*Recording{rec}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	var recs []*Recording
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".csv" && ext != ".txt") {
			continue
		}

		rec, err := l.LoadFile(filepath.Join(path, e.Name()))
		if err != nil {
			monitoring.Logf("[recording] skipping %s: %v", e.Name(), err)
			continue
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func build(name string, fs float64, header []string, rows [][]string) (*Recording, error) {
	channels := make(map[string][]float64, len(header)-1)
	index := make([]int, len(rows))

	for c, col := range header {
		if col == ColumnIndex {
			for i, row := range rows {
				v, err := strconv.Atoi(strings.TrimSpace(row[c]))
				if err != nil {
					return nil, fmt.Errorf("recording: %s row %d: %w", col, i, err)
				}
				index[i] = v
			}
			continue
		}

		values := make([]float64, len(rows))
		for i, row := range rows {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("recording: %s row %d: %w", col, i, err)
			}
			values[i] = v
		}
		channels[col] = values
	}

	// Rows are ordered by the index column.
	if !slices.IsSorted(index) {
		order := make([]int, len(index))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int { return index[a] - index[b] })

		sorted := make([]int, len(index))
		for i, o := range order {
			sorted[i] = index[o]
		}
		index = sorted

		for col, values := range channels {
			reordered := make([]float64, len(values))
			for i, o := range order {
				reordered[i] = values[o]
			}
			channels[col] = reordered
		}
	}

	return New(name, fs, index, channels)
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
