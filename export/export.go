// Package export renders analysis results as CSV tables and zip bundles.
//
// Three tables are produced per recording: the wide feature table (one row
// per breath), the tall feature table (one row per breath and segment) and
// the breath table. Numbers are written in the shortest representation that
// round-trips; missing values are empty cells.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/cwbudde/algo-resp/analysis"
)

var (
	// ErrNoTable is returned for an aborted run.
	ErrNoTable = errors.New("export: result has no breath table")

	// ErrMissingColumns is returned when a result lacks a channel the
	// tall table needs.
	ErrMissingColumns = errors.New("export: missing required columns")
)

// Feature statistics suffixes, in wide column order.
const (
	StatInsp         = "INSP"
	StatExp          = "EXP"
	StatTotal        = "TOTAL"
	StatMin          = "MIN"
	StatMax          = "MAX"
	StatRange        = "MAX-MIN"
	StatInspMinusExp = "INSP-EXP"
)

// Stats lists the per-channel statistics of the wide table.
var Stats = []string{StatInsp, StatExp, StatTotal, StatMin, StatMax, StatRange, StatInspMinusExp}

// formatFloat writes v without trailing zeros; NaN and Inf are empty.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a header and rows as comma-separated values.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: write rows: %w", err)
	}

	return nil
}

// CSV renders a header and rows to bytes.
func CSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, header, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func requireTable(res *analysis.Result) error {
	if res == nil || res.Table == nil {
		return ErrNoTable
	}
	return nil
}
