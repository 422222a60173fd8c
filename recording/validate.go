package recording

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// MinRows is the shortest recording accepted by Validate.
const MinRows = 1000

// ErrValidation is wrapped by every rejection reported by Validate.
var ErrValidation = errors.New("recording: invalid export")

var illegalChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f\x{200b}]`)

// Validate checks a parsed export: exactly ExpectedColumns, no empty cells,
// numeric values, no control characters and at least minRows data rows.
// A non-positive minRows selects MinRows. The first problem found is
// returned.
func Validate(header []string, rows [][]string, minRows int) error {
	if minRows <= 0 {
		minRows = MinRows
	}

	if len(header) == 0 || len(rows) == 0 {
		return fmt.Errorf("%w: file is empty", ErrValidation)
	}

	if missing := difference(ExpectedColumns, header); len(missing) > 0 {
		return fmt.Errorf("%w: missing columns: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if extra := difference(header, ExpectedColumns); len(extra) > 0 {
		return fmt.Errorf("%w: unexpected columns: %s", ErrValidation, strings.Join(extra, ", "))
	}

	if len(header) != len(ExpectedColumns) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrValidation, len(ExpectedColumns), len(header))
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("%w: row %d has %d fields, expected %d", ErrValidation, i, len(row), len(header))
		}
	}

	if nulls := nullColumns(header, rows); len(nulls) > 0 {
		return fmt.Errorf("%w: nulls in columns: %s", ErrValidation, strings.Join(nulls, ", "))
	}

	for c, col := range header {
		for i, row := range rows {
			if !numeric(col, row[c]) {
				return fmt.Errorf("%w: non-numeric value in column %q at row %d", ErrValidation, col, i)
			}
		}
	}

	for c, col := range header {
		for i, row := range rows {
			if illegalChars.MatchString(row[c]) {
				return fmt.Errorf("%w: illegal character in %s[%d]", ErrValidation, col, i)
			}
		}
	}

	if len(rows) < minRows {
		return fmt.Errorf("%w: only %d rows; expected at least %d", ErrValidation, len(rows), minRows)
	}

	return nil
}

// difference returns the sorted values of a that are absent from b.
func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if !slices.Contains(b, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func nullColumns(header []string, rows [][]string) []string {
	var out []string
	for c, col := range header {
		for _, row := range rows {
			if isNull(row[c]) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

func isNull(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "nan", "null", "na", "n/a":
		return true
	default:
		return false
	}
}

func numeric(col, cell string) bool {
	cell = strings.TrimSpace(cell)
	if col == ColumnIndex {
		_, err := strconv.Atoi(cell)
		return err == nil
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}
