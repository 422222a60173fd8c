package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-resp/internal/monitoring"
	"github.com/cwbudde/algo-resp/recording"
)

// writeExport writes n rows of a 0.25 Hz breathing export to dir/name.
func writeExport(t *testing.T, dir, name string, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(recording.ExpectedColumns, "\t"))
	b.WriteString("\n")
	for i := range n {
		flow := math.Sin(2 * math.Pi * 0.25 * float64(i) / 200)
		fmt.Fprintf(&b, "%.6f\t3.1\t-0.4\t2.9\t-0.2\t2.5\t0.1\t%d\t%.4f\n", flow, i, float64(i)/100)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func quiet(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func TestRunWritesTablesAndStoresRuns(t *testing.T) {
	quiet(t)

	in := t.TempDir()
	writeExport(t, in, "p01.txt", 4000)
	writeExport(t, in, "p02.csv", 3000)

	out := filepath.Join(t.TempDir(), "results")
	db := filepath.Join(t.TempDir(), "runs.db")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-out", out, "-tall", "-db", db, in}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "p01")
	assert.Contains(t, stdout.String(), "p02")

	for _, name := range []string{"p01_features.csv", "p01_breaths.csv", "p01_features_tall.csv", "p02_features.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	stdout.Reset()
	code = run([]string{"-list", "-db", db}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "p01")
	assert.Contains(t, stdout.String(), "p02")
}

func TestRunZip(t *testing.T) {
	quiet(t)

	path := writeExport(t, t.TempDir(), "p03.txt", 2000)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-out", out, "-zip", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.FileExists(t, filepath.Join(out, "p03.zip"))
	assert.NoFileExists(t, filepath.Join(out, "p03_features.csv"))
}

func TestRunConfigFile(t *testing.T) {
	quiet(t)

	dir := t.TempDir()
	path := writeExport(t, dir, "p04.txt", 2000)
	cfg := filepath.Join(dir, "resp.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"flow_column": "Flow_Raw"}`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, path}, &stdout, &stderr)

	// The configured flow column does not exist in the export.
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "missing flow signal")
}

func TestRunFailures(t *testing.T) {
	quiet(t)

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no inputs", nil, 2, "no input files"},
		{"zip without out", []string{"-zip", "x.txt"}, 2, "-zip requires -out"},
		{"list without db", []string{"-list"}, 2, "-list requires -db"},
		{"unknown flag", []string{"-frobnicate"}, 2, "flag provided but not defined"},
		{"missing file", []string{filepath.Join(t.TempDir(), "absent.txt")}, 1, "error:"},
		{"bad config", []string{"-config", "resp.yaml", "x.txt"}, 1, ".json extension"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tc.args, &stdout, &stderr)

			assert.Equal(t, tc.code, code)
			assert.Contains(t, stderr.String(), tc.msg)
		})
	}
}
