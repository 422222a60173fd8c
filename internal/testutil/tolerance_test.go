package testutil

import (
	"math"
	"testing"
)

// recorder captures Fatalf calls without stopping the test.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(string, ...any) { r.failed = true }

func TestRequireSliceNearlyEqual(t *testing.T) {
	tests := []struct {
		name      string
		got, want []float64
		fail      bool
	}{
		{"equal", []float64{1, 2}, []float64{1, 2}, false},
		{"within eps", []float64{1, 2}, []float64{1, 2 + 1e-10}, false},
		{"outside eps", []float64{1, 2}, []float64{1, 2.1}, true},
		{"length", []float64{1}, []float64{1, 2}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{TB: t}
			RequireSliceNearlyEqual(r, tc.got, tc.want, 1e-9)
			if r.failed != tc.fail {
				t.Fatalf("failed = %v, want %v", r.failed, tc.fail)
			}
		})
	}
}

func TestRequireFinite(t *testing.T) {
	r := &recorder{TB: t}
	RequireFinite(r, []float64{0, 1, -1})
	if r.failed {
		t.Fatal("finite data reported as non-finite")
	}

	RequireFinite(r, []float64{0, math.Inf(1)})
	if !r.failed {
		t.Fatal("Inf not reported")
	}
}
