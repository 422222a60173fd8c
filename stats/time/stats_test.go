package time

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   Stats
	}{
		{
			name:   "single sample",
			signal: []float64{4.2},
			want:   Stats{Length: 1, Mean: 4.2, Max: 4.2, Min: 4.2, Range: 0},
		},
		{
			name:   "ramp",
			signal: []float64{1, 2, 3, 4, 5},
			want:   Stats{Length: 5, Mean: 3, Max: 5, Min: 1, Range: 4},
		},
		{
			name:   "negative values",
			signal: []float64{-1, -3, 2},
			want:   Stats{Length: 3, Mean: -2.0 / 3, Max: 2, Min: -3, Range: 5},
		},
		{
			name:   "constant",
			signal: []float64{7, 7, 7},
			want:   Stats{Length: 3, Mean: 7, Max: 7, Min: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.signal)

			if got.Length != tt.want.Length {
				t.Fatalf("Length = %d, want %d", got.Length, tt.want.Length)
			}

			for _, f := range []struct {
				name      string
				got, want float64
			}{
				{"Mean", got.Mean, tt.want.Mean},
				{"Max", got.Max, tt.want.Max},
				{"Min", got.Min, tt.want.Min},
				{"Range", got.Range, tt.want.Range},
			} {
				if !almostEqual(f.got, f.want, tolerance) {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	if s.Length != 0 || !math.IsNaN(s.Mean) || !math.IsNaN(s.Range) {
		t.Fatalf("unexpected empty stats: %+v", s)
	}
}

func TestSpan(t *testing.T) {
	signal := []float64{9, 1, 5, 3, -2, 8}

	s, err := Span(signal, 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Length != 3 || !almostEqual(s.Mean, 3, tolerance) || s.Min != 1 || s.Max != 5 {
		t.Fatalf("got %+v", s)
	}

	one, err := Span(signal, 4, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if one.Mean != -2 || one.Min != -2 || one.Max != -2 || one.Range != 0 {
		t.Fatalf("single sample span: %+v", one)
	}
}

func TestSpanErrors(t *testing.T) {
	signal := []float64{1, 2, 3}

	for _, tc := range []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 1},
		{"end past signal", 0, 3},
		{"reversed", 2, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Span(signal, tc.start, tc.end); !errors.Is(err, ErrRange) {
				t.Fatalf("expected ErrRange, got %v", err)
			}
			if _, err := SpanMean(signal, tc.start, tc.end); !errors.Is(err, ErrRange) {
				t.Fatalf("expected ErrRange, got %v", err)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5, tolerance) {
		t.Fatalf("Mean = %v, want 2.5", got)
	}
	if !math.IsNaN(Mean(nil)) {
		t.Fatal("Mean(nil) should be NaN")
	}

	got, err := SpanMean([]float64{10, 20, 30, 40}, 1, 2)
	if err != nil || !almostEqual(got, 25, tolerance) {
		t.Fatalf("SpanMean = %v, %v", got, err)
	}
}
