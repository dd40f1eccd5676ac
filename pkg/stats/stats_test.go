package stats

import (
	"errors"
	"math"
	"testing"

	"waterscan/pkg/raster"
)

// nan is shorthand for a missing sample
var nan = math.NaN()

// newRaster builds a single-row raster from values
func newRaster(values ...float64) *raster.Raster {
	r := raster.New(1, len(values))
	copy(r.Data, values)
	return r
}

// approxEqual compares floats with an absolute tolerance
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestReductionsIgnoreNaN verifies that NaN samples are excluded
func TestReductionsIgnoreNaN(t *testing.T) {
	r := newRaster(1, nan, 2, 3, nan, 4)

	if got := Sum(r); got != 10 {
		t.Errorf("Expected sum 10, got %f", got)
	}
	if got := Mean(r); got != 2.5 {
		t.Errorf("Expected mean 2.5, got %f", got)
	}
	if got := Std(r); !approxEqual(got, math.Sqrt(1.25), 1e-12) {
		t.Errorf("Expected population std %f, got %f", math.Sqrt(1.25), got)
	}
	if got := Min(r); got != 1 {
		t.Errorf("Expected min 1, got %f", got)
	}
	if got := Max(r); got != 4 {
		t.Errorf("Expected max 4, got %f", got)
	}
	if got := Median(r); got != 2.5 {
		t.Errorf("Expected median 2.5, got %f", got)
	}
	if got := Count(r); got != 4 {
		t.Errorf("Expected 4 valid samples, got %d", got)
	}
}

// TestAllNaN verifies the degenerate outputs for an all-missing raster
func TestAllNaN(t *testing.T) {
	r := newRaster(nan, nan, nan)

	if got := Sum(r); got != 0 {
		t.Errorf("Expected sum 0, got %f", got)
	}
	for name, got := range map[string]float64{
		"mean":   Mean(r),
		"std":    Std(r),
		"min":    Min(r),
		"max":    Max(r),
		"median": Median(r),
	} {
		if !math.IsNaN(got) {
			t.Errorf("Expected NaN %s, got %f", name, got)
		}
	}
	p, err := Percentile(r, 90)
	if err != nil || !math.IsNaN(p) {
		t.Errorf("Expected NaN percentile without error, got %f, %v", p, err)
	}
	if CountNonZero(r) != 0 {
		t.Errorf("Expected no non-zero samples")
	}
	values, counts := Unique(r)
	if len(values) != 0 || len(counts) != 0 {
		t.Errorf("Expected no unique values, got %v", values)
	}
}

// TestPercentile checks linear interpolation between ranks
func TestPercentile(t *testing.T) {
	r := newRaster(4, 1, 3, 2, nan)

	cases := map[float64]float64{
		0:   1,
		25:  1.75,
		50:  2.5,
		75:  3.25,
		100: 4,
	}
	for q, expected := range cases {
		got, err := Percentile(r, q)
		if err != nil {
			t.Fatalf("Unexpected error for q=%f: %v", q, err)
		}
		if !approxEqual(got, expected, 1e-12) {
			t.Errorf("Percentile(%f): expected %f, got %f", q, expected, got)
		}
	}

	for _, q := range []float64{-1, 101, nan} {
		if _, err := Percentile(r, q); !errors.Is(err, raster.ErrInvalidParameter) {
			t.Errorf("q=%f: expected ErrInvalidParameter, got %v", q, err)
		}
	}
}

// TestCountNonZeroAndUnique verifies counting after NaN exclusion
func TestCountNonZeroAndUnique(t *testing.T) {
	r := newRaster(0, 1, 1, nan, 2, 0, 1)

	if got := CountNonZero(r); got != 4 {
		t.Errorf("Expected 4 non-zero samples, got %d", got)
	}

	values, counts := Unique(r)
	expectedValues := []float64{0, 1, 2}
	expectedCounts := []int{2, 3, 1}
	if len(values) != len(expectedValues) {
		t.Fatalf("Expected %d unique values, got %v", len(expectedValues), values)
	}
	for i := range values {
		if values[i] != expectedValues[i] || counts[i] != expectedCounts[i] {
			t.Errorf("Entry %d: expected (%f, %d), got (%f, %d)",
				i, expectedValues[i], expectedCounts[i], values[i], counts[i])
		}
	}
}

// TestSummarize checks the summary record and histogram totals
func TestSummarize(t *testing.T) {
	r := raster.New(10, 10)
	for i := range r.Data {
		r.Data[i] = float64(i)
	}
	r.Data[5] = nan

	s, err := Summarize(r, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Count != 99 {
		t.Errorf("Expected 99 valid samples, got %d", s.Count)
	}
	if s.Min != 0 || s.Max != 99 {
		t.Errorf("Expected range [0, 99], got [%f, %f]", s.Min, s.Max)
	}
	if len(s.Histogram.Counts) != 10 || len(s.Histogram.Edges) != 11 {
		t.Fatalf("Expected 10 buckets and 11 edges, got %d and %d",
			len(s.Histogram.Counts), len(s.Histogram.Edges))
	}
	total := 0.0
	for _, c := range s.Histogram.Counts {
		total += c
	}
	if int(total) != s.Count {
		t.Errorf("Histogram counts sum to %f, expected %d", total, s.Count)
	}
	if s.Histogram.Edges[0] != 0 || !approxEqual(s.Histogram.Edges[10], 99, 1e-9) {
		t.Errorf("Expected edges to span [0, 99], got [%f, %f]", s.Histogram.Edges[0], s.Histogram.Edges[10])
	}
}

// TestSummarizeConstant covers a zero-width value range
func TestSummarizeConstant(t *testing.T) {
	s, err := Summarize(newRaster(7, 7, 7), DefaultBins)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	total := 0.0
	for _, c := range s.Histogram.Counts {
		total += c
	}
	if total != 3 {
		t.Errorf("Expected 3 samples in histogram, got %f", total)
	}
	if s.Std != 0 {
		t.Errorf("Expected zero std, got %f", s.Std)
	}
}

// TestSummarizeDegenerate covers all-NaN input and invalid bin counts
func TestSummarizeDegenerate(t *testing.T) {
	s, err := Summarize(newRaster(nan, nan), DefaultBins)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Count != 0 || !math.IsNaN(s.Mean) || len(s.Histogram.Counts) != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}

	if _, err := Summarize(newRaster(1), 0); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for zero bins, got %v", err)
	}
}
