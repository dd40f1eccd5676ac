package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"waterscan/pkg/raster"
)

// Summary collects the descriptive statistics of a raster's valid samples.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	P25   float64
	P50   float64
	P75   float64

	// Histogram holds equal-width buckets spanning [Min, Max]
	Histogram Histogram
}

// Histogram is a set of counts over contiguous buckets. Edges has one more
// element than Counts; the last bucket includes its upper edge.
type Histogram struct {
	Edges  []float64
	Counts []float64
}

// Summarize computes a Summary with the given number of histogram buckets.
// A raster without valid samples yields NaN statistics and an empty histogram.
func Summarize(r *raster.Raster, bins int) (Summary, error) {
	if err := r.Validate("raster"); err != nil {
		return Summary{}, err
	}
	if bins <= 0 {
		return Summary{}, fmt.Errorf("%w: histogram bins must be positive, got %d", raster.ErrInvalidParameter, bins)
	}
	sorted := sortedValid(r)
	nan := math.NaN()
	s := Summary{Count: len(sorted), Mean: nan, Std: nan, Min: nan, Max: nan, P25: nan, P50: nan, P75: nan}
	if len(sorted) == 0 {
		return s, nil
	}
	s.Mean, s.Std = stat.PopMeanStdDev(sorted, nil)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.50)
	s.P75 = quantile(sorted, 0.75)
	s.Histogram = histogram(sorted, bins)
	return s, nil
}

func histogram(sorted []float64, bins int) Histogram {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram buckets are half-open; widen the last edge so the
	// maximum lands in the final bucket.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}
}
