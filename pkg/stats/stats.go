// Package stats provides NaN-aware reductions over rasters. NaN samples are
// treated as absent: they never contribute to a result.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"waterscan/pkg/raster"
)

// DefaultBins is the histogram bucket count used by Summarize.
const DefaultBins = 50

// Valid returns the non-NaN samples of r in row-major order.
func Valid(r *raster.Raster) []float64 {
	out := make([]float64, 0, len(r.Data))
	for _, v := range r.Data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// sortedValid returns the non-NaN samples sorted ascending.
func sortedValid(r *raster.Raster) []float64 {
	v := Valid(r)
	sort.Float64s(v)
	return v
}

// Count returns the number of non-NaN samples.
func Count(r *raster.Raster) int {
	n := 0
	for _, v := range r.Data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Sum returns the sum of valid samples; 0 when there are none.
func Sum(r *raster.Raster) float64 {
	return floats.Sum(Valid(r))
}

// Mean returns the mean of valid samples, or NaN when there are none.
func Mean(r *raster.Raster) float64 {
	v := Valid(r)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// Std returns the population standard deviation of valid samples, or NaN
// when there are none.
func Std(r *raster.Raster) float64 {
	v := Valid(r)
	if len(v) == 0 {
		return math.NaN()
	}
	_, std := stat.PopMeanStdDev(v, nil)
	return std
}

// Min returns the smallest valid sample, or NaN when there are none.
func Min(r *raster.Raster) float64 {
	v := Valid(r)
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Min(v)
}

// Max returns the largest valid sample, or NaN when there are none.
func Max(r *raster.Raster) float64 {
	v := Valid(r)
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Max(v)
}

// Median returns the 50th percentile of valid samples.
func Median(r *raster.Raster) float64 {
	return quantile(sortedValid(r), 0.5)
}

// Percentile returns the q-th percentile (q in [0, 100]) of valid samples
// using linear interpolation between the two closest ranks. All-NaN input
// gives NaN.
func Percentile(r *raster.Raster, q float64) (float64, error) {
	if !(q >= 0 && q <= 100) {
		return 0, fmt.Errorf("%w: percentile must be in [0, 100], got %g", raster.ErrInvalidParameter, q)
	}
	return quantile(sortedValid(r), q/100), nil
}

// quantile interpolates at rank p*(n-1) of sorted data.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// CountNonZero returns the number of valid samples that are not zero.
func CountNonZero(r *raster.Raster) int {
	n := 0
	for _, v := range r.Data {
		if v != 0 && !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Unique returns the distinct valid values in ascending order together with
// the number of times each occurs.
func Unique(r *raster.Raster) (values []float64, counts []int) {
	sorted := sortedValid(r)
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			values = append(values, v)
			counts = append(counts, 1)
			continue
		}
		counts[len(counts)-1]++
	}
	return values, counts
}
