package change

import (
	"fmt"
	"math"
	"strings"

	"waterscan/internal/tiling"
	"waterscan/pkg/raster"
)

// DiffMethod selects how two rasters are differenced.
type DiffMethod int

const (
	// Simple is second - first
	Simple DiffMethod = iota
	// Ratio is second / first
	Ratio
	// Norm is (second - first) / (second + first)
	Norm
)

func (m DiffMethod) String() string {
	switch m {
	case Simple:
		return "simple"
	case Ratio:
		return "ratio"
	case Norm:
		return "norm"
	default:
		return fmt.Sprintf("DiffMethod(%d)", int(m))
	}
}

// ParseDiffMethod maps a case-insensitive method name to a DiffMethod.
// An empty name selects Simple.
func ParseDiffMethod(name string) (DiffMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "simple":
		return Simple, nil
	case "ratio":
		return Ratio, nil
	case "norm", "normalized":
		return Norm, nil
	}
	return 0, fmt.Errorf("%w: unknown diff method %q", raster.ErrInvalidParameter, name)
}

// Diff computes the per-pixel difference of second relative to first.
// Ratio and Norm yield NaN where their denominator is zero.
func Diff(first, second *raster.Raster, m DiffMethod) (*raster.Raster, error) {
	if err := first.Validate("first raster"); err != nil {
		return nil, err
	}
	if err := second.Validate("second raster"); err != nil {
		return nil, err
	}
	if first.Shape() != second.Shape() {
		return nil, fmt.Errorf("%w: first raster %v != second raster %v",
			raster.ErrShapeMismatch, first.Shape(), second.Shape())
	}

	var op func(a, b float64) float64
	switch m {
	case Simple:
		op = func(a, b float64) float64 { return b - a }
	case Ratio:
		op = func(a, b float64) float64 { return divide(b, a) }
	case Norm:
		op = func(a, b float64) float64 { return divide(b-a, b+a) }
	default:
		return nil, fmt.Errorf("%w: unknown diff method %d", raster.ErrInvalidParameter, int(m))
	}

	out := raster.New(first.Rows, first.Cols)
	tiling.Pixels(first.Rows, first.Cols, func(i int) {
		out.Data[i] = op(first.Data[i], second.Data[i])
	})
	return out, nil
}

func divide(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
