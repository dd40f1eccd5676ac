package filter

import (
	"fmt"
	"math"
	"sort"

	"waterscan/internal/tiling"
	"waterscan/pkg/raster"
)

// Median replaces every valid sample with the median of the valid samples
// in the (2*radius+1) square window around it. Windows are clipped at the
// raster edges.
func Median(r *raster.Raster, radius int) (*raster.Raster, error) {
	if err := r.Validate("raster"); err != nil {
		return nil, err
	}
	if radius < 1 {
		return nil, fmt.Errorf("%w: median radius must be at least 1, got %d", raster.ErrInvalidParameter, radius)
	}

	out := raster.New(r.Rows, r.Cols)
	_ = tiling.Rows(r.Rows, r.Cols, func(b tiling.Band) error {
		window := make([]float64, 0, (2*radius+1)*(2*radius+1))
		for y := b.Start; y < b.End; y++ {
			for x := 0; x < r.Cols; x++ {
				if math.IsNaN(r.At(y, x)) {
					out.Set(y, x, math.NaN())
					continue
				}
				window = window[:0]
				for wy := max(0, y-radius); wy <= min(r.Rows-1, y+radius); wy++ {
					for wx := max(0, x-radius); wx <= min(r.Cols-1, x+radius); wx++ {
						if v := r.At(wy, wx); !math.IsNaN(v) {
							window = append(window, v)
						}
					}
				}
				out.Set(y, x, median(window))
			}
		}
		return nil
	})
	return out, nil
}

// median sorts values in place and returns their median.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
