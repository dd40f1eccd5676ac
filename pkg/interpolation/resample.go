// Package interpolation resamples rasters onto a grid of a different shape.
//
// Samples are aligned on pixel centres. NaN samples are treated as no-data:
// they are dropped from every interpolation kernel and the remaining weights
// are renormalised. A target pixel whose kernel holds no valid sample is NaN.
package interpolation

import (
	"fmt"
	"math"
	"strings"

	"waterscan/internal/tiling"
	"waterscan/pkg/raster"
)

// Method selects the resampling kernel.
type Method int

const (
	// Bilinear interpolates between the 2x2 nearest samples.
	Bilinear Method = iota
	// Nearest copies the closest sample.
	Nearest
	// Cubic uses a 4x4 Catmull-Rom kernel.
	Cubic
)

// DefaultMethod is used when no method is configured.
const DefaultMethod = Bilinear

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a case-insensitive name to a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest":
		return Nearest, nil
	case "bilinear", "":
		return Bilinear, nil
	case "cubic":
		return Cubic, nil
	}
	return 0, fmt.Errorf("%w: unknown resampling method %q", raster.ErrInvalidParameter, name)
}

// weightEpsilon is the smallest kernel weight sum treated as non-zero.
const weightEpsilon = 1e-12

// cubicCancellation is the smallest ratio of the signed to the absolute
// cubic weight sum accepted before falling back to bilinear.
const cubicCancellation = 0.5

// Resample produces a rows x cols raster from r using method m.
func Resample(r *raster.Raster, rows, cols int, m Method) (*raster.Raster, error) {
	if err := r.Validate("raster"); err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: target shape must be positive, got (%d, %d)", raster.ErrInvalidParameter, rows, cols)
	}

	var sample func(r *raster.Raster, y, x float64) float64
	switch m {
	case Nearest:
		sample = nearest
	case Bilinear:
		sample = bilinear
	case Cubic:
		sample = cubic
	default:
		return nil, fmt.Errorf("%w: unknown resampling method %v", raster.ErrInvalidParameter, m)
	}

	if rows == r.Rows && cols == r.Cols {
		return r.Clone(), nil
	}

	out := raster.New(rows, cols)
	scaleY := float64(r.Rows) / float64(rows)
	scaleX := float64(r.Cols) / float64(cols)
	_ = tiling.Rows(rows, cols, func(b tiling.Band) error {
		for i := b.Start; i < b.End; i++ {
			y := sourceCoord(i, scaleY, r.Rows)
			for j := 0; j < cols; j++ {
				x := sourceCoord(j, scaleX, r.Cols)
				out.Data[i*cols+j] = sample(r, y, x)
			}
		}
		return nil
	})
	return out, nil
}

// sourceCoord maps a destination index to a clamped source coordinate.
func sourceCoord(dst int, scale float64, size int) float64 {
	s := (float64(dst)+0.5)*scale - 0.5
	if s < 0 {
		return 0
	}
	if max := float64(size - 1); s > max {
		return max
	}
	return s
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

func nearest(r *raster.Raster, y, x float64) float64 {
	// Round half up so that exact midpoints are deterministic.
	i := clampIndex(int(math.Floor(y+0.5)), r.Rows)
	j := clampIndex(int(math.Floor(x+0.5)), r.Cols)
	return r.At(i, j)
}

func bilinear(r *raster.Raster, y, x float64) float64 {
	y0 := int(math.Floor(y))
	x0 := int(math.Floor(x))
	fy := y - float64(y0)
	fx := x - float64(x0)

	var sum, wsum float64
	for dy := 0; dy <= 1; dy++ {
		wy := 1 - fy
		if dy == 1 {
			wy = fy
		}
		for dx := 0; dx <= 1; dx++ {
			wx := 1 - fx
			if dx == 1 {
				wx = fx
			}
			w := wy * wx
			if w == 0 {
				continue
			}
			v := r.At(clampIndex(y0+dy, r.Rows), clampIndex(x0+dx, r.Cols))
			if math.IsNaN(v) {
				continue
			}
			sum += w * v
			wsum += w
		}
	}
	if wsum < weightEpsilon {
		return math.NaN()
	}
	return sum / wsum
}

// catmullRom is the cubic convolution kernel with a = -0.5.
func catmullRom(t float64) float64 {
	const a = -0.5
	t = math.Abs(t)
	switch {
	case t <= 1:
		return (a+2)*t*t*t - (a+3)*t*t + 1
	case t < 2:
		return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
	default:
		return 0
	}
}

func cubic(r *raster.Raster, y, x float64) float64 {
	y0 := int(math.Floor(y))
	x0 := int(math.Floor(x))

	var wy, wx [4]float64
	for k := 0; k < 4; k++ {
		wy[k] = catmullRom(y - float64(y0-1+k))
		wx[k] = catmullRom(x - float64(x0-1+k))
	}

	var sum, wsum, wabs float64
	for ky := 0; ky < 4; ky++ {
		if wy[ky] == 0 {
			continue
		}
		row := clampIndex(y0-1+ky, r.Rows)
		for kx := 0; kx < 4; kx++ {
			w := wy[ky] * wx[kx]
			if w == 0 {
				continue
			}
			v := r.At(row, clampIndex(x0-1+kx, r.Cols))
			if math.IsNaN(v) {
				continue
			}
			sum += w * v
			wsum += w
			wabs += math.Abs(w)
		}
	}
	if wabs == 0 {
		return math.NaN()
	}
	// Dropped taps can leave mostly negative lobes, whose near-zero sum
	// would amplify the remaining samples.
	if wsum < cubicCancellation*wabs {
		return bilinear(r, y, x)
	}
	return sum / wsum
}

// ResampleMask resamples a mask with nearest-neighbour selection.
func ResampleMask(m *raster.Mask, rows, cols int) (*raster.Mask, error) {
	if err := m.Validate("mask"); err != nil {
		return nil, err
	}
	r, err := Resample(m.ToRaster(), rows, cols, Nearest)
	if err != nil {
		return nil, err
	}
	return raster.MaskFromRaster(r)
}

// Match returns b resampled to a's shape, or b itself when the shapes
// already agree.
func Match(a, b *raster.Raster, m Method) (*raster.Raster, error) {
	if err := a.Validate("reference raster"); err != nil {
		return nil, err
	}
	if a.Shape() == b.Shape() {
		return b, nil
	}
	return Resample(b, a.Rows, a.Cols, m)
}
