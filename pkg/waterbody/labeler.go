// Package waterbody identifies discrete water bodies in a water mask by
// connected-component labeling and measures their surface area.
package waterbody

import (
	"fmt"

	"github.com/gammazero/deque"

	"waterscan/pkg/raster"
)

// Connectivity selects which neighbours join two pixels into one body.
type Connectivity int

const (
	// Eight joins edge and corner neighbours. Water bodies that touch only
	// diagonally across pixel boundaries stay whole.
	Eight Connectivity = iota
	// Four joins edge neighbours only.
	Four
)

func (c Connectivity) String() string {
	switch c {
	case Eight:
		return "8-connected"
	case Four:
		return "4-connected"
	default:
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
}

var (
	offsets4 = [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	offsets8 = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

func (c Connectivity) offsets() ([][2]int, error) {
	switch c {
	case Eight:
		return offsets8, nil
	case Four:
		return offsets4, nil
	default:
		return nil, fmt.Errorf("%w: unknown connectivity %d", raster.ErrInvalidParameter, int(c))
	}
}

// Options configures Label.
type Options struct {
	// PixelSize is the ground size of one pixel in metres
	PixelSize raster.PixelSize

	// MinArea is the smallest body area kept, in km². Bodies with a
	// strictly smaller area become background. Zero or negative keeps all.
	MinArea float64

	// Connectivity defaults to Eight
	Connectivity Connectivity
}

// Body describes one labelled water body.
type Body struct {
	Label  int
	Pixels int

	// Area is the surface area in km²
	Area float64

	// Bounding box in pixel coordinates, inclusive
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Result is the outcome of labeling a mask.
type Result struct {
	// Labels holds 0 for background and 1..len(Bodies) for bodies
	Labels *raster.Labels

	// Bodies is ordered by label
	Bodies []Body
}

// Areas returns the label -> area (km²) table.
func (r *Result) Areas() map[int]float64 {
	areas := make(map[int]float64, len(r.Bodies))
	for _, b := range r.Bodies {
		areas[b.Label] = b.Area
	}
	return areas
}

// TotalArea sums the area of every kept body.
func (r *Result) TotalArea() float64 {
	total := 0.0
	for _, b := range r.Bodies {
		total += b.Area
	}
	return total
}

// GetWaterBodies labels the 8-connected water bodies of mask, drops those
// smaller than minArea km² and returns the label grid with each body's area.
func GetWaterBodies(mask *raster.Mask, pixelSize raster.PixelSize, minArea float64) (*raster.Labels, map[int]float64, error) {
	res, err := Label(mask, Options{PixelSize: pixelSize, MinArea: minArea})
	if err != nil {
		return nil, nil, err
	}
	return res.Labels, res.Areas(), nil
}

// Label runs connected-component labeling over the true pixels of mask.
//
// Components are discovered in row-major order of their first pixel and
// kept components are numbered densely from 1 in that order, so identical
// masks always produce identical labels.
func Label(mask *raster.Mask, opts Options) (*Result, error) {
	if err := mask.Validate("mask"); err != nil {
		return nil, err
	}
	if err := opts.PixelSize.Validate(); err != nil {
		return nil, err
	}
	neighbours, err := opts.Connectivity.offsets()
	if err != nil {
		return nil, err
	}

	rows, cols := mask.Rows, mask.Cols
	res := &Result{Labels: raster.NewLabels(rows, cols)}

	visited := make([]bool, len(mask.Data))
	queue := deque.New[int]()
	var component []int

	for start, water := range mask.Data {
		if !water || visited[start] {
			continue
		}

		// Flood the component reachable from start.
		component = component[:0]
		visited[start] = true
		queue.PushBack(start)
		body := Body{MinRow: start / cols, MinCol: start % cols, MaxRow: start / cols, MaxCol: start % cols}
		for queue.Len() > 0 {
			idx := queue.PopFront()
			component = append(component, idx)
			row, col := idx/cols, idx%cols
			body.extend(row, col)
			for _, d := range neighbours {
				nr, nc := row+d[0], col+d[1]
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				n := nr*cols + nc
				if mask.Data[n] && !visited[n] {
					visited[n] = true
					queue.PushBack(n)
				}
			}
		}

		body.Pixels = len(component)
		body.Area = opts.PixelSize.AreaKm2For(body.Pixels)
		if opts.MinArea > 0 && body.Area < opts.MinArea {
			continue
		}
		body.Label = len(res.Bodies) + 1
		for _, idx := range component {
			res.Labels.Data[idx] = body.Label
		}
		res.Bodies = append(res.Bodies, body)
	}
	return res, nil
}

func (b *Body) extend(row, col int) {
	if row < b.MinRow {
		b.MinRow = row
	}
	if row > b.MaxRow {
		b.MaxRow = row
	}
	if col < b.MinCol {
		b.MinCol = col
	}
	if col > b.MaxCol {
		b.MaxCol = col
	}
}
