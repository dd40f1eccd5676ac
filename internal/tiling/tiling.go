// Package tiling splits row-major raster work into horizontal bands that can
// be processed concurrently.
package tiling

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelThreshold is the pixel count below which work runs on the
// calling goroutine.
const ParallelThreshold = 1 << 18

var workers = runtime.NumCPU()

// SetWorkers sets the maximum number of goroutines used per call.
// Values <= 0 restore the default of one per CPU.
func SetWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	workers = n
}

// Workers returns the current worker limit.
func Workers() int { return workers }

// Band is a half-open range of rows [Start, End).
type Band struct {
	Start, End int
}

// Split divides rows into at most n contiguous bands of near-equal height.
func Split(rows, n int) []Band {
	if rows <= 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if n > rows {
		n = rows
	}
	bands := make([]Band, 0, n)
	step := rows / n
	extra := rows % n
	start := 0
	for i := 0; i < n; i++ {
		h := step
		if i < extra {
			h++
		}
		bands = append(bands, Band{Start: start, End: start + h})
		start += h
	}
	return bands
}

// Rows calls fn for every row band of a rows x cols grid. Small grids are
// processed serially; larger ones use up to Workers() goroutines. fn must
// only write to rows inside its band.
func Rows(rows, cols int, fn func(b Band) error) error {
	if rows*cols < ParallelThreshold || workers == 1 {
		return fn(Band{Start: 0, End: rows})
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for _, b := range Split(rows, workers) {
		g.Go(func() error {
			return fn(b)
		})
	}
	return g.Wait()
}

// Pixels applies fn to every pixel index, in bands.
func Pixels(rows, cols int, fn func(i int)) {
	_ = Rows(rows, cols, func(b Band) error {
		for i := b.Start * cols; i < b.End*cols; i++ {
			fn(i)
		}
		return nil
	})
}
