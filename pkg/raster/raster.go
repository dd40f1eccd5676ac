// Package raster defines the grid types shared by every waterscan package:
// numeric rasters, boolean masks, label grids and pixel geometry.
package raster

import (
	"fmt"
	"math"
)

// Raster is a 2D grid of samples stored row-major.
// NaN marks missing or invalid data.
type Raster struct {
	// Rows is the number of pixel rows (height)
	Rows int

	// Cols is the number of pixel columns (width)
	Cols int

	// Data holds Rows*Cols samples in row-major order
	Data []float64
}

// New allocates a zero-filled raster of the given shape.
func New(rows, cols int) *Raster {
	return &Raster{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromRows builds a raster from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Raster, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: raster rows cannot be empty", ErrInvalidParameter)
	}
	r := New(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != r.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), r.Cols)
		}
		copy(r.Data[i*r.Cols:], row)
	}
	return r, nil
}

// Filled allocates a raster with every sample set to v.
func Filled(rows, cols int, v float64) *Raster {
	r := New(rows, cols)
	for i := range r.Data {
		r.Data[i] = v
	}
	return r
}

// Shape returns the raster dimensions.
func (r *Raster) Shape() Shape { return Shape{Rows: r.Rows, Cols: r.Cols} }

// Len returns the number of pixels.
func (r *Raster) Len() int { return r.Rows * r.Cols }

// At returns the sample at (row, col).
func (r *Raster) At(row, col int) float64 { return r.Data[row*r.Cols+col] }

// Set stores v at (row, col).
func (r *Raster) Set(row, col int, v float64) { r.Data[row*r.Cols+col] = v }

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	c := New(r.Rows, r.Cols)
	copy(c.Data, r.Data)
	return c
}

// Validate checks that the raster is non-empty and its buffer matches its shape.
func (r *Raster) Validate(name string) error {
	if r == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidParameter, name)
	}
	if r.Rows <= 0 || r.Cols <= 0 {
		return fmt.Errorf("%w: %s cannot be empty (shape %v)", ErrInvalidParameter, name, r.Shape())
	}
	if len(r.Data) != r.Rows*r.Cols {
		return fmt.Errorf("%w: %s has %d samples for shape %v", ErrShapeMismatch, name, len(r.Data), r.Shape())
	}
	return nil
}

// ReplaceNoData returns a copy in which every sample equal to nodata is NaN.
func (r *Raster) ReplaceNoData(nodata float64) *Raster {
	c := r.Clone()
	for i, v := range c.Data {
		if v == nodata {
			c.Data[i] = math.NaN()
		}
	}
	return c
}

// Shape is a (rows, cols) pair.
type Shape struct {
	Rows, Cols int
}

func (s Shape) String() string { return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols) }

// Mask is a boolean grid, true where a condition holds.
type Mask struct {
	Rows int
	Cols int
	Data []bool
}

// NewMask allocates an all-false mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Data: make([]bool, rows*cols)}
}

// MaskFromRows builds a mask from a slice of equal-length rows.
func MaskFromRows(rows [][]bool) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: mask rows cannot be empty", ErrInvalidParameter)
	}
	m := NewMask(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), m.Cols)
		}
		copy(m.Data[i*m.Cols:], row)
	}
	return m, nil
}

// MaskFromRaster coerces a numeric raster to a mask: non-zero samples are
// true, zero and NaN samples are false.
func MaskFromRaster(r *Raster) (*Mask, error) {
	if err := r.Validate("raster"); err != nil {
		return nil, err
	}
	m := NewMask(r.Rows, r.Cols)
	for i, v := range r.Data {
		m.Data[i] = v != 0 && !math.IsNaN(v)
	}
	return m, nil
}

func (m *Mask) Shape() Shape { return Shape{Rows: m.Rows, Cols: m.Cols} }

func (m *Mask) Len() int { return m.Rows * m.Cols }

func (m *Mask) At(row, col int) bool { return m.Data[row*m.Cols+col] }

func (m *Mask) Set(row, col int, v bool) { m.Data[row*m.Cols+col] = v }

// Count returns the number of true pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Validate checks that the mask is non-empty and its buffer matches its shape.
func (m *Mask) Validate(name string) error {
	if m == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidParameter, name)
	}
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: %s cannot be empty (shape %v)", ErrInvalidParameter, name, m.Shape())
	}
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %s has %d samples for shape %v", ErrShapeMismatch, name, len(m.Data), m.Shape())
	}
	return nil
}

// ToRaster converts the mask to a 0/1 raster.
func (m *Mask) ToRaster() *Raster {
	r := New(m.Rows, m.Cols)
	for i, v := range m.Data {
		if v {
			r.Data[i] = 1
		}
	}
	return r
}

// Labels is a grid of non-negative integer labels; 0 is background.
type Labels struct {
	Rows int
	Cols int
	Data []int
}

// NewLabels allocates an all-background label grid.
func NewLabels(rows, cols int) *Labels {
	return &Labels{Rows: rows, Cols: cols, Data: make([]int, rows*cols)}
}

func (l *Labels) Shape() Shape { return Shape{Rows: l.Rows, Cols: l.Cols} }

func (l *Labels) At(row, col int) int { return l.Data[row*l.Cols+col] }

// Max returns the highest label present.
func (l *Labels) Max() int {
	max := 0
	for _, v := range l.Data {
		if v > max {
			max = v
		}
	}
	return max
}

// PixelSize is the ground footprint of one pixel in metres.
type PixelSize struct {
	// X is the pixel width (column spacing)
	X float64

	// Y is the pixel height (row spacing)
	Y float64
}

// Square returns the pixel size of a square pixel with edge s.
func Square(s float64) PixelSize { return PixelSize{X: s, Y: s} }

// Validate reports an error unless both dimensions are positive and finite.
func (p PixelSize) Validate() error {
	if !(p.X > 0) || !(p.Y > 0) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return fmt.Errorf("%w: pixel size must be positive, got (%g, %g)", ErrInvalidParameter, p.X, p.Y)
	}
	return nil
}

// AreaKm2 returns the area of one pixel in square kilometres.
func (p PixelSize) AreaKm2() float64 {
	return p.AreaKm2For(1)
}

// AreaKm2For returns the area of n pixels in square kilometres. The count is
// multiplied in before the unit conversion so that whole-metre areas convert
// with a single rounding.
func (p PixelSize) AreaKm2For(n int) float64 {
	return float64(n) * p.X * p.Y / 1e6
}

// SameShape reports a ShapeMismatch error unless every shape equals the first.
func SameShape(shapes ...Shape) error {
	for i := 1; i < len(shapes); i++ {
		if shapes[i] != shapes[0] {
			return fmt.Errorf("%w: %v != %v", ErrShapeMismatch, shapes[0], shapes[i])
		}
	}
	return nil
}
