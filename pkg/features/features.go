// Package features converts band and index rasters into the samples x
// features matrix expected by clustering and classification code, and maps
// per-sample class labels back onto the raster grid.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"waterscan/pkg/raster"
)

// Named pairs a raster with its feature name.
type Named struct {
	Name   string
	Raster *raster.Raster
}

// Table is a feature matrix plus the pixel each row came from.
type Table struct {
	// X has one row per valid pixel and one column per feature
	X *mat.Dense

	// Index holds the row-major pixel index of each row of X
	Index []int

	// Names holds the column names of X
	Names []string

	Rows int
	Cols int
}

// Matrix stacks the given rasters into a feature table. Pixels where any
// feature is NaN are skipped.
func Matrix(features ...Named) (*Table, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features provided", raster.ErrInvalidParameter)
	}
	first := features[0].Raster
	for _, f := range features {
		if err := f.Raster.Validate(f.Name); err != nil {
			return nil, err
		}
		if f.Raster.Shape() != first.Shape() {
			return nil, fmt.Errorf("%w: feature %s %v != %s %v", raster.ErrShapeMismatch,
				features[0].Name, first.Shape(), f.Name, f.Raster.Shape())
		}
	}

	t := &Table{Rows: first.Rows, Cols: first.Cols}
	for _, f := range features {
		t.Names = append(t.Names, f.Name)
	}

pixels:
	for i := range first.Data {
		for _, f := range features {
			if math.IsNaN(f.Raster.Data[i]) {
				continue pixels
			}
		}
		t.Index = append(t.Index, i)
	}
	if len(t.Index) == 0 {
		return nil, fmt.Errorf("%w: every pixel has a missing feature", raster.ErrInvalidParameter)
	}

	t.X = mat.NewDense(len(t.Index), len(features), nil)
	for row, px := range t.Index {
		for col, f := range features {
			t.X.Set(row, col, f.Raster.Data[px])
		}
	}
	return t, nil
}

// Standardize scales every column of X to zero mean and unit variance in
// place. Constant columns are centred only.
func (t *Table) Standardize() {
	n, m := t.X.Dims()
	for j := 0; j < m; j++ {
		mean, std := stat.PopMeanStdDev(mat.Col(nil, j, t.X), nil)
		for i := 0; i < n; i++ {
			v := t.X.At(i, j) - mean
			if std > 0 {
				v /= std
			}
			t.X.Set(i, j, v)
		}
	}
}

// Scatter writes per-row labels back to a rows x cols grid. Pixels without
// a row stay 0.
func Scatter(labels []int, index []int, rows, cols int) (*raster.Labels, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid shape (%d, %d) must be positive", raster.ErrInvalidParameter, rows, cols)
	}
	if len(labels) != len(index) {
		return nil, fmt.Errorf("%w: %d labels for %d pixels", raster.ErrShapeMismatch, len(labels), len(index))
	}
	out := raster.NewLabels(rows, cols)
	for i, px := range index {
		if px < 0 || px >= len(out.Data) {
			return nil, fmt.Errorf("%w: pixel index %d outside grid %v", raster.ErrInvalidParameter, px, out.Shape())
		}
		out.Data[px] = labels[i]
	}
	return out, nil
}

// Scatter maps per-row labels back onto the table's grid.
func (t *Table) Scatter(labels []int) (*raster.Labels, error) {
	return Scatter(labels, t.Index, t.Rows, t.Cols)
}

// AsMask returns the mask of pixels carrying class.
func AsMask(labels *raster.Labels, class int) *raster.Mask {
	m := raster.NewMask(labels.Rows, labels.Cols)
	for i, v := range labels.Data {
		m.Data[i] = v == class
	}
	return m
}
