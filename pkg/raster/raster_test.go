package raster

import (
	"errors"
	"math"
	"testing"
)

// TestFromRows verifies row-major layout and ragged-row rejection
func TestFromRows(t *testing.T) {
	r, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Rows != 2 || r.Cols != 3 {
		t.Errorf("Expected shape (2, 3), got %v", r.Shape())
	}
	if r.At(1, 0) != 4 {
		t.Errorf("Expected At(1,0)=4, got %f", r.At(1, 0))
	}

	_, err = FromRows([][]float64{{1, 2}, {3}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for ragged rows, got %v", err)
	}

	_, err = FromRows(nil)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for empty rows, got %v", err)
	}
}

// TestMaskFromRaster verifies boolean coercion of numeric rasters
func TestMaskFromRaster(t *testing.T) {
	r, _ := FromRows([][]float64{{0, 1, -2}, {math.NaN(), 0.5, 0}})
	m, err := MaskFromRaster(r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []bool{false, true, true, false, true, false}
	for i, v := range expected {
		if m.Data[i] != v {
			t.Errorf("Pixel %d: expected %v, got %v", i, v, m.Data[i])
		}
	}
	if m.Count() != 3 {
		t.Errorf("Expected 3 true pixels, got %d", m.Count())
	}
}

// TestPixelSize checks validation and area conversion
func TestPixelSize(t *testing.T) {
	if got := Square(30).AreaKm2(); math.Abs(got-0.0009) > 1e-12 {
		t.Errorf("Expected 0.0009 km², got %g", got)
	}
	if got := (PixelSize{X: 10, Y: 20}).AreaKm2(); math.Abs(got-0.0002) > 1e-12 {
		t.Errorf("Expected 0.0002 km², got %g", got)
	}
	if got := Square(1).AreaKm2For(10); got != 1e-5 {
		t.Errorf("Expected 1e-05 km² for 10 one-metre pixels, got %v", got)
	}
	if got := Square(15).AreaKm2For(11); got != 0.002475 {
		t.Errorf("Expected 0.002475 km², got %v", got)
	}

	invalid := []PixelSize{{0, 1}, {1, -1}, {math.NaN(), 1}, {math.Inf(1), 1}}
	for _, p := range invalid {
		if err := p.Validate(); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Expected ErrInvalidParameter for %v, got %v", p, err)
		}
	}
	if err := Square(1).Validate(); err != nil {
		t.Errorf("Expected valid pixel size, got %v", err)
	}
}

// TestReplaceNoData ensures the sentinel is replaced without touching the input
func TestReplaceNoData(t *testing.T) {
	r, _ := FromRows([][]float64{{-9999, 1}, {2, -9999}})
	out := r.ReplaceNoData(-9999)
	if !math.IsNaN(out.Data[0]) || !math.IsNaN(out.Data[3]) {
		t.Errorf("Expected NaN at nodata positions, got %v", out.Data)
	}
	if r.Data[0] != -9999 {
		t.Errorf("Input raster was mutated")
	}
}

// TestSameShape checks the shape agreement helper
func TestSameShape(t *testing.T) {
	if err := SameShape(Shape{2, 2}, Shape{2, 2}); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if err := SameShape(Shape{2, 2}, Shape{2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}
