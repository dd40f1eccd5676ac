package indices

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"waterscan/internal/tiling"
	"waterscan/pkg/raster"
)

// mustRaster builds a raster from rows or fails the test
func mustRaster(t *testing.T, rows [][]float64) *raster.Raster {
	t.Helper()
	r, err := raster.FromRows(rows)
	if err != nil {
		t.Fatalf("Failed to build raster: %v", err)
	}
	return r
}

// randomBand fills a raster with non-negative reflectances
func randomBand(rows, cols int, seed int64) *raster.Raster {
	rng := rand.New(rand.NewSource(seed))
	r := raster.New(rows, cols)
	for i := range r.Data {
		r.Data[i] = rng.Float64() * 10000
	}
	return r
}

// TestNDWI verifies the formula and the zero-sum NaN rule
func TestNDWI(t *testing.T) {
	green := mustRaster(t, [][]float64{{3, 0}, {1, 5}})
	nir := mustRaster(t, [][]float64{{1, 0}, {3, 5}})

	out, err := NDWI(green, nir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if out.At(0, 0) != 0.5 {
		t.Errorf("Expected 0.5, got %f", out.At(0, 0))
	}
	if !math.IsNaN(out.At(0, 1)) {
		t.Errorf("Expected NaN where both bands are zero, got %f", out.At(0, 1))
	}
	if out.At(1, 0) != -0.5 {
		t.Errorf("Expected -0.5, got %f", out.At(1, 0))
	}
	if out.At(1, 1) != 0 {
		t.Errorf("Expected 0, got %f", out.At(1, 1))
	}

	// Inputs untouched
	if green.At(0, 0) != 3 || nir.At(0, 0) != 1 {
		t.Errorf("Input bands were mutated")
	}
}

// TestNormalizedDifferenceRange checks that non-negative bands give values in [-1, 1]
func TestNormalizedDifferenceRange(t *testing.T) {
	a := randomBand(40, 30, 1)
	b := randomBand(40, 30, 2)
	a.Data[0], b.Data[0] = 0, 0

	for name, fn := range map[string]func(x, y *raster.Raster) (*raster.Raster, error){
		"ndwi":  NDWI,
		"ndvi":  NDVI,
		"mndwi": MNDWI,
		"ndbi":  NDBI,
	} {
		out, err := fn(a, b)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		for i, v := range out.Data {
			if math.IsNaN(v) {
				if i != 0 {
					t.Errorf("%s: unexpected NaN at %d", name, i)
				}
				continue
			}
			if v < -1 || v > 1 {
				t.Errorf("%s: value %f at %d outside [-1, 1]", name, v, i)
			}
		}
	}
}

// TestShapeMismatch verifies every index rejects differing shapes
func TestShapeMismatch(t *testing.T) {
	a := raster.New(2, 2)
	b := raster.New(2, 3)
	c := raster.New(2, 2)

	checks := map[string]error{}
	_, checks["ndwi"] = NDWI(a, b)
	_, checks["ndvi"] = NDVI(b, a)
	_, checks["mndwi"] = MNDWI(a, b)
	_, checks["ndbi"] = NDBI(a, b)
	_, checks["savi"] = SAVI(a, b, 0.5)
	_, checks["evi"] = EVI(a, c, b, DefaultEVIParams())

	for name, err := range checks {
		if !errors.Is(err, raster.ErrShapeMismatch) {
			t.Errorf("%s: expected ErrShapeMismatch, got %v", name, err)
		}
	}
}

// TestEmptyBand verifies empty inputs are rejected
func TestEmptyBand(t *testing.T) {
	_, err := NDWI(&raster.Raster{}, &raster.Raster{})
	if !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

// TestSAVI verifies the soil adjusted formula and L validation
func TestSAVI(t *testing.T) {
	nir := mustRaster(t, [][]float64{{0.5, 0}})
	red := mustRaster(t, [][]float64{{0.1, 0}})

	out, err := SAVI(nir, red, DefaultSAVIL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := (0.4 / 1.1) * 1.5
	if math.Abs(out.At(0, 0)-expected) > 1e-12 {
		t.Errorf("Expected %f, got %f", expected, out.At(0, 0))
	}
	if out.At(0, 1) != 0 {
		t.Errorf("Expected 0 for zero bands with L=0.5, got %f", out.At(0, 1))
	}

	// With L = 0 the zero-sum pixel has a zero denominator
	out, err = SAVI(nir, red, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(out.At(0, 1)) {
		t.Errorf("Expected NaN for zero denominator, got %f", out.At(0, 1))
	}

	for _, L := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := SAVI(nir, red, L); !errors.Is(err, raster.ErrInvalidParameter) {
			t.Errorf("L=%f: expected ErrInvalidParameter, got %v", L, err)
		}
	}
}

// TestEVI verifies the enhanced vegetation index with default coefficients
func TestEVI(t *testing.T) {
	nir := mustRaster(t, [][]float64{{0.6, 0.5}})
	red := mustRaster(t, [][]float64{{0.1, 1}})
	blue := mustRaster(t, [][]float64{{0.05, 1}})

	out, err := EVI(nir, red, blue, DefaultEVIParams())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := 2.5 * 0.5 / (0.6 + 0.6 - 0.375 + 1)
	if math.Abs(out.At(0, 0)-expected) > 1e-12 {
		t.Errorf("Expected %f, got %f", expected, out.At(0, 0))
	}
	if !math.IsNaN(out.At(0, 1)) {
		t.Errorf("Expected NaN for zero denominator, got %f", out.At(0, 1))
	}

	bad := DefaultEVIParams()
	bad.G = 0
	if _, err := EVI(nir, red, blue, bad); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for G=0, got %v", err)
	}
	bad = DefaultEVIParams()
	bad.L = -1
	if _, err := EVI(nir, red, blue, bad); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for L<0, got %v", err)
	}
}

// TestNaNPropagation checks that missing input stays missing
func TestNaNPropagation(t *testing.T) {
	a := mustRaster(t, [][]float64{{math.NaN(), 1}})
	b := mustRaster(t, [][]float64{{1, 1}})
	out, err := NDVI(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(out.At(0, 0)) {
		t.Errorf("Expected NaN, got %f", out.At(0, 0))
	}
}

// TestParallelMatchesSerial verifies that banded processing is bit-identical
func TestParallelMatchesSerial(t *testing.T) {
	defer tiling.SetWorkers(0)

	rows, cols := 700, 500 // above tiling.ParallelThreshold
	green := randomBand(rows, cols, 3)
	nir := randomBand(rows, cols, 4)

	tiling.SetWorkers(1)
	serial, err := NDWI(green, nir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tiling.SetWorkers(8)
	parallel, err := NDWI(green, nir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := range serial.Data {
		if serial.Data[i] != parallel.Data[i] {
			t.Fatalf("Pixel %d differs: serial %v, parallel %v", i, serial.Data[i], parallel.Data[i])
		}
	}
}

// TestCompute verifies enum dispatch and missing-band detection
func TestCompute(t *testing.T) {
	green := mustRaster(t, [][]float64{{3}})
	nir := mustRaster(t, [][]float64{{1}})

	out, err := Compute(IndexNDWI, Bands{Green: green, NIR: nir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.At(0, 0) != 0.5 {
		t.Errorf("Expected 0.5, got %f", out.At(0, 0))
	}

	_, err = Compute(IndexEVI, Bands{Green: green, NIR: nir})
	if !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for missing bands, got %v", err)
	}

	_, err = Compute(Index(42), Bands{})
	if !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for unknown index, got %v", err)
	}

	L := 0.0
	out, err = Compute(IndexSAVI, Bands{NIR: nir, Red: green, SAVIL: &L})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.At(0, 0) != -0.5 {
		t.Errorf("Expected -0.5 with L=0, got %f", out.At(0, 0))
	}
}

// TestParseIndex verifies name parsing round-trips through String
func TestParseIndex(t *testing.T) {
	for _, i := range []Index{IndexNDWI, IndexMNDWI, IndexNDVI, IndexNDBI, IndexSAVI, IndexEVI} {
		got, err := ParseIndex(i.String())
		if err != nil || got != i {
			t.Errorf("ParseIndex(%q) = %v, %v", i.String(), got, err)
		}
	}
	if _, err := ParseIndex("ndsi"); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

// TestThreshold verifies mask derivation and NaN handling
func TestThreshold(t *testing.T) {
	r := mustRaster(t, [][]float64{{-0.5, 0, 0.3, math.NaN()}})

	water, err := WaterMask(r, DefaultWaterThreshold)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []bool{false, false, true, false}
	for i, v := range expected {
		if water.Data[i] != v {
			t.Errorf("Water pixel %d: expected %v, got %v", i, v, water.Data[i])
		}
	}

	veg, _ := VegetationMask(r, DefaultVegetationThreshold)
	if veg.Count() != 1 {
		t.Errorf("Expected 1 vegetation pixel, got %d", veg.Count())
	}

	urban, _ := UrbanMask(r, DefaultUrbanThreshold)
	if urban.Count() != 1 {
		t.Errorf("Expected 1 urban pixel, got %d", urban.Count())
	}

	below, _ := Threshold(r, 0, Below)
	if below.Count() != 1 || !below.Data[0] {
		t.Errorf("Expected only the first pixel below 0, got %v", below.Data)
	}

	if _, err := Threshold(r, math.NaN(), Above); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for NaN threshold, got %v", err)
	}
}
