// Package indices computes normalized-difference style spectral indices from
// band rasters and thresholds them into masks.
//
// All functions allocate a new output raster; inputs are never modified.
// NaN in any input band yields NaN in the output.
package indices

import (
	"fmt"
	"math"

	"waterscan/internal/tiling"
	"waterscan/pkg/raster"
)

// DefaultSAVIL is the soil-brightness correction used by SAVI when the
// caller has no better estimate (intermediate vegetation cover).
const DefaultSAVIL = 0.5

// EVIParams holds the Enhanced Vegetation Index coefficients.
type EVIParams struct {
	G  float64 // gain factor
	C1 float64 // red aerosol resistance coefficient
	C2 float64 // blue aerosol resistance coefficient
	L  float64 // canopy background adjustment
}

// DefaultEVIParams returns the MODIS coefficients.
func DefaultEVIParams() EVIParams {
	return EVIParams{G: 2.5, C1: 6.0, C2: 7.5, L: 1.0}
}

// Validate checks G > 0 and L >= 0.
func (p EVIParams) Validate() error {
	if !(p.G > 0) {
		return fmt.Errorf("%w: EVI gain G must be positive, got %g", raster.ErrInvalidParameter, p.G)
	}
	if !(p.L >= 0) {
		return fmt.Errorf("%w: EVI adjustment L must be non-negative, got %g", raster.ErrInvalidParameter, p.L)
	}
	return nil
}

// validateBands checks every band is non-empty and all share one shape.
func validateBands(names []string, bands ...*raster.Raster) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no bands provided", raster.ErrInvalidParameter)
	}
	for i, b := range bands {
		if err := b.Validate(names[i]); err != nil {
			return err
		}
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Shape() != bands[0].Shape() {
			return fmt.Errorf("%w: %s %v != %s %v", raster.ErrShapeMismatch,
				names[0], bands[0].Shape(), names[i], bands[i].Shape())
		}
	}
	return nil
}

// NormalizedDifference computes (a - b) / (a + b) per pixel.
// Pixels where a + b == 0 are NaN.
func NormalizedDifference(a, b *raster.Raster) (*raster.Raster, error) {
	if err := validateBands([]string{"band a", "band b"}, a, b); err != nil {
		return nil, err
	}
	return normalizedDifference(a, b), nil
}

func normalizedDifference(a, b *raster.Raster) *raster.Raster {
	out := raster.New(a.Rows, a.Cols)
	tiling.Pixels(a.Rows, a.Cols, func(i int) {
		out.Data[i] = ratio(a.Data[i]-b.Data[i], a.Data[i]+b.Data[i])
	})
	return out
}

// ratio divides num by den, returning NaN for a zero denominator instead of
// an infinity.
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// NDWI is the Normalized Difference Water Index, (green - nir) / (green + nir).
func NDWI(green, nir *raster.Raster) (*raster.Raster, error) {
	if err := validateBands([]string{"green", "nir"}, green, nir); err != nil {
		return nil, err
	}
	return normalizedDifference(green, nir), nil
}

// NDVI is the Normalized Difference Vegetation Index, (nir - red) / (nir + red).
func NDVI(nir, red *raster.Raster) (*raster.Raster, error) {
	if err := validateBands([]string{"nir", "red"}, nir, red); err != nil {
		return nil, err
	}
	return normalizedDifference(nir, red), nil
}

// MNDWI is the Modified NDWI, (green - swir) / (green + swir).
func MNDWI(green, swir *raster.Raster) (*raster.Raster, error) {
	if err := validateBands([]string{"green", "swir"}, green, swir); err != nil {
		return nil, err
	}
	return normalizedDifference(green, swir), nil
}

// NDBI is the Normalized Difference Built-up Index, (swir - nir) / (swir + nir).
func NDBI(swir, nir *raster.Raster) (*raster.Raster, error) {
	if err := validateBands([]string{"swir", "nir"}, swir, nir); err != nil {
		return nil, err
	}
	return normalizedDifference(swir, nir), nil
}

// SAVI is the Soil Adjusted Vegetation Index,
// ((nir - red) / (nir + red + L)) * (1 + L). L must be in [0, 1].
func SAVI(nir, red *raster.Raster, L float64) (*raster.Raster, error) {
	if err := validateBands([]string{"nir", "red"}, nir, red); err != nil {
		return nil, err
	}
	if !(L >= 0 && L <= 1) {
		return nil, fmt.Errorf("%w: SAVI L must be between 0 and 1, got %g", raster.ErrInvalidParameter, L)
	}
	out := raster.New(nir.Rows, nir.Cols)
	tiling.Pixels(nir.Rows, nir.Cols, func(i int) {
		out.Data[i] = ratio(nir.Data[i]-red.Data[i], nir.Data[i]+red.Data[i]+L) * (1 + L)
	})
	return out, nil
}

// EVI is the Enhanced Vegetation Index,
// G * (nir - red) / (nir + C1*red - C2*blue + L). The result is unbounded.
func EVI(nir, red, blue *raster.Raster, p EVIParams) (*raster.Raster, error) {
	if err := validateBands([]string{"nir", "red", "blue"}, nir, red, blue); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := raster.New(nir.Rows, nir.Cols)
	tiling.Pixels(nir.Rows, nir.Cols, func(i int) {
		den := nir.Data[i] + p.C1*red.Data[i] - p.C2*blue.Data[i] + p.L
		out.Data[i] = p.G * ratio(nir.Data[i]-red.Data[i], den)
	})
	return out, nil
}
