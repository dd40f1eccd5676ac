package indices

import (
	"fmt"
	"math"

	"waterscan/pkg/raster"
)

// Default thresholds for the named masks.
const (
	DefaultWaterThreshold      = 0.0
	DefaultVegetationThreshold = 0.2
	DefaultUrbanThreshold      = 0.0
)

// Direction selects which side of a threshold is true.
type Direction int

const (
	// Above marks pixels strictly greater than the threshold.
	Above Direction = iota
	// Below marks pixels strictly less than the threshold.
	Below
)

// Threshold converts an index raster into a mask. NaN pixels are false.
func Threshold(r *raster.Raster, t float64, dir Direction) (*raster.Mask, error) {
	if err := r.Validate("index"); err != nil {
		return nil, err
	}
	if math.IsNaN(t) {
		return nil, fmt.Errorf("%w: threshold cannot be NaN", raster.ErrInvalidParameter)
	}
	m := raster.NewMask(r.Rows, r.Cols)
	switch dir {
	case Above:
		for i, v := range r.Data {
			m.Data[i] = v > t
		}
	case Below:
		for i, v := range r.Data {
			m.Data[i] = v < t
		}
	default:
		return nil, fmt.Errorf("%w: unknown threshold direction %d", raster.ErrInvalidParameter, dir)
	}
	return m, nil
}

// WaterMask marks pixels whose NDWI (or MNDWI) exceeds t.
func WaterMask(ndwi *raster.Raster, t float64) (*raster.Mask, error) {
	return Threshold(ndwi, t, Above)
}

// VegetationMask marks pixels whose NDVI exceeds t.
func VegetationMask(ndvi *raster.Raster, t float64) (*raster.Mask, error) {
	return Threshold(ndvi, t, Above)
}

// UrbanMask marks pixels whose NDBI exceeds t.
func UrbanMask(ndbi *raster.Raster, t float64) (*raster.Mask, error) {
	return Threshold(ndbi, t, Above)
}
