// Package change measures water coverage in a single scene and the water
// gained and lost between two co-registered scenes.
package change

import (
	"fmt"

	"waterscan/pkg/raster"
)

// WaterStats summarises the water in one mask.
type WaterStats struct {
	// TotalArea is the water surface in km²
	TotalArea float64 `csv:"total_area_km2"`

	// CoveragePercent is water pixels / all pixels * 100
	CoveragePercent float64 `csv:"coverage_percent"`

	WaterPixels int `csv:"water_pixels"`
	TotalPixels int `csv:"total_pixels"`
}

// WaterChange summarises the difference between two water masks.
type WaterChange struct {
	// GainedArea is land that became water, km²
	GainedArea float64 `csv:"gained_area_km2"`

	// LostArea is water that became land, km²
	LostArea float64 `csv:"lost_area_km2"`

	// NetChange is GainedArea - LostArea
	NetChange float64 `csv:"net_change_km2"`

	// ChangePercent is changed pixels / all pixels * 100
	ChangePercent float64 `csv:"change_percent"`

	GainedPixels int `csv:"gained_pixels"`
	LostPixels   int `csv:"lost_pixels"`
	TotalPixels  int `csv:"total_pixels"`
}

// Stats computes the water area and coverage of mask.
func Stats(mask *raster.Mask, pixelSize raster.PixelSize) (WaterStats, error) {
	if err := mask.Validate("mask"); err != nil {
		return WaterStats{}, err
	}
	if err := pixelSize.Validate(); err != nil {
		return WaterStats{}, err
	}

	water := mask.Count()
	total := mask.Len()
	return WaterStats{
		TotalArea:       pixelSize.AreaKm2For(water),
		CoveragePercent: float64(water) / float64(total) * 100,
		WaterPixels:     water,
		TotalPixels:     total,
	}, nil
}

// StatsFromRaster is Stats for a numeric 0/1 raster. Non-zero, non-NaN
// pixels count as water.
func StatsFromRaster(r *raster.Raster, pixelSize raster.PixelSize) (WaterStats, error) {
	mask, err := raster.MaskFromRaster(r)
	if err != nil {
		return WaterStats{}, err
	}
	return Stats(mask, pixelSize)
}

// Compare measures the water gained and lost going from before to after.
func Compare(before, after *raster.Mask, pixelSize raster.PixelSize) (WaterChange, error) {
	if err := before.Validate("first mask"); err != nil {
		return WaterChange{}, err
	}
	if err := after.Validate("second mask"); err != nil {
		return WaterChange{}, err
	}
	if before.Shape() != after.Shape() {
		return WaterChange{}, fmt.Errorf("%w: first mask %v != second mask %v",
			raster.ErrShapeMismatch, before.Shape(), after.Shape())
	}
	if err := pixelSize.Validate(); err != nil {
		return WaterChange{}, err
	}

	var gained, lost int
	for i, was := range before.Data {
		is := after.Data[i]
		switch {
		case is && !was:
			gained++
		case was && !is:
			lost++
		}
	}

	total := before.Len()
	c := WaterChange{
		GainedArea:    pixelSize.AreaKm2For(gained),
		LostArea:      pixelSize.AreaKm2For(lost),
		ChangePercent: float64(gained+lost) / float64(total) * 100,
		GainedPixels:  gained,
		LostPixels:    lost,
		TotalPixels:   total,
	}
	c.NetChange = c.GainedArea - c.LostArea
	return c, nil
}
