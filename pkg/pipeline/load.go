package pipeline

import (
	"fmt"

	"waterscan/internal/logger"
	"waterscan/pkg/config"
	"waterscan/pkg/raster"
	"waterscan/pkg/rasterio"
)

// BandPaths names the files holding each band of a scene. Empty paths are
// skipped.
type BandPaths struct {
	Green string
	NIR   string
	SWIR  string
}

// LoadScene reads the bands of a scene with r, applying the configured
// reflectance scale. Pixel size and geotransform come from the first band's
// metadata when present.
func LoadScene(r rasterio.Reader, name string, paths BandPaths, cfg *config.Config) (Scene, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := Scene{Name: name}

	entries := []struct {
		band string
		path string
		dst  **raster.Raster
	}{
		{"green", paths.Green, &s.Bands.Green},
		{"nir", paths.NIR, &s.Bands.NIR},
		{"swir", paths.SWIR, &s.Bands.SWIR},
	}
	for _, e := range entries {
		if e.path == "" {
			continue
		}
		band, meta, err := r.Read(e.path)
		if err != nil {
			return Scene{}, fmt.Errorf("failed to read %s band of %s: %w", e.band, name, err)
		}
		if cfg.Raster.ReflectanceScale != 1 {
			band = rasterio.Scale(band, cfg.Raster.ReflectanceScale)
		}
		*e.dst = band

		if s.GeoTransform == nil {
			if gt, ok := meta.GeoTransform(); ok {
				s.GeoTransform = &gt
			}
		}
		if s.PixelSize == (raster.PixelSize{}) {
			if p, ok := rasterio.ReadPixelSize(meta); ok {
				s.PixelSize = p
			}
		}
		logger.WithFields(map[string]interface{}{
			"scene": name,
			"band":  e.band,
			"path":  e.path,
			"shape": band.Shape().String(),
		}).Debug("Band loaded")
	}
	return s, nil
}
