//go:build gdal

package rasterio

import (
	"fmt"
	"strconv"

	"github.com/airbusgeo/godal"

	"waterscan/internal/logger"
	"waterscan/pkg/raster"
)

func init() {
	godal.RegisterAll()
}

// GDALReader reads any GDAL-supported raster, typically GeoTIFF.
type GDALReader struct {
	// Band is the 0-based band index to read
	Band int

	// NoData, when set, replaces the band's own nodata value
	NoData *float64
}

// Read implements Reader.
func (r GDALReader) Read(path string) (*raster.Raster, Metadata, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			logger.WithField("path", path).Warn(msg)
			return nil
		}
		return fmt.Errorf("GDAL error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, nil, fmt.Errorf("error opening raster %s: %w", path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if r.Band < 0 || r.Band >= len(bands) {
		return nil, nil, fmt.Errorf("%w: band %d not in %s (%d bands)", raster.ErrInvalidParameter, r.Band, path, len(bands))
	}
	band := bands[r.Band]
	st := band.Structure()

	out := raster.New(st.SizeY, st.SizeX)
	if err := band.Read(0, 0, out.Data, st.SizeX, st.SizeY); err != nil {
		return nil, nil, fmt.Errorf("error reading band %d of %s: %w", r.Band, path, err)
	}

	meta := Metadata{KeyDriver: "gdal"}
	nd, ok := band.NoData()
	if r.NoData != nil {
		nd, ok = *r.NoData, true
	}
	if ok {
		out = out.ReplaceNoData(nd)
		meta[KeyNoData] = strconv.FormatFloat(nd, 'g', -1, 64)
	}
	if gt, err := ds.GeoTransform(); err == nil {
		meta[KeyGeoTransform] = GeoTransform(gt).String()
	}
	if proj := ds.Projection(); proj != "" {
		meta[KeyProjection] = proj
	}

	logger.WithFields(map[string]interface{}{
		"path": path,
		"band": r.Band,
		"rows": out.Rows,
		"cols": out.Cols,
	}).Debug("Read GDAL raster")
	return out, meta, nil
}
