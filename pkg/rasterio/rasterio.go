// Package rasterio loads single-band rasters from disk into raster.Raster
// values, along with whatever georeferencing the file carries.
package rasterio

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"waterscan/pkg/raster"
)

// Metadata keys written by the readers.
const (
	KeyGeoTransform = "geotransform"
	KeyProjection   = "projection"
	KeyDriver       = "driver"
	KeyNoData       = "nodata"
)

// Metadata is an opaque bag of file properties.
type Metadata map[string]string

// Reader loads the first band of a raster file.
type Reader interface {
	Read(path string) (*raster.Raster, Metadata, error)
}

// GeoTransform maps pixel to world coordinates:
//
//	x = T[0] + col*T[1] + row*T[2]
//	y = T[3] + col*T[4] + row*T[5]
type GeoTransform [6]float64

// Apply returns the world coordinate of the pixel corner (col, row).
func (g GeoTransform) Apply(col, row float64) (x, y float64) {
	return g[0] + col*g[1] + row*g[2], g[3] + col*g[4] + row*g[5]
}

func (g GeoTransform) String() string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// ParseGeoTransform parses the comma separated form written by String.
func ParseGeoTransform(s string) (GeoTransform, error) {
	var g GeoTransform
	parts := strings.Split(s, ",")
	if len(parts) != len(g) {
		return g, fmt.Errorf("%w: geotransform needs 6 values, got %d", raster.ErrInvalidParameter, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return g, fmt.Errorf("%w: geotransform value %q: %v", raster.ErrInvalidParameter, p, err)
		}
		g[i] = v
	}
	return g, nil
}

// GeoTransform returns the parsed geotransform, if the metadata has one.
func (m Metadata) GeoTransform() (GeoTransform, bool) {
	s, ok := m[KeyGeoTransform]
	if !ok {
		return GeoTransform{}, false
	}
	g, err := ParseGeoTransform(s)
	if err != nil {
		return GeoTransform{}, false
	}
	return g, true
}

// ReadPixelSize derives the ground pixel size from the geotransform entry.
// ok is false when there is no usable geotransform.
func ReadPixelSize(meta Metadata) (raster.PixelSize, bool) {
	g, ok := meta.GeoTransform()
	if !ok {
		return raster.PixelSize{}, false
	}
	p := raster.PixelSize{
		X: math.Hypot(g[1], g[4]),
		Y: math.Hypot(g[2], g[5]),
	}
	if p.Validate() != nil {
		return raster.PixelSize{}, false
	}
	return p, true
}
