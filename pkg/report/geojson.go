package report

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"waterscan/pkg/rasterio"
	"waterscan/pkg/waterbody"
)

// BodiesGeoJSON builds a feature collection with one polygon per body,
// outlining its bounding box. Coordinates are world coordinates when gt is
// non-nil, pixel (col, row) coordinates otherwise.
func BodiesGeoJSON(bodies []waterbody.Body, gt *rasterio.GeoTransform) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, b := range bodies {
		poly := boundingPolygon(b, gt)
		f := geojson.NewFeature(poly)
		f.Properties["label"] = b.Label
		f.Properties["area_km2"] = b.Area
		f.Properties["pixels"] = b.Pixels
		f.Properties["bbox_area"] = math.Abs(planar.Area(poly))
		fc.Append(f)
	}
	return fc
}

// MarshalBodies encodes BodiesGeoJSON output.
func MarshalBodies(bodies []waterbody.Body, gt *rasterio.GeoTransform) ([]byte, error) {
	data, err := BodiesGeoJSON(bodies, gt).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("error encoding GeoJSON: %w", err)
	}
	return data, nil
}

func boundingPolygon(b waterbody.Body, gt *rasterio.GeoTransform) orb.Polygon {
	// pixel corners, closed ring
	corners := [][2]float64{
		{float64(b.MinCol), float64(b.MinRow)},
		{float64(b.MaxCol + 1), float64(b.MinRow)},
		{float64(b.MaxCol + 1), float64(b.MaxRow + 1)},
		{float64(b.MinCol), float64(b.MaxRow + 1)},
		{float64(b.MinCol), float64(b.MinRow)},
	}
	ring := make(orb.Ring, len(corners))
	for i, c := range corners {
		x, y := c[0], c[1]
		if gt != nil {
			x, y = gt.Apply(c[0], c[1])
		}
		ring[i] = orb.Point{x, y}
	}
	return orb.Polygon{ring}
}
