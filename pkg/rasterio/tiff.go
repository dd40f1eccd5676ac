package rasterio

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strconv"

	"golang.org/x/image/tiff"

	"waterscan/internal/logger"
	"waterscan/pkg/raster"
)

// TIFFReader decodes plain (non-GDAL) TIFF files. Grey images are read
// directly; for colour images only the first channel is used.
type TIFFReader struct {
	// NoData, when set, marks samples equal to it as NaN
	NoData *float64
}

// Read implements Reader.
func (r TIFFReader) Read(path string) (*raster.Raster, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening raster %s: %w", path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("error decoding TIFF %s: %w", path, err)
	}

	out := FromImage(img)
	meta := Metadata{KeyDriver: "tiff"}
	if r.NoData != nil {
		out = out.ReplaceNoData(*r.NoData)
		meta[KeyNoData] = strconv.FormatFloat(*r.NoData, 'g', -1, 64)
	}

	logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": out.Rows,
		"cols": out.Cols,
	}).Debug("Read TIFF raster")
	return out, meta, nil
}

// FromImage converts the first channel of img to a raster. 8-bit and 16-bit
// grey images keep their native sample values.
func FromImage(img image.Image) *raster.Raster {
	b := img.Bounds()
	out := raster.New(b.Dy(), b.Dx())
	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < out.Rows; y++ {
			for x := 0; x < out.Cols; x++ {
				out.Set(y, x, float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < out.Rows; y++ {
			for x := 0; x < out.Cols; x++ {
				out.Set(y, x, float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < out.Rows; y++ {
			for x := 0; x < out.Cols; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				out.Set(y, x, float64(c.R))
			}
		}
	}
	return out
}

// Scale returns a copy of r with every sample multiplied by factor. Sentinel
// L2A products store reflectance scaled by 10000.
func Scale(r *raster.Raster, factor float64) *raster.Raster {
	out := r.Clone()
	for i, v := range out.Data {
		if !math.IsNaN(v) {
			out.Data[i] = v * factor
		}
	}
	return out
}
