package indices

import (
	"fmt"
	"strings"

	"waterscan/pkg/raster"
)

// Index names one of the supported spectral indices.
type Index int

const (
	IndexNDWI Index = iota
	IndexMNDWI
	IndexNDVI
	IndexNDBI
	IndexSAVI
	IndexEVI
)

func (i Index) String() string {
	switch i {
	case IndexNDWI:
		return "ndwi"
	case IndexMNDWI:
		return "mndwi"
	case IndexNDVI:
		return "ndvi"
	case IndexNDBI:
		return "ndbi"
	case IndexSAVI:
		return "savi"
	case IndexEVI:
		return "evi"
	default:
		return fmt.Sprintf("Index(%d)", int(i))
	}
}

// ParseIndex maps a case-insensitive index name to an Index.
func ParseIndex(name string) (Index, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ndwi":
		return IndexNDWI, nil
	case "mndwi":
		return IndexMNDWI, nil
	case "ndvi":
		return IndexNDVI, nil
	case "ndbi":
		return IndexNDBI, nil
	case "savi":
		return IndexSAVI, nil
	case "evi":
		return IndexEVI, nil
	}
	return 0, fmt.Errorf("%w: unknown index %q", raster.ErrInvalidParameter, name)
}

// Bands carries the spectral bands of one acquisition. Only the bands an
// index needs have to be set.
type Bands struct {
	Blue  *raster.Raster
	Green *raster.Raster
	Red   *raster.Raster
	NIR   *raster.Raster
	SWIR  *raster.Raster

	// SAVIL overrides DefaultSAVIL when non-nil
	SAVIL *float64

	// EVI overrides DefaultEVIParams when non-nil
	EVI *EVIParams
}

// Required lists the bands an index reads.
func (i Index) Required() []string {
	switch i {
	case IndexNDWI:
		return []string{"green", "nir"}
	case IndexMNDWI:
		return []string{"green", "swir"}
	case IndexNDVI, IndexSAVI:
		return []string{"nir", "red"}
	case IndexNDBI:
		return []string{"swir", "nir"}
	case IndexEVI:
		return []string{"nir", "red", "blue"}
	default:
		return nil
	}
}

func (b Bands) band(name string) *raster.Raster {
	switch name {
	case "blue":
		return b.Blue
	case "green":
		return b.Green
	case "red":
		return b.Red
	case "nir":
		return b.NIR
	case "swir":
		return b.SWIR
	}
	return nil
}

// Compute evaluates index i over the given bands.
func Compute(i Index, b Bands) (*raster.Raster, error) {
	for _, name := range i.Required() {
		if b.band(name) == nil {
			return nil, fmt.Errorf("%w: %s requires the %s band", raster.ErrInvalidParameter, i, name)
		}
	}
	switch i {
	case IndexNDWI:
		return NDWI(b.Green, b.NIR)
	case IndexMNDWI:
		return MNDWI(b.Green, b.SWIR)
	case IndexNDVI:
		return NDVI(b.NIR, b.Red)
	case IndexNDBI:
		return NDBI(b.SWIR, b.NIR)
	case IndexSAVI:
		L := DefaultSAVIL
		if b.SAVIL != nil {
			L = *b.SAVIL
		}
		return SAVI(b.NIR, b.Red, L)
	case IndexEVI:
		p := DefaultEVIParams()
		if b.EVI != nil {
			p = *b.EVI
		}
		return EVI(b.NIR, b.Red, b.Blue, p)
	default:
		return nil, fmt.Errorf("%w: unknown index %v", raster.ErrInvalidParameter, i)
	}
}
