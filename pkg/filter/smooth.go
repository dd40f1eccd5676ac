package filter

import (
	"fmt"
	"strings"

	"waterscan/pkg/raster"
)

// Method selects a smoothing filter.
type Method int

const (
	None Method = iota
	MedianFilter
	GaussianFilter
)

func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case MedianFilter:
		return "median"
	case GaussianFilter:
		return "gaussian"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a case-insensitive filter name to a Method. An empty
// name selects None.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "median":
		return MedianFilter, nil
	case "gaussian":
		return GaussianFilter, nil
	}
	return 0, fmt.Errorf("%w: unknown smoothing filter %q", raster.ErrInvalidParameter, name)
}

// Smooth applies m with the given size: the window radius for
// MedianFilter, sigma for GaussianFilter. None returns r unchanged.
func Smooth(r *raster.Raster, m Method, size float64) (*raster.Raster, error) {
	switch m {
	case None:
		return r, nil
	case MedianFilter:
		return Median(r, int(size))
	case GaussianFilter:
		return Gaussian(r, size)
	}
	return nil, fmt.Errorf("%w: unknown smoothing filter %d", raster.ErrInvalidParameter, int(m))
}
