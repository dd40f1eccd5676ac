// Package filter suppresses pixel noise in index rasters before they are
// thresholded. Missing (NaN) samples never contribute to their neighbours
// and stay NaN in the output.
package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"waterscan/pkg/raster"
)

// Gaussian smooths r with a Gaussian kernel of standard deviation sigma
// pixels. The convolution runs in the frequency domain on a reflect-padded
// copy of the raster. NaN samples are excluded by normalised convolution.
func Gaussian(r *raster.Raster, sigma float64) (*raster.Raster, error) {
	if err := r.Validate("raster"); err != nil {
		return nil, err
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: gaussian sigma must be positive, got %g", raster.ErrInvalidParameter, sigma)
	}

	pad := int(math.Ceil(3 * sigma))
	h, w := r.Rows+2*pad, r.Cols+2*pad

	values := make([]float64, h*w)
	weights := make([]float64, h*w)
	for y := 0; y < h; y++ {
		sy := reflect(y-pad, r.Rows)
		for x := 0; x < w; x++ {
			v := r.At(sy, reflect(x-pad, r.Cols))
			if !math.IsNaN(v) {
				values[y*w+x] = v
				weights[y*w+x] = 1
			}
		}
	}

	s := newSpectral(h, w)
	transfer := func(fy, fx float64) float64 {
		return math.Exp(-2 * math.Pi * math.Pi * sigma * sigma * (fx*fx + fy*fy))
	}
	values = s.convolve(values, transfer)
	weights = s.convolve(weights, transfer)

	out := raster.New(r.Rows, r.Cols)
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			i := (y+pad)*w + x + pad
			if math.IsNaN(r.At(y, x)) || weights[i] < 1e-9 {
				out.Set(y, x, math.NaN())
				continue
			}
			out.Set(y, x, values[i]/weights[i])
		}
	}
	return out, nil
}

// reflect maps an out-of-range index back into [0, n) by mirroring at the
// edges (…2 1 0 | 0 1 2…).
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// spectral performs 2D real convolutions with a separable FFT: real
// transforms along rows, complex transforms along the retained columns.
type spectral struct {
	h, w   int
	rowFFT *fourier.FFT
	colFFT *fourier.CmplxFFT
}

func newSpectral(h, w int) *spectral {
	return &spectral{h: h, w: w, rowFFT: fourier.NewFFT(w), colFFT: fourier.NewCmplxFFT(h)}
}

// convolve multiplies the spectrum of data by transfer(fy, fx), with
// frequencies in cycles per pixel, and returns the inverse transform.
func (s *spectral) convolve(data []float64, transfer func(fy, fx float64) float64) []float64 {
	h, w := s.h, s.w
	nc := w/2 + 1

	// Row transforms
	spec := make([]complex128, h*nc)
	for y := 0; y < h; y++ {
		s.rowFFT.Coefficients(spec[y*nc:(y+1)*nc], data[y*w:(y+1)*w])
	}

	// Column transforms, filter, inverse column transforms
	col := make([]complex128, h)
	for x := 0; x < nc; x++ {
		for y := 0; y < h; y++ {
			col[y] = spec[y*nc+x]
		}
		s.colFFT.Coefficients(col, col)
		fx := float64(x) / float64(w)
		for y := 0; y < h; y++ {
			fy := float64(y) / float64(h)
			if y > h/2 {
				fy = float64(y-h) / float64(h)
			}
			col[y] *= complex(transfer(fy, fx), 0)
		}
		s.colFFT.Sequence(col, col)
		for y := 0; y < h; y++ {
			spec[y*nc+x] = col[y]
		}
	}

	// Inverse row transforms; gonum leaves the result scaled by h*w
	out := make([]float64, h*w)
	norm := float64(h * w)
	for y := 0; y < h; y++ {
		row := out[y*w : (y+1)*w]
		s.rowFFT.Sequence(row, spec[y*nc:(y+1)*nc])
		for x := range row {
			row[x] /= norm
		}
	}
	return out
}
