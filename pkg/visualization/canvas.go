// Package visualization renders rasters, masks, label grids and change maps
// to images. Every drawing call targets an explicit Canvas.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"waterscan/pkg/raster"
)

// Canvas is a drawing surface covering a rows x cols grid, with each grid
// cell drawn as a Scale x Scale block of image pixels.
type Canvas struct {
	Rows  int
	Cols  int
	Scale int

	dc *gg.Context
}

// NewCanvas creates a transparent canvas with one image pixel per cell.
func NewCanvas(rows, cols int) *Canvas {
	return NewScaledCanvas(rows, cols, 1)
}

// NewScaledCanvas creates a transparent canvas with scale image pixels per
// cell edge. Scales below 1 are treated as 1.
func NewScaledCanvas(rows, cols, scale int) *Canvas {
	if scale < 1 {
		scale = 1
	}
	return &Canvas{
		Rows:  rows,
		Cols:  cols,
		Scale: scale,
		dc:    gg.NewContext(cols*scale, rows*scale),
	}
}

// Image returns the rendered image.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

func (c *Canvas) check(s raster.Shape) error {
	if s.Rows != c.Rows || s.Cols != c.Cols {
		return fmt.Errorf("%w: canvas (%d, %d) != layer %v", raster.ErrShapeMismatch, c.Rows, c.Cols, s)
	}
	return nil
}

// fill paints one grid cell.
func (c *Canvas) fill(row, col int, clr color.Color) {
	c.dc.SetColor(clr)
	for dy := 0; dy < c.Scale; dy++ {
		for dx := 0; dx < c.Scale; dx++ {
			c.dc.SetPixel(col*c.Scale+dx, row*c.Scale+dy)
		}
	}
}

// DrawRaster paints r through cmap, mapping vmin..vmax onto the colormap.
// NaN cells are left untouched. If vmin >= vmax the finite range of r is used.
func DrawRaster(c *Canvas, r *raster.Raster, cmap Colormap, vmin, vmax float64) error {
	if err := r.Validate("raster"); err != nil {
		return err
	}
	if err := c.check(r.Shape()); err != nil {
		return err
	}
	if !(vmin < vmax) {
		vmin, vmax = finiteRange(r)
	}
	span := vmax - vmin
	for i, v := range r.Data {
		if math.IsNaN(v) {
			continue
		}
		t := 0.5
		if span > 0 {
			t = (v - vmin) / span
		}
		c.fill(i/r.Cols, i%r.Cols, cmap.At(t))
	}
	return nil
}

func finiteRange(r *raster.Raster) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range r.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}

// DrawMask paints the true cells of m in clr.
func DrawMask(c *Canvas, m *raster.Mask, clr color.Color) error {
	if err := m.Validate("mask"); err != nil {
		return err
	}
	if err := c.check(m.Shape()); err != nil {
		return err
	}
	for i, v := range m.Data {
		if v {
			c.fill(i/m.Cols, i%m.Cols, clr)
		}
	}
	return nil
}

// DrawLabels paints every labelled cell with its label's palette colour.
// Background cells are left untouched.
func DrawLabels(c *Canvas, labels *raster.Labels) error {
	if err := c.check(labels.Shape()); err != nil {
		return err
	}
	for i, v := range labels.Data {
		if v > 0 {
			c.fill(i/labels.Cols, i%labels.Cols, LabelColor(v))
		}
	}
	return nil
}

// Change map colours.
var (
	GainedColor = color.NRGBA{R: 0, G: 114, B: 178, A: 255}
	LostColor   = color.NRGBA{R: 213, G: 94, B: 0, A: 255}
	StableColor = color.NRGBA{R: 160, G: 200, B: 230, A: 255}
)

// DrawChange paints water gained, lost and unchanged between two masks.
func DrawChange(c *Canvas, before, after *raster.Mask) error {
	if err := before.Validate("first mask"); err != nil {
		return err
	}
	if err := after.Validate("second mask"); err != nil {
		return err
	}
	if err := raster.SameShape(before.Shape(), after.Shape()); err != nil {
		return err
	}
	if err := c.check(before.Shape()); err != nil {
		return err
	}
	for i, was := range before.Data {
		is := after.Data[i]
		switch {
		case is && was:
			c.fill(i/before.Cols, i%before.Cols, StableColor)
		case is:
			c.fill(i/before.Cols, i%before.Cols, GainedColor)
		case was:
			c.fill(i/before.Cols, i%before.Cols, LostColor)
		}
	}
	return nil
}

// DrawTitle writes text at the top-left corner of the canvas.
func DrawTitle(c *Canvas, text string) {
	c.dc.SetRGB(0, 0, 0)
	c.dc.DrawStringAnchored(text, 4, 4, 0, 1)
}

// Save writes the canvas to path. ".jpg" and ".jpeg" produce JPEG, anything
// else PNG. Parent directories are created.
func Save(c *Canvas, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", path, err)
		}
		defer f.Close()
		if err := jpeg.Encode(f, c.dc.Image(), &jpeg.Options{Quality: 90}); err != nil {
			return fmt.Errorf("error encoding %s: %w", path, err)
		}
		return nil
	default:
		if err := c.dc.SavePNG(path); err != nil {
			return fmt.Errorf("error saving %s: %w", path, err)
		}
		return nil
	}
}
