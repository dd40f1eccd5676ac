package visualization

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"waterscan/pkg/raster"
)

// Colormap maps t in [0, 1] to a colour by linear interpolation between
// evenly spaced stops.
type Colormap []color.NRGBA

var (
	Grey = Colormap{rgb(0, 0, 0), rgb(255, 255, 255)}

	// Blues suits water indices
	Blues = Colormap{rgb(247, 251, 255), rgb(107, 174, 214), rgb(8, 48, 107)}

	// RdYlGn suits vegetation indices and signed differences
	RdYlGn = Colormap{rgb(165, 0, 38), rgb(254, 224, 139), rgb(0, 104, 55)}
)

func rgb(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 255} }

// At returns the colour for t; t is clamped to [0, 1].
func (m Colormap) At(t float64) color.NRGBA {
	if len(m) == 0 {
		return color.NRGBA{}
	}
	if len(m) == 1 || math.IsNaN(t) {
		return m[0]
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(m)-1)
	i := int(pos)
	if i >= len(m)-1 {
		return m[len(m)-1]
	}
	f := pos - float64(i)
	a, b := m[i], m[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// LabelColor returns a stable, well separated colour for a positive label.
func LabelColor(label int) color.NRGBA {
	// golden-angle hue steps
	h := math.Mod(float64(label)*137.50776405, 360)
	return hsv(h, 0.65, 0.9)
}

func hsv(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

// ParseColormap maps a colormap name to a Colormap.
func ParseColormap(name string) (Colormap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "blues":
		return Blues, nil
	case "grey", "gray":
		return Grey, nil
	case "rdylgn":
		return RdYlGn, nil
	}
	return nil, fmt.Errorf("%w: unknown colormap %q", raster.ErrInvalidParameter, name)
}
