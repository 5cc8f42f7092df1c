package graphics

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// ColorMode selects how numeric color arguments are interpreted.
type ColorMode int

const (
	RGB ColorMode = iota
	HSB
)

// String returns the script-visible name of the mode.
func (m ColorMode) String() string {
	if m == HSB {
		return "HSB"
	}
	return "RGB"
}

// Color is a non-premultiplied color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA converts the color for the raster backend.
func (c Color) RGBA() gg.RGBA {
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// NRGBA returns the 8-bit form of the color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Hex returns the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// Opaque reports whether the color has full alpha.
func (c Color) Opaque() bool {
	return c.A >= 1
}

// WithAlpha returns a copy of c with alpha a.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// NewColor builds a color from script arguments.
//
// Accepted forms (numbers are divided by rng before use):
//
//	()                    black
//	(gray)                gray level
//	(gray, alpha)
//	(r, g, b) / (h, s, b) depending on mode
//	(r, g, b, alpha)
//	("#rrggbb[aa]")       hex string, mode and range are ignored
//	(Color)               a copy
func NewColor(mode ColorMode, rng float64, args ...any) (Color, error) {
	if rng <= 0 {
		rng = 1
	}
	switch len(args) {
	case 0:
		return Black, nil
	case 1:
		switch v := args[0].(type) {
		case Color:
			return v, nil
		case *Color:
			if v == nil {
				return Black, nil
			}
			return *v, nil
		case string:
			return ParseHex(v)
		}
	}

	nums := make([]float64, len(args))
	for i, a := range args {
		f, ok := toFloat(a)
		if !ok {
			return Color{}, fmt.Errorf("%w: argument %d is %T", ErrInvalidColor, i+1, a)
		}
		nums[i] = clamp01(f / rng)
	}

	switch len(nums) {
	case 1:
		return Color{nums[0], nums[0], nums[0], 1}, nil
	case 2:
		return Color{nums[0], nums[0], nums[0], nums[1]}, nil
	case 3, 4:
		alpha := 1.0
		if len(nums) == 4 {
			alpha = nums[3]
		}
		if mode == HSB {
			return HSBToRGB(nums[0], nums[1], nums[2]).WithAlpha(alpha), nil
		}
		return Color{nums[0], nums[1], nums[2], alpha}, nil
	}
	return Color{}, fmt.Errorf("%w: %d arguments", ErrInvalidColor, len(args))
}

// ParseHex parses #rgb, #rgba, #rrggbb or #rrggbbaa.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", ch) {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, ch := range hex {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		hex = b.String()
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c := gg.Hex(hex)
	return Color{c.R, c.G, c.B, c.A}, nil
}

// HSBToRGB converts hue, saturation and brightness in [0, 1] to an opaque color.
// The conversion goes through HSL, which the raster backend provides.
func HSBToRGB(h, s, v float64) Color {
	l := v * (1 - s/2)
	sl := 0.0
	if l > 0 && l < 1 {
		sl = (v - l) / math.Min(l, 1-l)
	}
	c := gg.HSL(h*360, sl, l)
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), 1}
}

// RGBToHSB is the inverse of HSBToRGB.
func RGBToHSB(c Color) (h, s, v float64) {
	hi := math.Max(c.R, math.Max(c.G, c.B))
	lo := math.Min(c.R, math.Min(c.G, c.B))
	v = hi
	d := hi - lo
	if hi > 0 {
		s = d / hi
	}
	if d == 0 {
		return 0, s, v
	}
	switch hi {
	case c.R:
		h = (c.G - c.B) / d
		if c.G < c.B {
			h += 6
		}
	case c.G:
		h = (c.B-c.R)/d + 2
	default:
		h = (c.R-c.G)/d + 4
	}
	return h / 6, s, v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
