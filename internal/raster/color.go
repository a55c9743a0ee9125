package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Pixel is a packed 0xAARRGGBB value. An alpha of zero marks an unlit pixel;
// any other alpha marks a lit pixel of the RGB color.
type Pixel uint32

const (
	alphaOffset = 24
	redOffset   = 16
	greenOffset = 8
	blueOffset  = 0
)

// Unlit is the zero pixel.
const Unlit Pixel = 0

// Amber is the classic monochrome DMS LED color.
var Amber = color.RGBA{R: 0xFF, G: 0xB0, B: 0x00, A: 0xFF}

// Lit packs a lit pixel of color c.
func Lit(c color.RGBA) Pixel {
	var p Pixel
	p = setChannel(p, c.R, redOffset)
	p = setChannel(p, c.G, greenOffset)
	p = setChannel(p, c.B, blueOffset)
	return setChannel(p, 0xFF, alphaOffset)
}

func setChannel(p Pixel, v uint8, off uint8) Pixel {
	mask := Pixel(0xFF) << off
	return (p &^ mask) | Pixel(v)<<off
}

func channel(p Pixel, off uint8) uint8 {
	return uint8((p >> off) & 0xFF)
}

// IsLit reports whether the pixel emits light.
func (p Pixel) IsLit() bool { return channel(p, alphaOffset) != 0 }

// RGBA returns the pixel color; unlit pixels are transparent black.
func (p Pixel) RGBA() color.RGBA {
	if !p.IsLit() {
		return color.RGBA{}
	}
	return color.RGBA{
		R: channel(p, redOffset),
		G: channel(p, greenOffset),
		B: channel(p, blueOffset),
		A: 0xFF,
	}
}

// ParseColor accepts "#RRGGBB", "RRGGBB" or "#RGB".
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// FormatColor renders c as "#RRGGBB".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
