package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Raster is an immutable width×height grid of pixels for one sign page.
// It satisfies image.Image; unlit pixels read as transparent.
type Raster struct {
	w, h int
	pix  []Pixel
}

var ErrRowWidth = errors.New("raster rows differ in width")

// Blank returns an all-unlit raster. Negative dimensions give a 0×0 raster.
func Blank(w, h int) *Raster {
	if w <= 0 || h <= 0 {
		return &Raster{}
	}
	return &Raster{w: w, h: h, pix: make([]Pixel, w*h)}
}

func (r *Raster) Width() int {
	if r == nil {
		return 0
	}
	return r.w
}

func (r *Raster) Height() int {
	if r == nil {
		return 0
	}
	return r.h
}

// Empty reports whether the raster has no pixels.
func (r *Raster) Empty() bool { return r == nil || r.w == 0 || r.h == 0 }

// Pixel returns the pixel at x,y; out-of-range coordinates are unlit.
func (r *Raster) Pixel(x, y int) Pixel {
	if r == nil || x < 0 || y < 0 || x >= r.w || y >= r.h {
		return Unlit
	}
	return r.pix[y*r.w+x]
}

// IsLit reports whether the pixel at x,y is lit.
func (r *Raster) IsLit(x, y int) bool { return r.Pixel(x, y).IsLit() }

// LitCount counts lit pixels.
func (r *Raster) LitCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.pix {
		if p.IsLit() {
			n++
		}
	}
	return n
}

// Equal compares dimensions and every pixel.
func (r *Raster) Equal(o *Raster) bool {
	if r.Empty() || o.Empty() {
		return r.Empty() && o.Empty()
	}
	if r.w != o.w || r.h != o.h {
		return false
	}
	for i := range r.pix {
		if r.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

func (r *Raster) ColorModel() color.Model { return color.RGBAModel }
func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width(), r.Height()) }
func (r *Raster) At(x, y int) color.Color { return r.Pixel(x, y).RGBA() }

// Rows renders the raster as text, '#' for lit and '.' for unlit.
func (r *Raster) Rows() []string {
	out := make([]string, 0, r.Height())
	for y := 0; y < r.Height(); y++ {
		b := make([]byte, r.Width())
		for x := range b {
			if r.IsLit(x, y) {
				b[x] = '#'
			} else {
				b[x] = '.'
			}
		}
		out = append(out, string(b))
	}
	return out
}

// Builder accumulates pixels before freezing them into a Raster.
type Builder struct {
	r *Raster
}

func NewBuilder(w, h int) *Builder { return &Builder{r: Blank(w, h)} }

// Set writes a pixel; out-of-range writes are ignored.
func (b *Builder) Set(x, y int, p Pixel) *Builder {
	if x >= 0 && y >= 0 && x < b.r.w && y < b.r.h {
		b.r.pix[y*b.r.w+x] = p
	}
	return b
}

// Light sets a lit pixel of color c.
func (b *Builder) Light(x, y int, c color.RGBA) *Builder { return b.Set(x, y, Lit(c)) }

// Build freezes the raster. The builder must not be used afterwards.
func (b *Builder) Build() *Raster {
	r := b.r
	b.r = Blank(0, 0)
	return r
}

// Parse builds a raster from text rows. '.', ' ' and '0' are unlit; any other
// rune is lit with lit color c, unless palette names it.
func Parse(rows []string, c color.RGBA, palette map[rune]color.RGBA) (*Raster, error) {
	if len(rows) == 0 {
		return Blank(0, 0), nil
	}
	w := len([]rune(rows[0]))
	b := NewBuilder(w, len(rows))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != w {
			return nil, fmt.Errorf("row %d has %d pixels, want %d: %w", y, len(runes), w, ErrRowWidth)
		}
		for x, ch := range runes {
			switch ch {
			case '.', ' ', '0':
				continue
			}
			if pc, ok := palette[ch]; ok {
				b.Light(x, y, pc)
			} else {
				b.Light(x, y, c)
			}
		}
	}
	return b.Build(), nil
}

// MustParse is Parse for fixed test patterns; it panics on malformed rows.
func MustParse(rows ...string) *Raster {
	r, err := Parse(rows, Amber, nil)
	if err != nil {
		panic(err)
	}
	return r
}
