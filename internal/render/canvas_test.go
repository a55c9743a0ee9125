package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signworks/dmsview/internal/raster"
)

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v >= -tol && v <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func rgba(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestCanvasFillRect(t *testing.T) {
	c := NewCanvas(Viewport{Width: 10, Height: 10})
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	c.Execute([]Command{{Op: OpFillRect, X: 2, Y: 2, W: 4, H: 4, Color: red}})

	img := c.Image()
	if got := img.RGBAAt(3, 3); !near(got, rgba(red), 3) {
		t.Fatalf("inside rect: got %#v", got)
	}
	if got := img.RGBAAt(7, 7); got != (color.RGBA{}) {
		t.Fatalf("outside rect: got %#v", got)
	}
}

func TestCanvasClipsOffscreen(t *testing.T) {
	c := NewCanvas(Viewport{Width: 4, Height: 4})
	blue := color.NRGBA{B: 0xFF, A: 0xFF}
	c.Execute([]Command{
		{Op: OpFillRect, X: -10, Y: -10, W: 12, H: 12, Color: blue},
		{Op: OpFillOval, X: 100, Y: 100, W: 5, H: 5, Color: blue},
		{Op: OpFillRect, X: 1, Y: 1, W: 0, H: 3, Color: blue},
	})
	img := c.Image()
	assert.True(t, near(img.RGBAAt(0, 0), rgba(blue), 3))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(3, 3))
}

func TestCanvasOval(t *testing.T) {
	c := NewCanvas(Viewport{Width: 20, Height: 20})
	white := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	c.Execute([]Command{{Op: OpFillOval, X: 0, Y: 0, W: 20, H: 20, Color: white}})

	img := c.Image()
	assert.True(t, near(img.RGBAAt(10, 10), rgba(white), 3), "center is filled")
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A, "corner is outside the oval")
}

func TestCanvasLineIsVisible(t *testing.T) {
	c := NewCanvas(Viewport{Width: 10, Height: 10})
	green := color.NRGBA{G: 0xFF, A: 0xFF}
	c.Execute([]Command{{Op: OpLine, X: 5, Y: 0, W: 0, H: 10, Color: green}})

	img := c.Image()
	assert.NotZero(t, int(img.RGBAAt(4, 5).G)+int(img.RGBAAt(5, 5).G))
	assert.Zero(t, img.RGBAAt(8, 5).G)
}

func TestCanvasPaintsSign(t *testing.T) {
	vp := Viewport{Width: 200, Height: 50}
	o := DefaultOptions()
	r := raster.NewBuilder(10, 5).Light(2, 2, raster.Amber).Build()

	c := NewCanvas(vp)
	c.Execute(Paint(NewScene(testSign(), vp), r, o))
	img := c.Image()

	assert.Equal(t, image.Rect(0, 0, 200, 50), img.Bounds())
	// letterbox bars
	assert.True(t, near(img.RGBAAt(10, 25), rgba(o.Background), 3))
	assert.True(t, near(img.RGBAAt(190, 25), rgba(o.Background), 3))
	// an unlit pixel well away from the lit one
	assert.True(t, near(img.RGBAAt(50+85, 5), rgba(o.Unlit), 3))
	// the lit pixel's center
	assert.True(t, near(img.RGBAAt(50+25, 25), color.RGBA{R: 0xFF, G: 0xB0, A: 0xFF}, 3))
}
