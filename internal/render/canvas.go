package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter ellipse.
const kappa = 0.5522847498

// minLine is the thinnest line drawn, in device pixels.
const minLine = 1.0

// Canvas rasterizes paint commands into an RGBA image with anti-aliased
// edges. A Canvas is not safe for concurrent use.
type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func NewCanvas(vp Viewport) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, max(0, vp.Width), max(0, vp.Height))),
		z:   vector.NewRasterizer(0, 0),
	}
}

// Image is the backing image. It is overwritten by the next Execute.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Viewport is the canvas size.
func (c *Canvas) Viewport() Viewport {
	b := c.img.Bounds()
	return Viewport{Width: b.Dx(), Height: b.Dy()}
}

// Execute clears the canvas and draws cmds in order.
func (c *Canvas) Execute(cmds []Command) {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, cmd := range cmds {
		switch cmd.Op {
		case OpFillRect:
			c.fill(cmd, rectPath)
		case OpFillOval:
			c.fill(cmd, ovalPath)
		case OpLine:
			c.fill(thicken(cmd), rectPath)
		}
	}
}

type pathFunc func(z *vector.Rasterizer, x, y, w, h float32)

// fill masks the command's shape and composites its color over the image.
func (c *Canvas) fill(cmd Command, path pathFunc) {
	if cmd.W <= 0 || cmd.H <= 0 || cmd.Color.A == 0 {
		return
	}
	bb := image.Rect(
		int(math.Floor(cmd.X)), int(math.Floor(cmd.Y)),
		int(math.Ceil(cmd.X+cmd.W)), int(math.Ceil(cmd.Y+cmd.H)),
	)
	clip := bb.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}

	mask := image.NewAlpha(bb)
	c.z.Reset(bb.Dx(), bb.Dy())
	path(c.z,
		float32(cmd.X-float64(bb.Min.X)), float32(cmd.Y-float64(bb.Min.Y)),
		float32(cmd.W), float32(cmd.H))
	c.z.Draw(mask, bb, image.Opaque, image.Point{})

	draw.DrawMask(c.img, clip, image.NewUniform(cmd.Color), image.Point{}, mask, clip.Min, draw.Over)
}

func rectPath(z *vector.Rasterizer, x, y, w, h float32) {
	z.MoveTo(x, y)
	z.LineTo(x+w, y)
	z.LineTo(x+w, y+h)
	z.LineTo(x, y+h)
	z.ClosePath()
}

func ovalPath(z *vector.Rasterizer, x, y, w, h float32) {
	rx, ry := w/2, h/2
	cx, cy := x+rx, y+ry
	ox, oy := rx*kappa, ry*kappa

	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	z.CubeTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	z.CubeTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	z.CubeTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	z.ClosePath()
}

// thicken turns an axis-aligned line into a rectangle at least minLine wide.
func thicken(cmd Command) Command {
	if cmd.W < minLine {
		cmd.X -= (minLine - cmd.W) / 2
		cmd.W = minLine
	}
	if cmd.H < minLine {
		cmd.Y -= (minLine - cmd.H) / 2
		cmd.H = minLine
	}
	cmd.Op = OpFillRect
	return cmd
}
