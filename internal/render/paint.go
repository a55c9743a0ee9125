package render

import (
	"image/color"

	"github.com/signworks/dmsview/internal/raster"
)

// Paint plans the drawing of r on the scene. It is a pure function of its
// inputs: unlit pixels are planned first so that lit pixels, which bloom
// past their pitch, overdraw their dark neighbours.
func Paint(sc Scene, r *raster.Raster, o Options) []Command {
	vp := sc.Viewport
	cmds := []Command{{
		Op: OpFillRect, W: float64(vp.Width), H: float64(vp.Height), Color: o.Background,
	}}
	if !sc.Drawable() {
		return cmds
	}
	g := sc.Geometry
	s := g.Sign

	cmds = append(cmds, sc.rect(0, 0, s.FaceWidthMM, s.FaceHeightMM, o.Face))

	if r != nil {
		cmds = sc.paintUnlit(cmds, r, o.Unlit)
		cmds = sc.paintLit(cmds, r)
	}
	if o.Filter.A > 0 {
		cmds = append(cmds, sc.rect(0, 0, s.FaceWidthMM, s.FaceHeightMM, o.Filter))
	}
	if r != nil && o.Calibration {
		cmds = sc.paintModules(cmds, o.GridColor)
	}
	return cmds
}

func (sc Scene) paintUnlit(cmds []Command, r *raster.Raster, c color.NRGBA) []Command {
	g := sc.Geometry
	for y := 0; y < g.Sign.HeightPix; y++ {
		yy := g.PixelY(y)
		for x := 0; x < g.Sign.WidthPix; x++ {
			if r.IsLit(x, y) {
				continue
			}
			cmds = append(cmds, sc.rect(g.PixelX(x), yy, g.HPitch, g.VPitch, c))
		}
	}
	return cmds
}

func (sc Scene) paintLit(cmds []Command, r *raster.Raster) []Command {
	g := sc.Geometry
	bx := g.HPitch / 2
	by := g.VPitch / 2
	for y := 0; y < g.Sign.HeightPix; y++ {
		yy := g.PixelY(y)
		for x := 0; x < g.Sign.WidthPix; x++ {
			p := r.Pixel(x, y)
			if !p.IsLit() {
				continue
			}
			c := p.RGBA()
			// centered on the nominal pixel, grown by the bloom
			cmds = append(cmds, sc.oval(
				g.PixelX(x)-bx/2, yy-by/2,
				g.HPitch+bx, g.VPitch+by,
				color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF},
			))
		}
	}
	return cmds
}

// paintModules draws boundaries between hardware modules. Only grids that
// divide the sign evenly are drawn.
func (sc Scene) paintModules(cmds []Command, c color.NRGBA) []Command {
	g := sc.Geometry
	s := g.Sign
	if m := s.ModuleWidthPix; m > 0 && s.WidthPix%m == 0 {
		top := g.VBorder
		h := s.FaceHeightMM - 2*g.VBorder
		for k := m; k < s.WidthPix; k += m {
			x := (g.PixelX(k-1) + g.HPitch + g.PixelX(k)) / 2
			cmds = append(cmds, sc.line(x, top, 0, h, c))
		}
	}
	if m := s.ModuleHeightPix; m > 0 && s.HeightPix%m == 0 {
		left := g.HBorder
		w := s.FaceWidthMM - 2*g.HBorder
		for k := m; k < s.HeightPix; k += m {
			y := (g.PixelY(k-1) + g.VPitch + g.PixelY(k)) / 2
			cmds = append(cmds, sc.line(left, y, w, 0, c))
		}
	}
	return cmds
}

func (sc Scene) rect(x, y, w, h float64, c color.NRGBA) Command {
	return sc.command(OpFillRect, x, y, w, h, c)
}

func (sc Scene) oval(x, y, w, h float64, c color.NRGBA) Command {
	return sc.command(OpFillOval, x, y, w, h, c)
}

func (sc Scene) line(x, y, w, h float64, c color.NRGBA) Command {
	return sc.command(OpLine, x, y, w, h, c)
}

func (sc Scene) command(op Op, x, y, w, h float64, c color.NRGBA) Command {
	dx, dy := sc.Transform.Point(x, y)
	dw, dh := sc.Transform.Size(w, h)
	return Command{Op: op, X: dx, Y: dy, W: dw, H: dh, Color: c}
}
