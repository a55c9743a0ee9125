package render

import (
	"image/color"

	"github.com/signworks/dmsview/internal/layout"
)

// Viewport is the device surface size in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

// Op is a paint primitive.
type Op uint8

const (
	OpFillRect Op = iota
	OpFillOval
	OpLine
)

func (o Op) String() string {
	switch o {
	case OpFillRect:
		return "rect"
	case OpFillOval:
		return "oval"
	case OpLine:
		return "line"
	default:
		return "unknown"
	}
}

// Command is one paint primitive in device coordinates. Lines are axis
// aligned and run from (X,Y) to (X+W,Y+H).
type Command struct {
	Op    Op          `json:"op"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	W     float64     `json:"w"`
	H     float64     `json:"h"`
	Color color.NRGBA `json:"color"`
}

// Options are the fixed colors and overlays of a paint.
type Options struct {
	Background color.NRGBA
	Face       color.NRGBA
	Unlit      color.NRGBA

	// Filter is composited over the face when its alpha is non-zero.
	Filter color.NRGBA

	// Calibration draws module boundary lines.
	Calibration bool
	GridColor   color.NRGBA
}

// DefaultOptions matches the console preview: gray surround, black face,
// dark unlit pixels.
func DefaultOptions() Options {
	return Options{
		Background: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
		Face:       color.NRGBA{A: 0xFF},
		Unlit:      color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xFF},
		GridColor:  color.NRGBA{R: 0x00, G: 0xA0, B: 0xFF, A: 0xC0},
	}
}

// FaultFilter is the translucent overlay for a degraded sign.
var FaultFilter = color.NRGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0x40}

// Scene is the derived render state for one sign on one viewport.
type Scene struct {
	Geometry  layout.Geometry
	Transform layout.Transform
	Viewport  Viewport
}

// NewScene computes the effective geometry and the fitting transform.
func NewScene(s layout.Sign, vp Viewport) Scene {
	s = s.Clamped()
	return Scene{
		Geometry:  layout.Effective(s),
		Transform: layout.Rescale(float64(vp.Width), float64(vp.Height), s.FaceWidthMM, s.FaceHeightMM),
		Viewport:  vp,
	}
}

// Drawable reports whether anything beyond the background would be painted.
func (sc Scene) Drawable() bool {
	return sc.Transform.OK && sc.Geometry.Sign.Drawable()
}
