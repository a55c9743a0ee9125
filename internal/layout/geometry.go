package layout

// Geometry holds the effective border, pitch and gap values used to paint a
// sign. Hardware-reported values that would overflow the face are reduced
// so that every pixel lands inside it.
type Geometry struct {
	Sign Sign

	HBorder float64
	VBorder float64
	HPitch  float64
	VPitch  float64

	// Gap between adjacent character cells / lines (mm).
	CharGap float64
	LineGap float64

	// Number of inter-cell gaps on each axis.
	HGaps int
	VGaps int

	// Clamped is set when any configured pitch or border had to be reduced.
	Clamped bool
}

// Effective computes the sanity-clamped geometry for s.
func Effective(s Sign) Geometry {
	s = s.Clamped()
	g := Geometry{Sign: s}

	g.HGaps = cellGaps(s.WidthPix, s.CharWidthPix)
	g.VGaps = cellGaps(s.HeightPix, s.CharHeightPix)

	g.HPitch = minf(s.HPitchMM, s.FaceWidthMM/float64(max(1, s.WidthPix+g.HGaps)))
	g.VPitch = minf(s.VPitchMM, s.FaceHeightMM/float64(max(1, s.HeightPix+g.VGaps)))

	g.HBorder = minf(s.HBorderMM, maxf(0, (s.FaceWidthMM-g.HPitch*float64(s.WidthPix+g.HGaps))/2))
	g.VBorder = minf(s.VBorderMM, maxf(0, (s.FaceHeightMM-g.VPitch*float64(s.HeightPix+g.VGaps))/2))

	g.CharGap = cellGap(s.FaceWidthMM, g.HBorder, g.HPitch, s.WidthPix, g.HGaps)
	g.LineGap = cellGap(s.FaceHeightMM, g.VBorder, g.VPitch, s.HeightPix, g.VGaps)

	g.Clamped = g.HPitch < s.HPitchMM || g.VPitch < s.VPitchMM ||
		g.HBorder < s.HBorderMM || g.VBorder < s.VBorderMM
	return g
}

// cellGaps counts the gaps between cells of size cell across n pixels.
func cellGaps(n, cell int) int {
	if cell > 1 && n > cell {
		return n/cell - 1
	}
	return 0
}

// cellGap spreads the space left over after borders and pixels across gaps.
func cellGap(face, border, pitch float64, n, gaps int) float64 {
	excess := face - 2*border - float64(n)*pitch
	if excess > 0 && gaps > 0 {
		return excess / float64(gaps)
	}
	return 0
}

// PixelX is the distance (mm) from the left face edge to pixel column x.
func (g Geometry) PixelX(x int) float64 {
	return g.HBorder + g.charOffset(x) + g.HPitch*float64(x)
}

// PixelY is the distance (mm) from the top face edge to pixel row y.
func (g Geometry) PixelY(y int) float64 {
	return g.VBorder + g.lineOffset(y) + g.VPitch*float64(y)
}

func (g Geometry) charOffset(x int) float64 {
	if g.Sign.CharWidthPix > 0 {
		return float64(x/g.Sign.CharWidthPix) * g.CharGap
	}
	return 0
}

func (g Geometry) lineOffset(y int) float64 {
	if g.Sign.CharHeightPix > 0 {
		return float64(y/g.Sign.CharHeightPix) * g.LineGap
	}
	return 0
}

// UsedWidth is the face width consumed by borders and pixel pitch, ignoring
// the distributed gaps. It never exceeds the face width.
func (g Geometry) UsedWidth() float64 {
	return g.HPitch*float64(g.Sign.WidthPix+g.HGaps) + 2*g.HBorder
}

// UsedHeight is the vertical counterpart of UsedWidth.
func (g Geometry) UsedHeight() float64 {
	return g.VPitch*float64(g.Sign.HeightPix+g.VGaps) + 2*g.VBorder
}
