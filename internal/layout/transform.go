package layout

// Transform maps sign-face millimetres to device pixels: device = T + S*mm.
type Transform struct {
	Scale float64
	TX    float64
	TY    float64

	// OK is false when the viewport or the face has no area.
	OK bool
}

// Identity leaves coordinates unchanged.
var Identity = Transform{Scale: 1}

// Rescale fits a faceW×faceH face into a w×h viewport without distortion and
// centers it along the slack axis.
func Rescale(w, h, faceW, faceH float64) Transform {
	if w <= 0 || h <= 0 || faceW <= 0 || faceH <= 0 {
		return Identity
	}
	sx := w / faceW
	sy := h / faceH
	scale := minf(sx, sy)
	return Transform{
		Scale: scale,
		TX:    faceW * (sx - scale) / 2,
		TY:    faceH * (sy - scale) / 2,
		OK:    true,
	}
}

// Point maps a face position to device space.
func (t Transform) Point(x, y float64) (float64, float64) {
	return t.TX + t.Scale*x, t.TY + t.Scale*y
}

// Size maps a face length to device space.
func (t Transform) Size(w, h float64) (float64, float64) {
	return t.Scale * w, t.Scale * h
}
