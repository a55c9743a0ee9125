package layout

// Sign describes the physical face of a DMS. Millimetre fields are as
// reported by the sign configuration; pixel fields are the logical grid.
type Sign struct {
	FaceWidthMM  float64 `json:"face_width_mm"`
	FaceHeightMM float64 `json:"face_height_mm"`
	HBorderMM    float64 `json:"h_border_mm"`
	VBorderMM    float64 `json:"v_border_mm"`
	HPitchMM     float64 `json:"h_pitch_mm"`
	VPitchMM     float64 `json:"v_pitch_mm"`

	WidthPix  int `json:"width_pix"`
	HeightPix int `json:"height_pix"`

	// Zero for a full pixel-matrix sign.
	CharWidthPix  int `json:"char_width_pix"`
	CharHeightPix int `json:"char_height_pix"`

	// Calibration grid only; zero disables.
	ModuleWidthPix  int `json:"module_width_pix"`
	ModuleHeightPix int `json:"module_height_pix"`
}

// NewSign builds a Sign with every field clamped to its legal range.
func NewSign(faceW, faceH, hBorder, vBorder, hPitch, vPitch float64, widthPix, heightPix int) Sign {
	return Sign{
		FaceWidthMM:  faceW,
		FaceHeightMM: faceH,
		HBorderMM:    hBorder,
		VBorderMM:    vBorder,
		HPitchMM:     hPitch,
		VPitchMM:     vPitch,
		WidthPix:     widthPix,
		HeightPix:    heightPix,
	}.Clamped()
}

// WithCells returns a copy of s configured as a character/line-matrix sign.
func (s Sign) WithCells(charWidth, charHeight int) Sign {
	s.CharWidthPix = charWidth
	s.CharHeightPix = charHeight
	return s.Clamped()
}

// WithModules returns a copy of s with a calibration module size.
func (s Sign) WithModules(moduleWidth, moduleHeight int) Sign {
	s.ModuleWidthPix = moduleWidth
	s.ModuleHeightPix = moduleHeight
	return s.Clamped()
}

// Clamped returns s with negative values raised to zero and pitch raised to 1.
func (s Sign) Clamped() Sign {
	s.FaceWidthMM = maxf(0, s.FaceWidthMM)
	s.FaceHeightMM = maxf(0, s.FaceHeightMM)
	s.HBorderMM = maxf(0, s.HBorderMM)
	s.VBorderMM = maxf(0, s.VBorderMM)
	s.HPitchMM = maxf(1, s.HPitchMM)
	s.VPitchMM = maxf(1, s.VPitchMM)
	s.WidthPix = max(0, s.WidthPix)
	s.HeightPix = max(0, s.HeightPix)
	s.CharWidthPix = max(0, s.CharWidthPix)
	s.CharHeightPix = max(0, s.CharHeightPix)
	s.ModuleWidthPix = max(0, s.ModuleWidthPix)
	s.ModuleHeightPix = max(0, s.ModuleHeightPix)
	return s
}

// Drawable reports whether the face has any area and any pixels.
func (s Sign) Drawable() bool {
	return s.FaceWidthMM > 0 && s.FaceHeightMM > 0 && s.WidthPix > 0 && s.HeightPix > 0
}

// CharacterMatrix reports whether pixels are grouped into character cells.
func (s Sign) CharacterMatrix() bool { return s.CharWidthPix > 0 }

// LineMatrix reports whether pixel rows are grouped into lines.
func (s Sign) LineMatrix() bool { return s.CharHeightPix > 0 }

// Count is the number of pixels on the face.
func (s Sign) Count() int { return s.WidthPix * s.HeightPix }

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
