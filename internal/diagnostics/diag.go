package diagnostics

import (
	"fmt"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/sequence"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sign reports configuration anomalies that the renderer silently corrects.
func Sign(s layout.Sign) []Diagnostic {
	var out []Diagnostic
	if !s.Drawable() {
		out = append(out, Diagnostic{
			Severity: Warn,
			Code:     "SIGN.EMPTY",
			Summary:  "Sign has no face area or no pixels",
			LikelyCauses: []string{
				"sign configuration not yet received",
				"face size or pixel count reported as zero",
			},
			Evidence: map[string]any{
				"face_width_mm":  s.FaceWidthMM,
				"face_height_mm": s.FaceHeightMM,
				"width_pix":      s.WidthPix,
				"height_pix":     s.HeightPix,
			},
		})
		return out
	}
	g := layout.Effective(s)
	if g.Clamped {
		out = append(out, Diagnostic{
			Severity:       Info,
			Code:           "SIGN.GEOMETRY_CLAMPED",
			Summary:        "Pitch or border exceeds the face and was reduced",
			SuggestedFixes: []string{"check the sign's reported pitch and border"},
			Evidence: map[string]any{
				"h_pitch_mm":  s.HPitchMM,
				"v_pitch_mm":  s.VPitchMM,
				"h_border_mm": s.HBorderMM,
				"v_border_mm": s.VBorderMM,
				"eff_h_pitch": g.HPitch,
				"eff_v_pitch": g.VPitch,
				"eff_h_bord":  g.HBorder,
				"eff_v_bord":  g.VBorder,
			},
		})
	}
	if m := s.ModuleWidthPix; m > 0 && s.WidthPix%m != 0 {
		out = append(out, moduleMismatch("width", s.WidthPix, m))
	}
	if m := s.ModuleHeightPix; m > 0 && s.HeightPix%m != 0 {
		out = append(out, moduleMismatch("height", s.HeightPix, m))
	}
	return out
}

func moduleMismatch(axis string, pix, module int) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     "SIGN.MODULE_GRID",
		Summary:  fmt.Sprintf("Module %s does not divide the sign; calibration lines hidden", axis),
		Evidence: map[string]any{"pixels": pix, "module": module},
	}
}

// PageSet reports page sets that will not play as authored.
func PageSet(ps sequence.PageSet, s layout.Sign) []Diagnostic {
	var out []Diagnostic
	n := ps.Len()
	if n == 0 {
		return append(out, Diagnostic{Severity: Err, Code: "PAGES.EMPTY", Summary: "Message has no pages"})
	}
	if n != len(ps.Rasters) || n != len(ps.OnTime) || n != len(ps.OffTime) {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "PAGES.LENGTH_MISMATCH",
			Summary:  fmt.Sprintf("Only the first %d pages will play", n),
			Evidence: map[string]any{
				"rasters":  len(ps.Rasters),
				"on_time":  len(ps.OnTime),
				"off_time": len(ps.OffTime),
			},
		})
	}
	for i := 0; i < n; i++ {
		r := ps.Rasters[i]
		if r == nil {
			out = append(out, Diagnostic{
				Severity: Warn,
				Code:     "PAGES.MISSING_RASTER",
				Summary:  fmt.Sprintf("Page %d has no raster and will show blank", i),
			})
			continue
		}
		if r.Width() != s.WidthPix || r.Height() != s.HeightPix {
			out = append(out, Diagnostic{
				Severity: Warn,
				Code:     "PAGES.SIZE",
				Summary:  fmt.Sprintf("Page %d is %dx%d, sign is %dx%d", i, r.Width(), r.Height(), s.WidthPix, s.HeightPix),
				LikelyCauses: []string{
					"message rendered for a different sign",
				},
			})
		}
	}
	return out
}
