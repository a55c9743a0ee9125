package ws

import (
	"image/color"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/pagefile"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/render"
)

// Control is a message on the control socket. Every field is optional.
type Control struct {
	Viewport    *render.Viewport `json:"viewport,omitempty"`
	Sign        *layout.Sign     `json:"sign,omitempty"`
	Fault       *bool            `json:"fault,omitempty"`
	Calibration *bool            `json:"calibration,omitempty"`
	RunTest     string           `json:"runTest,omitempty"`
	TestOnMS    int              `json:"testOnMs,omitempty"`
	Pages       *pagefile.File   `json:"pages,omitempty"`
	Stop        bool             `json:"stop,omitempty"`
	Clear       bool             `json:"clear,omitempty"`
}

// Apply performs msg against the core and persists display settings.
func (s *Server) Apply(msg Control) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	e := s.core.Eng
	cfg := s.core.Config()
	changed := false

	if v := msg.Viewport; v != nil && v.Valid() {
		e.SetViewport(*v)
		cfg.Viewport.Width, cfg.Viewport.Height = v.Width, v.Height
		changed = true
	}
	if msg.Sign != nil {
		if err := s.core.SetSign(*msg.Sign); err != nil {
			log.Warn().Err(err).Msg("led reopen")
		}
		changed = true
	}
	if msg.Fault != nil || msg.Calibration != nil {
		o := e.Options()
		if msg.Fault != nil {
			o.Filter = color.NRGBA{}
			cfg.Render.Filter, cfg.Render.FilterAlpha = "", 0
			if *msg.Fault {
				f := render.FaultFilter
				o.Filter = f
				cfg.Render.Filter = raster.FormatColor(color.RGBA{R: f.R, G: f.G, B: f.B, A: 0xFF})
				cfg.Render.FilterAlpha = int(f.A)
			}
			changed = true
		}
		if msg.Calibration != nil {
			o.Calibration = *msg.Calibration
			cfg.Render.Calibration = *msg.Calibration
			changed = true
		}
		e.SetOptions(o)
	}
	if changed {
		s.saveConfig(cfg)
	}

	switch {
	case msg.Stop:
		s.core.Stop()
	case msg.Clear:
		s.core.Clear()
	case msg.RunTest != "":
		on := time.Duration(msg.TestOnMS) * time.Millisecond
		if on <= 0 {
			on = time.Second
		}
		return s.core.RunPattern(msg.RunTest, on)
	case msg.Pages != nil:
		return s.core.PlayPages(msg.Pages)
	}
	return nil
}
