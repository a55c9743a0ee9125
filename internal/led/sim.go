package led

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/raster"
)

// Sim logs a compact summary of each frame instead of driving hardware.
type Sim struct {
	mu    sync.Mutex
	Count int
	Last  *raster.Raster
}

func (s *Sim) Write(r *raster.Raster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Count++
	s.Last = r
	log.Debug().
		Int("frame", s.Count).
		Int("w", r.Width()).
		Int("h", r.Height()).
		Int("lit", r.LitCount()).
		Msg("led sim frame")
	return nil
}

func (s *Sim) Close() error { return nil }
