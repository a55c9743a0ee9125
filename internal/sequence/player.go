package sequence

import (
	"time"

	"github.com/signworks/dmsview/internal/pagetime"
	"github.com/signworks/dmsview/internal/raster"
)

// Player steps a PageSet through its display/blank cycle. It holds no timer;
// Tick is driven by the caller. A Player is not safe for concurrent use.
type Player struct {
	run RunState

	ps    PageSet
	n     int
	blank *raster.Raster

	state   State
	elapsed time.Duration
	ticks   uint64

	hooks Hooks
	v     Validator
}

// NewPlayer constructs a Player. A nil validator uses the default page-time
// policy.
func NewPlayer(h Hooks, v Validator) *Player {
	if v == nil {
		v = pagetime.DefaultPolicy()
	}
	return &Player{
		run:   Idle,
		hooks: h,
		v:     v,
		blank: raster.Blank(0, 0),
	}
}

// Load replaces the page set and the blank raster shown between pages. The
// player is left Idle at the first page.
func (p *Player) Load(ps PageSet, blank *raster.Raster) error {
	n := ps.Len()
	if n == 0 {
		return ErrEmptyPageSet
	}
	if blank == nil {
		blank = raster.Blank(0, 0)
	}
	p.ps = ps
	p.n = n
	p.blank = blank
	p.Stop()
	return nil
}

// Start shows the first page immediately and begins timing it.
func (p *Player) Start() error {
	if p.n == 0 {
		return ErrEmptyPageSet
	}
	if p.run == Running {
		return nil
	}
	p.run = Running
	p.state = State{Page: 0, Phase: Displaying}
	p.elapsed = 0
	p.ticks = 0
	p.show(p.pageRaster(0))
	return nil
}

// Stop halts timing and rewinds to the first page. The last raster shown is
// left on the display.
func (p *Player) Stop() {
	p.run = Idle
	p.state = State{Page: 0, Phase: Displaying}
	p.elapsed = 0
}

// Blank is the raster shown during off-times.
func (p *Player) Blank() *raster.Raster { return p.blank }

// Tick advances the current phase by delta and applies at most one
// transition.
func (p *Player) Tick(delta time.Duration) (Transition, bool) {
	if p.run != Running || delta <= 0 {
		return Transition{}, false
	}
	p.ticks++
	p.elapsed += delta

	from := p.state
	page := p.state.Page
	switch p.state.Phase {
	case Displaying:
		on := p.onTime(page)
		if on <= 0 || p.elapsed < on {
			return Transition{}, false
		}
		if p.offTime(page) > 0 {
			p.state.Phase = Blanking
			p.show(p.blank)
		} else {
			p.next()
		}
	case Blanking:
		if p.elapsed < p.offTime(page) {
			return Transition{}, false
		}
		p.next()
	}
	p.elapsed = 0

	t := Transition{From: from, To: p.state}
	if p.hooks.OnTransition != nil {
		p.hooks.OnTransition(t)
	}
	return t, true
}

// Status snapshots the player.
func (p *Player) Status() Status {
	st := Status{
		Run:     p.run,
		State:   p.state,
		Elapsed: p.elapsed,
		Pages:   p.n,
		Ticks:   p.ticks,
	}
	if p.n == 1 {
		st.Static = p.onTime(0) <= 0
	}
	return st
}

func (p *Player) next() {
	p.state = State{Page: (p.state.Page + 1) % p.n, Phase: Displaying}
	p.show(p.pageRaster(p.state.Page))
}

func (p *Player) onTime(page int) time.Duration {
	return p.v.ValidateOn(p.ps.OnTime[page], p.n == 1)
}

func (p *Player) offTime(page int) time.Duration {
	d := p.ps.OffTime[page]
	if ov, ok := p.v.(OffValidator); ok {
		return ov.ValidateOff(d)
	}
	return max(0, d)
}

// pageRaster returns the raster for page, or the blank raster if the page
// has none.
func (p *Player) pageRaster(page int) *raster.Raster {
	if page < 0 || page >= p.n || p.ps.Rasters[page] == nil {
		return p.blank
	}
	return p.ps.Rasters[page]
}

func (p *Player) show(r *raster.Raster) {
	if p.hooks.SetRaster != nil {
		p.hooks.SetRaster(r)
	}
}
