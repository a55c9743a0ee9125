package sequence

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/raster"
)

// RunnerConfig configures a Runner. Zero values select the real clock, the
// default tick and the default page-time policy.
type RunnerConfig struct {
	Clock     clockwork.Clock
	Tick      time.Duration
	Validator Validator
	Hooks     Hooks
}

// Runner drives a Player from a periodic ticker. At most one tick goroutine
// exists at a time; ticks are serialized and a tick belonging to a replaced
// page set is dropped.
//
// Hooks run with the Runner's lock held and must not call back into it.
type Runner struct {
	// life serializes Start, Stop and Clear.
	life sync.Mutex

	mu     sync.Mutex
	clock  clockwork.Clock
	tick   time.Duration
	player *Player
	hooks  Hooks

	gen  uint64
	stop chan struct{}
	done chan struct{}
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	return &Runner{
		clock:  cfg.Clock,
		tick:   cfg.Tick,
		player: NewPlayer(cfg.Hooks, cfg.Validator),
		hooks:  cfg.Hooks,
	}
}

// Tick is the timer period.
func (r *Runner) Tick() time.Duration { return r.tick }

// Start stops any running page set, then plays ps from its first page. The
// first raster is shown before Start returns.
func (r *Runner) Start(ps PageSet, blank *raster.Raster) error {
	if ps.Len() == 0 {
		return ErrEmptyPageSet
	}
	r.life.Lock()
	defer r.life.Unlock()
	r.stopLocked()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.player.Load(ps, blank); err != nil {
		return err
	}
	if err := r.player.Start(); err != nil {
		return err
	}
	if n := ps.Len(); n != len(ps.Rasters) || n != len(ps.OnTime) || n != len(ps.OffTime) {
		log.Debug().
			Int("rasters", len(ps.Rasters)).
			Int("on", len(ps.OnTime)).
			Int("off", len(ps.OffTime)).
			Int("pages", n).
			Msg("page set lengths differ, playing common pages")
	}

	r.gen++
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	ticker := r.clock.NewTicker(r.tick)
	go r.loop(r.gen, ticker, r.stop, r.done)
	return nil
}

func (r *Runner) loop(gen uint64, ticker clockwork.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			r.onTick(gen)
		}
	}
}

func (r *Runner) onTick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	if t, ok := r.player.Tick(r.tick); ok {
		log.Trace().Stringer("from", t.From).Stringer("to", t.To).Msg("page transition")
	}
}

// Stop halts the ticker and waits for its goroutine. The display keeps the
// last raster. Stop is safe to call repeatedly.
func (r *Runner) Stop() {
	r.life.Lock()
	defer r.life.Unlock()
	r.stopLocked()
}

func (r *Runner) stopLocked() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.gen++
	r.player.Stop()
	r.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Clear stops playback and shows the blank raster of the last page set.
func (r *Runner) Clear() {
	r.life.Lock()
	defer r.life.Unlock()
	r.stopLocked()
	r.mu.Lock()
	defer r.mu.Unlock()
	if b := r.player.Blank(); b != nil && r.hooks.SetRaster != nil {
		r.hooks.SetRaster(b)
	}
}

// Close is Stop.
func (r *Runner) Close() error {
	r.Stop()
	return nil
}

// Status snapshots the underlying player.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.Status()
}
