package render

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/raster"
)

// Driver receives each painted frame. The image is reused by the next
// paint; drivers that keep it must copy it.
type Driver interface {
	Write(frame *image.RGBA) error
}

// Engine paints the current raster of a sign onto a viewport and pushes the
// result to its drivers. The raster is published atomically so a sequencer
// can replace it from its own goroutine while a paint is in progress.
type Engine struct {
	mu     sync.Mutex
	sign   layout.Sign
	vp     Viewport
	opts   Options
	scene  Scene
	dirty  bool
	canvas *Canvas
	drv    []Driver

	current atomic.Pointer[raster.Raster]
	frameID atomic.Uint64

	last Stats
}

// Stats describe the last paint.
type Stats struct {
	RenderMS float64 `json:"render_ms"`
	Commands int     `json:"commands"`
}

var ErrInvalidViewport = errors.New("invalid viewport")

// NewEngine returns an Engine for sign on a vp-sized surface.
func NewEngine(sign layout.Sign, vp Viewport, opts Options, drivers ...Driver) (*Engine, error) {
	if !vp.Valid() {
		return nil, ErrInvalidViewport
	}
	e := &Engine{
		sign:   sign.Clamped(),
		vp:     vp,
		opts:   opts,
		dirty:  true,
		canvas: NewCanvas(vp),
		drv:    drivers,
	}
	return e, nil
}

// AddDriver attaches another frame sink.
func (e *Engine) AddDriver(d Driver) {
	if d == nil {
		return
	}
	e.mu.Lock()
	e.drv = append(e.drv, d)
	e.mu.Unlock()
}

// SetRaster publishes the raster to paint next. nil clears the face.
func (e *Engine) SetRaster(r *raster.Raster) { e.current.Store(r) }

// Raster is the currently published raster.
func (e *Engine) Raster() *raster.Raster { return e.current.Load() }

// Sign is the sign being painted.
func (e *Engine) Sign() layout.Sign {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sign
}

// SetSign replaces the physical sign and invalidates the cached scene.
func (e *Engine) SetSign(s layout.Sign) {
	e.mu.Lock()
	e.sign = s.Clamped()
	e.dirty = true
	e.mu.Unlock()
}

// SetViewport resizes the surface. Sizes without area are ignored.
func (e *Engine) SetViewport(vp Viewport) {
	if !vp.Valid() {
		return
	}
	e.mu.Lock()
	if vp != e.vp {
		e.vp = vp
		e.canvas = NewCanvas(vp)
		e.dirty = true
	}
	e.mu.Unlock()
}

// Viewport is the current surface size.
func (e *Engine) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp
}

func (e *Engine) SetOptions(o Options) {
	e.mu.Lock()
	e.opts = o
	e.mu.Unlock()
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// Scene returns the cached scene, recomputing it after a sign or viewport
// change.
func (e *Engine) Scene() Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sceneLocked()
}

func (e *Engine) sceneLocked() Scene {
	if e.dirty {
		e.scene = NewScene(e.sign, e.vp)
		e.dirty = false
		if e.scene.Geometry.Clamped {
			g := e.scene.Geometry
			log.Debug().
				Float64("h_pitch", g.HPitch).
				Float64("v_pitch", g.VPitch).
				Float64("h_border", g.HBorder).
				Float64("v_border", g.VBorder).
				Msg("sign geometry clamped to face")
		}
	}
	return e.scene
}

// Plan returns the paint commands for the current state without drawing.
func (e *Engine) Plan() []Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Paint(e.sceneLocked(), e.current.Load(), e.opts)
}

// Stats returns metrics of the last paint.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// FrameID counts completed paints.
func (e *Engine) FrameID() uint64 { return e.frameID.Load() }

// RenderOnce paints the current raster and writes the frame to every driver.
func (e *Engine) RenderOnce() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	cmds := Paint(e.sceneLocked(), e.current.Load(), e.opts)
	e.canvas.Execute(cmds)
	e.frameID.Add(1)

	e.last = Stats{
		RenderMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Commands: len(cmds),
	}

	var errs []error
	for _, d := range e.drv {
		if err := d.Write(e.canvas.Image()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot paints into a fresh image, leaving the engine's canvas and
// drivers untouched.
func (e *Engine) Snapshot() *image.RGBA {
	e.mu.Lock()
	sc := e.sceneLocked()
	opts := e.opts
	e.mu.Unlock()

	c := NewCanvas(sc.Viewport)
	c.Execute(Paint(sc, e.current.Load(), opts))
	return c.Image()
}
