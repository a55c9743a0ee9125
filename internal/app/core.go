package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/config"
	diag "github.com/signworks/dmsview/internal/diagnostics"
	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/led"
	"github.com/signworks/dmsview/internal/pagefile"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/render"
	"github.com/signworks/dmsview/internal/sequence"
	"github.com/signworks/dmsview/internal/testpattern"
)

// Core wires the sequencer to the renderer and the optional LED mirror.
type Core struct {
	Eng *render.Engine
	Seq *sequence.Runner

	ledMu  sync.Mutex
	led    led.Driver
	ownLED bool

	// playMu orders message and sign changes.
	playMu sync.Mutex

	cfg   *config.Config
	clock clockwork.Clock

	mu      sync.Mutex
	current sequence.PageSet
	onDiag  func(diag.Diagnostic)
}

// Options are the host-supplied parts of a Core.
type Options struct {
	Clock   clockwork.Clock
	LED     led.Driver
	Drivers []render.Driver
}

// NewCore builds the engine and sequencer for cfg. The LED driver is taken
// from opts when set, otherwise opened from cfg.LED.
func NewCore(cfg *config.Config, opts Options) (*Core, error) {
	ro, err := cfg.Render.Options()
	if err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}
	sign := cfg.Sign.Layout()
	eng, err := render.NewEngine(sign, cfg.Viewport.Render(), ro, opts.Drivers...)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	c := &Core{Eng: eng, cfg: cfg, clock: opts.Clock, led: opts.LED}
	if c.led == nil {
		if c.led, err = OpenLED(cfg.LED, sign); err != nil {
			return nil, err
		}
		c.ownLED = true
	}

	c.Seq = sequence.NewRunner(sequence.RunnerConfig{
		Clock:     opts.Clock,
		Tick:      cfg.Tick(),
		Validator: cfg.Timing.Policy(),
		Hooks: sequence.Hooks{
			SetRaster:    c.show,
			OnTransition: c.transition,
		},
	})
	for _, d := range diag.Sign(sign) {
		c.pushDiag(d)
	}
	return c, nil
}

// OpenLED returns the configured LED mirror, or nil when disabled.
func OpenLED(l config.LED, sign layout.Sign) (led.Driver, error) {
	switch l.Driver {
	case "sim":
		return &led.Sim{}, nil
	case "spi":
		m, err := led.OpenSPI(led.SPIConfig{
			Device:  l.Device,
			FreqKHz: l.FreqKHz,
			Order:   led.Order{Serpentine: l.Serpentine},
			Limit:   led.Limit{Brightness: l.Brightness, WhiteCap: l.WhiteCap},
		}, sign.WidthPix, sign.HeightPix)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, nil
	}
}

// Config is the configuration the core was built from.
func (c *Core) Config() *config.Config { return c.cfg }

// OnDiag registers the diagnostics sink.
func (c *Core) OnDiag(f func(diag.Diagnostic)) {
	c.mu.Lock()
	c.onDiag = f
	c.mu.Unlock()
}

func (c *Core) pushDiag(d diag.Diagnostic) {
	c.mu.Lock()
	f := c.onDiag
	c.mu.Unlock()
	log.Debug().Str("code", d.Code).Str("severity", string(d.Severity)).Msg(d.Summary)
	if f != nil {
		f(d)
	}
}

// LED is the mirror output, nil when disabled.
func (c *Core) LED() led.Driver {
	c.ledMu.Lock()
	defer c.ledMu.Unlock()
	return c.led
}

func (c *Core) show(r *raster.Raster) {
	c.Eng.SetRaster(r)
	c.ledMu.Lock()
	defer c.ledMu.Unlock()
	if c.led != nil {
		if err := c.led.Write(r); err != nil {
			log.Warn().Err(err).Msg("led write")
		}
	}
}

func (c *Core) transition(t sequence.Transition) {
	log.Debug().Stringer("from", t.From).Stringer("to", t.To).Msg("page")
}

// Blank is an all-unlit raster sized to the current sign.
func (c *Core) Blank() *raster.Raster {
	s := c.Eng.Sign()
	return raster.Blank(s.WidthPix, s.HeightPix)
}

// Play replaces the running message with ps.
func (c *Core) Play(ps sequence.PageSet) error {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	for _, d := range diag.PageSet(ps, c.Eng.Sign()) {
		c.pushDiag(d)
	}
	if err := c.Seq.Start(ps, c.Blank()); err != nil {
		return err
	}
	c.mu.Lock()
	c.current = ps
	c.mu.Unlock()
	log.Info().Int("pages", ps.Len()).Msg("message loaded")
	return nil
}

// PlayFile loads and plays a page file.
func (c *Core) PlayFile(path string) error {
	f, err := pagefile.Load(path)
	if err != nil {
		return err
	}
	if err := c.PlayPages(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Pages parses a page file. Pages without an off-time get the configured
// default.
func (c *Core) Pages(f *pagefile.File) (sequence.PageSet, error) {
	return f.PageSet(c.cfg.Timing.Policy().DefaultOff)
}

// PlayPages plays a decoded page file.
func (c *Core) PlayPages(f *pagefile.File) error {
	ps, err := c.Pages(f)
	if err != nil {
		return err
	}
	return c.Play(ps)
}

// RunPattern plays a self-test pattern, one frame per on-time.
func (c *Core) RunPattern(name string, on time.Duration) error {
	k, err := testpattern.ParseKind(name)
	if err != nil {
		c.pushDiag(diag.Diagnostic{
			Severity: diag.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
			Evidence: map[string]any{"name": name},
		})
		return err
	}
	ps, err := testpattern.Pages(testpattern.Plan{Kind: k, Color: c.cfg.LED.LitColor()}, c.Eng.Sign(), on)
	if err != nil {
		return err
	}
	c.pushDiag(diag.Diagnostic{Severity: diag.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: name})
	return c.Play(ps)
}

// Current is the last message played.
func (c *Core) Current() sequence.PageSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetSign swaps the sign configuration and records it in the config. An
// LED output opened from the config is reopened at the new size. Running
// messages keep playing; their blank raster is rebuilt on the next Play.
func (c *Core) SetSign(s layout.Sign) error {
	c.playMu.Lock()
	defer c.playMu.Unlock()
	c.Eng.SetSign(s)
	c.cfg.Sign = config.SignFrom(s)

	var err error
	if c.ownLED {
		c.ledMu.Lock()
		if c.led != nil {
			err = c.led.Close()
		}
		opened, oerr := OpenLED(c.cfg.LED, s.Clamped())
		c.led = opened
		c.ledMu.Unlock()
		err = errors.Join(err, oerr)
	}
	for _, d := range diag.Sign(s) {
		c.pushDiag(d)
	}
	return err
}

// Stop halts paging and leaves the current page displayed.
func (c *Core) Stop() { c.Seq.Stop() }

// Clear halts paging and blanks the sign.
func (c *Core) Clear() { c.Seq.Clear() }

// Run paints at fps until ctx is done.
func (c *Core) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 10
	}
	t := c.clock.NewTicker(time.Second / time.Duration(fps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.Chan():
			if err := c.Eng.RenderOnce(); err != nil {
				log.Debug().Err(err).Msg("render")
			}
		}
	}
}

// Close stops the sequencer and releases the LED output.
func (c *Core) Close() error {
	var errs []error
	errs = append(errs, c.Seq.Close())
	c.ledMu.Lock()
	if c.led != nil {
		errs = append(errs, c.led.Close())
		c.led = nil
	}
	c.ledMu.Unlock()
	return errors.Join(errs...)
}
