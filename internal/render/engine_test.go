package render

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/raster"
)

// fakeDriver captures the last frame written.
type fakeDriver struct {
	mu    sync.Mutex
	last  *image.RGBA
	count int
	err   error
}

func (d *fakeDriver) Write(frame *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := image.NewRGBA(frame.Bounds())
	copy(cp.Pix, frame.Pix)
	d.last = cp
	d.count++
	return d.err
}

func TestNewEngineRejectsEmptyViewport(t *testing.T) {
	_, err := NewEngine(testSign(), Viewport{Width: 0, Height: 10}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidViewport)
}

func TestEngineRenderOnce(t *testing.T) {
	drv := &fakeDriver{}
	e, err := NewEngine(testSign(), Viewport{Width: 100, Height: 50}, DefaultOptions(), drv)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	if err := e.RenderOnce(); err != nil {
		t.Fatalf("render: %v", err)
	}
	blank := drv.last
	if drv.count != 1 || blank == nil {
		t.Fatalf("expected one frame, got %d", drv.count)
	}
	assert.Equal(t, 2, e.Stats().Commands)

	e.SetRaster(raster.MustParse(
		"##########",
		"##########",
		"##########",
		"##########",
		"##########",
	))
	if err := e.RenderOnce(); err != nil {
		t.Fatalf("render 2: %v", err)
	}
	assert.Equal(t, uint64(2), e.FrameID())
	assert.NotEqual(t, blank.Pix, drv.last.Pix)
	assert.Equal(t, 2+50, e.Stats().Commands)

	e.SetRaster(nil)
	require.NoError(t, e.RenderOnce())
	assert.Equal(t, blank.Pix, drv.last.Pix)
}

func TestEngineIdempotent(t *testing.T) {
	e, err := NewEngine(testSign().WithModules(5, 5), Viewport{Width: 123, Height: 77}, DefaultOptions())
	require.NoError(t, err)
	e.SetRaster(raster.MustParse(
		"#.#.#.#.#.",
		"..........",
		"####......",
		"..........",
		".........#",
	))

	assert.Equal(t, e.Plan(), e.Plan())
	assert.Equal(t, e.Snapshot().Pix, e.Snapshot().Pix)
}

func TestEngineViewportAndSign(t *testing.T) {
	drv := &fakeDriver{}
	e, err := NewEngine(testSign(), Viewport{Width: 100, Height: 50}, DefaultOptions(), drv)
	require.NoError(t, err)

	e.SetViewport(Viewport{Width: -1, Height: 40})
	assert.Equal(t, Viewport{Width: 100, Height: 50}, e.Viewport())

	e.SetViewport(Viewport{Width: 40, Height: 40})
	require.NoError(t, e.RenderOnce())
	assert.Equal(t, image.Rect(0, 0, 40, 40), drv.last.Bounds())
	assert.InDelta(t, 0.4, e.Scene().Transform.Scale, 1e-9)

	// pitch too large for the face is reduced
	e.SetSign(layout.NewSign(100, 50, 0, 0, 20, 10, 10, 5))
	g := e.Scene().Geometry
	assert.True(t, g.Clamped)
	assert.InDelta(t, 10, g.HPitch, 1e-9)

	e.SetSign(layout.NewSign(0, 0, 0, 0, 0, 0, 0, 0))
	require.NoError(t, e.RenderOnce())
	assert.Equal(t, 1, e.Stats().Commands)
}

func TestEngineJoinsDriverErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &fakeDriver{}
	bad := &fakeDriver{err: boom}
	e, err := NewEngine(testSign(), Viewport{Width: 10, Height: 10}, DefaultOptions(), bad)
	require.NoError(t, err)
	e.AddDriver(ok)
	e.AddDriver(nil)

	err = e.RenderOnce()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.count)
}

func TestEngineConcurrentRaster(t *testing.T) {
	e, err := NewEngine(testSign(), Viewport{Width: 50, Height: 25}, DefaultOptions())
	require.NoError(t, err)
	a := raster.Blank(10, 5)
	b := raster.NewBuilder(10, 5).Light(1, 1, raster.Amber).Build()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				e.SetRaster(a)
			} else {
				e.SetRaster(b)
			}
		}
	}()
	for i := 0; i < 20; i++ {
		require.NoError(t, e.RenderOnce())
	}
	wg.Wait()
	assert.Same(t, b, e.Raster())
}
