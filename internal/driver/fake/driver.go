package fake

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Driver logs a compact summary of each frame (first pixel and average),
// keeps a copy of the last one and optionally writes PNGs to Dir. Useful for
// headless runs and tests.
type Driver struct {
	mu    sync.Mutex
	Count int
	Dir   string
	last  *image.RGBA
}

func (d *Driver) Write(img *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Count++

	var r, g, b float64
	b0 := img.Bounds()
	n := float64(b0.Dx() * b0.Dy())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r += float64(img.Pix[i])
		g += float64(img.Pix[i+1])
		b += float64(img.Pix[i+2])
	}
	if n == 0 {
		n = 1
	}
	first := img.RGBAAt(b0.Min.X, b0.Min.Y)
	log.Debug().
		Int("frame", d.Count).
		Str("avg", fmt.Sprintf("(%.1f,%.1f,%.1f)", r/n, g/n, b/n)).
		Str("first", fmt.Sprintf("(%d,%d,%d)", first.R, first.G, first.B)).
		Msg("frame")

	if d.last == nil || d.last.Bounds() != b0 {
		d.last = image.NewRGBA(b0)
	}
	copy(d.last.Pix, img.Pix)

	if d.Dir != "" {
		return d.writePNG(img)
	}
	return nil
}

func (d *Driver) writePNG(img *image.RGBA) error {
	f, err := os.Create(filepath.Join(d.Dir, fmt.Sprintf("frame-%04d.png", d.Count)))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Last returns a copy of the most recent frame, or nil.
func (d *Driver) Last() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return nil
	}
	cp := image.NewRGBA(d.last.Bounds())
	copy(cp.Pix, d.last.Pix)
	return cp
}
