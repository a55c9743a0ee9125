package led

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signworks/dmsview/internal/raster"
)

var ErrClosed = errors.New("led output closed")

// pixelWriter is the raw RGB sink; *nrzled.Dev satisfies it.
type pixelWriter interface {
	Write(pixels []byte) (int, error)
	Halt() error
}

// Matrix maps a raster onto a w×h LED grid wired in Order.
type Matrix struct {
	mu     sync.Mutex
	dev    pixelWriter
	closer func() error
	w, h   int
	order  Order
	limit  Limit
	buf    []byte
	amps   float64
}

func NewMatrix(dev pixelWriter, w, h int, order Order, limit Limit) *Matrix {
	return &Matrix{
		dev:   dev,
		w:     max(0, w),
		h:     max(0, h),
		order: order,
		limit: limit,
		buf:   make([]byte, max(0, w)*max(0, h)*3),
	}
}

// Count is the number of LEDs driven.
func (m *Matrix) Count() int { return m.w * m.h }

func (m *Matrix) Write(r *raster.Raster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrClosed
	}
	clear(m.buf)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			p := r.Pixel(x, y)
			if !p.IsLit() {
				continue
			}
			c := p.RGBA()
			i := m.order.Index(x, y, m.w, m.h) * 3
			m.buf[i], m.buf[i+1], m.buf[i+2] = c.R, c.G, c.B
		}
	}
	m.limit.Apply(m.buf)
	m.amps = EstimateCurrent(m.buf)
	if _, err := m.dev.Write(m.buf); err != nil {
		return fmt.Errorf("led write: %w", err)
	}
	return nil
}

// Amps is the estimated draw of the last frame written.
func (m *Matrix) Amps() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.amps
}

func (m *Matrix) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil
	}
	err := m.dev.Halt()
	m.dev = nil
	if m.closer != nil {
		err = errors.Join(err, m.closer())
	}
	return err
}
