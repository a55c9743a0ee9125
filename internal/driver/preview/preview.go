package preview

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"sync"
	"time"
)

// Frame is one encoded preview image.
type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	PNG     string `json:"png"` // base64
}

// Driver PNG-encodes painted frames for browser clients, at most one per
// throttle interval.
type Driver struct {
	mu       sync.Mutex
	publish  func(Frame)
	throttle time.Duration
	lastEmit time.Time
	now      func() time.Time
	frameID  uint64
	enc      png.Encoder
	buf      bytes.Buffer
	last     Frame
}

func New(throttle time.Duration, publish func(Frame)) *Driver {
	return &Driver{
		publish:  publish,
		throttle: throttle,
		now:      time.Now,
		enc:      png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

func (d *Driver) Write(img *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.throttle > 0 && d.lastEmit.Add(d.throttle).After(now) {
		return nil
	}
	d.lastEmit = now

	d.buf.Reset()
	if err := d.enc.Encode(&d.buf, img); err != nil {
		return err
	}
	d.frameID++
	b := img.Bounds()
	d.last = Frame{
		T:       now.UnixNano(),
		FrameID: d.frameID,
		Width:   b.Dx(),
		Height:  b.Dy(),
		PNG:     base64.StdEncoding.EncodeToString(d.buf.Bytes()),
	}
	if d.publish != nil {
		d.publish(d.last)
	}
	return nil
}

// Last is the most recent published frame, for clients that connect between
// frames.
func (d *Driver) Last() (Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.frameID > 0
}
