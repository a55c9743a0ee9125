package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// SPIConfig selects the SPI port and NRZ bit rate for a WS2812-style strip.
type SPIConfig struct {
	Device  string // "" picks the first port
	FreqKHz int
	Order   Order
	Limit   Limit
}

// OpenSPI drives a w×h LED grid through an SPI port.
func OpenSPI(cfg SPIConfig, w, h int) (*Matrix, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid LED grid %dx%d", w, h)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", cfg.Device, err)
	}
	freq := cfg.FreqKHz
	if freq <= 0 {
		freq = 2500
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: w * h,
		Channels:  3,
		Freq:      physic.Frequency(freq) * physic.KiloHertz,
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := dev.Halt(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	m := NewMatrix(dev, w, h, cfg.Order, cfg.Limit)
	m.closer = port.Close
	return m, nil
}
