package led

// Limit bounds LED drive. Brightness scales every channel; WhiteCap bounds
// the sum of a pixel's channels in units of one full channel (3 = no cap).
type Limit struct {
	Brightness float64
	WhiteCap   float64
}

// NoLimit passes frames through unchanged.
var NoLimit = Limit{Brightness: 1, WhiteCap: 3}

// Apply scales rgb in place. rgb holds 3 bytes per pixel.
func (l Limit) Apply(rgb []byte) {
	b := l.Brightness
	if b < 0 {
		b = 0
	}
	if b > 1 {
		b = 1
	}
	wc := l.WhiteCap
	if wc <= 0 || wc > 3 {
		wc = 3
	}
	if b == 1 && wc == 3 {
		return
	}
	for i := 0; i+2 < len(rgb); i += 3 {
		r := float64(rgb[i]) / 255
		g := float64(rgb[i+1]) / 255
		bl := float64(rgb[i+2]) / 255
		s := b
		if sum := r + g + bl; sum > wc {
			s *= wc / sum
		}
		if s >= 1 {
			continue
		}
		rgb[i] = scale(rgb[i], s)
		rgb[i+1] = scale(rgb[i+1], s)
		rgb[i+2] = scale(rgb[i+2], s)
	}
}

func scale(v byte, s float64) byte {
	return byte(float64(v)*s + 0.5)
}

// EstimateCurrent returns the approximate draw in amps of an rgb frame at
// 20 mA per channel full scale.
func EstimateCurrent(rgb []byte) float64 {
	var sum float64
	for i := 0; i+2 < len(rgb); i += 3 {
		sum += float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
	}
	return sum / 255.0 * 0.020
}
