package led

// Order describes how a sign's LED strip is wired through the pixel grid.
type Order struct {
	// Serpentine reverses every other row.
	Serpentine bool
	// FlipY wires the bottom row first.
	FlipY bool
}

// Index is the strip position of pixel x,y on a w×h grid.
func (o Order) Index(x, y, w, h int) int {
	if o.FlipY {
		y = h - 1 - y
	}
	if o.Serpentine && y%2 == 1 {
		x = w - 1 - x
	}
	return y*w + x
}
