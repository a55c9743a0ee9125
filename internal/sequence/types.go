package sequence

import (
	"errors"
	"fmt"
	"time"

	"github.com/signworks/dmsview/internal/raster"
)

// DefaultTick is the sequencer timer period.
const DefaultTick = 100 * time.Millisecond

var ErrEmptyPageSet = errors.New("page set has no pages")

// PageSet is one message: a raster per page with its on and off times. The
// three slices are expected to be the same length; when they are not, only
// the common prefix is played.
type PageSet struct {
	Rasters []*raster.Raster
	OnTime  []time.Duration
	OffTime []time.Duration
}

// Len is the number of playable pages.
func (ps PageSet) Len() int {
	return min(len(ps.Rasters), len(ps.OnTime), len(ps.OffTime))
}

// Validator clamps a requested page on-time. singlePage lets a policy allow
// a zero on-time for a message that never changes pages.
type Validator interface {
	ValidateOn(d time.Duration, singlePage bool) time.Duration
}

// OffValidator is optionally implemented by a Validator that also bounds
// off-times.
type OffValidator interface {
	ValidateOff(d time.Duration) time.Duration
}

// RunState enumerates sequencer run states.
type RunState string

const (
	Idle    RunState = "idle"
	Running RunState = "running"
)

// Phase is the part of a page cycle being shown.
type Phase string

const (
	Displaying Phase = "displaying"
	Blanking   Phase = "blanking"
)

// State is the page and phase currently on the sign.
type State struct {
	Page  int   `json:"page"`
	Phase Phase `json:"phase"`
}

func (s State) String() string {
	switch s.Phase {
	case Blanking:
		return fmt.Sprintf("BLANKING(%d)", s.Page)
	default:
		return fmt.Sprintf("DISPLAYING(%d)", s.Page)
	}
}

// Transition is reported each time the displayed state changes.
type Transition struct {
	From State `json:"from"`
	To   State `json:"to"`
}

// Status is a snapshot of the sequencer.
type Status struct {
	Run     RunState      `json:"run"`
	State   State         `json:"state"`
	Elapsed time.Duration `json:"elapsed"`
	Pages   int           `json:"pages"`
	Ticks   uint64        `json:"ticks"`
	Static  bool          `json:"static"`
}

// Hooks are dependency-injected callbacks into the display.
type Hooks struct {
	// Show the raster now. Never called with nil.
	SetRaster func(r *raster.Raster)
	// Observe a phase or page change.
	OnTransition func(t Transition)
}
