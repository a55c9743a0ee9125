// Package testpattern generates sign self-test rasters.
package testpattern

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/sequence"
)

type Kind string

const (
	None        Kind = ""
	AllOn       Kind = "all_on"
	Checker     Kind = "checker"
	Cells       Kind = "cells"
	ColumnSweep Kind = "column_sweep"
	RowSweep    Kind = "row_sweep"
)

var ErrUnknownPattern = errors.New("unknown test pattern")

// Kinds lists the runnable patterns.
func Kinds() []Kind { return []Kind{AllOn, Checker, Cells, ColumnSweep, RowSweep} }

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}

type Plan struct {
	Kind  Kind
	Color color.RGBA
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Color.A == 0 {
		plan.Color = raster.Amber
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step returns the next frame for s; false when the pattern is complete.
func (r *Runner) Step(s layout.Sign) (*raster.Raster, bool) {
	w, h := s.WidthPix, s.HeightPix
	b := raster.NewBuilder(w, h)
	c := r.plan.Color

	switch r.plan.Kind {
	case AllOn:
		if r.step > 0 {
			return nil, false
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				b.Light(x, y, c)
			}
		}
	case Checker:
		if r.step > 1 {
			return nil, false
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if (x+y+r.step)%2 == 0 {
					b.Light(x, y, c)
				}
			}
		}
	case Cells:
		if r.step > 1 {
			return nil, false
		}
		cw, ch := max(1, s.CharWidthPix), max(1, s.CharHeightPix)
		if s.CharWidthPix == 0 {
			cw = w
		}
		if s.CharHeightPix == 0 {
			ch = h
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if (x/cw+y/ch+r.step)%2 == 0 {
					b.Light(x, y, c)
				}
			}
		}
	case ColumnSweep:
		if r.step >= w {
			return nil, false
		}
		for y := 0; y < h; y++ {
			b.Light(r.step, y, c)
		}
	case RowSweep:
		if r.step >= h {
			return nil, false
		}
		for x := 0; x < w; x++ {
			b.Light(x, r.step, c)
		}
	default:
		return nil, false
	}
	r.step++
	return b.Build(), true
}

// Pages renders every step of plan as a page set that shows each frame for
// on and never blanks.
func Pages(plan Plan, s layout.Sign, on time.Duration) (sequence.PageSet, error) {
	if _, err := ParseKind(string(plan.Kind)); err != nil {
		return sequence.PageSet{}, err
	}
	var ps sequence.PageSet
	r := NewRunner(plan)
	for {
		frame, ok := r.Step(s)
		if !ok {
			break
		}
		ps.Rasters = append(ps.Rasters, frame)
		ps.OnTime = append(ps.OnTime, on)
		ps.OffTime = append(ps.OffTime, 0)
	}
	if ps.Len() == 0 {
		return ps, sequence.ErrEmptyPageSet
	}
	return ps, nil
}
