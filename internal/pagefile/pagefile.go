// Package pagefile reads pre-rendered sign pages from YAML or JSON.
//
//	color: "#FFB000"
//	palette: {r: "#FF0000"}
//	pages:
//	  - on_ms: 1000
//	    off_ms: 200
//	    rows: ["#..#", ".rr."]
package pagefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/sequence"
)

var ErrNoPages = errors.New("page file has no pages")

// Page is one page of a message. A missing off_ms takes the caller's
// default off-time.
type Page struct {
	OnMS  int      `yaml:"on_ms" json:"on_ms" validate:"gte=0"`
	OffMS *int     `yaml:"off_ms,omitempty" json:"off_ms,omitempty" validate:"omitempty,gte=0"`
	Rows  []string `yaml:"rows" json:"rows" validate:"required,min=1"`
}

type File struct {
	Color   string            `yaml:"color,omitempty" json:"color,omitempty" validate:"omitempty,hexcolor"`
	Palette map[string]string `yaml:"palette,omitempty" json:"palette,omitempty" validate:"dive,keys,len=1,endkeys,hexcolor"`
	Pages   []Page            `yaml:"pages" json:"pages" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a page file; ".json" files are JSON, everything else YAML.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return Decode(bytes.NewReader(b), true)
	}
	return Decode(bytes.NewReader(b), false)
}

// Decode parses and validates a page file.
func Decode(r io.Reader, isJSON bool) (*File, error) {
	var f File
	var err error
	if isJSON {
		err = json.NewDecoder(r).Decode(&f)
	} else {
		err = yaml.NewDecoder(r).Decode(&f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode page file: %w", err)
	}
	if len(f.Pages) == 0 {
		return nil, ErrNoPages
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid page file: %w", err)
	}
	return &f, nil
}

// PageSet parses every page into a raster. Page times are passed through
// unvalidated; the sequencer applies the page-time policy.
func (f *File) PageSet(defaultOff time.Duration) (sequence.PageSet, error) {
	lit := raster.Amber
	if f.Color != "" {
		c, err := raster.ParseColor(f.Color)
		if err != nil {
			return sequence.PageSet{}, err
		}
		lit = c
	}
	palette := make(map[rune]color.RGBA, len(f.Palette))
	for k, v := range f.Palette {
		c, err := raster.ParseColor(v)
		if err != nil {
			return sequence.PageSet{}, err
		}
		r, _ := utf8.DecodeRuneInString(k)
		palette[r] = c
	}

	var ps sequence.PageSet
	for i, p := range f.Pages {
		r, err := raster.Parse(p.Rows, lit, palette)
		if err != nil {
			return sequence.PageSet{}, fmt.Errorf("page %d: %w", i, err)
		}
		ps.Rasters = append(ps.Rasters, r)
		ps.OnTime = append(ps.OnTime, time.Duration(p.OnMS)*time.Millisecond)
		off := defaultOff
		if p.OffMS != nil {
			off = time.Duration(*p.OffMS) * time.Millisecond
		}
		ps.OffTime = append(ps.OffTime, off)
	}
	return ps, nil
}

// FromPageSet converts rasters back to text pages, e.g. for the control API.
func FromPageSet(ps sequence.PageSet) *File {
	f := &File{}
	for i := 0; i < ps.Len(); i++ {
		off := int(ps.OffTime[i] / time.Millisecond)
		f.Pages = append(f.Pages, Page{
			OnMS:  int(ps.OnTime[i] / time.Millisecond),
			OffMS: &off,
			Rows:  ps.Rasters[i].Rows(),
		})
	}
	return f
}
