package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/signworks/dmsview/internal/layout"
	"github.com/signworks/dmsview/internal/pagetime"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/render"
)

var ErrInvalidConfig = errors.New("invalid config")

type Log struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

type Server struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	FPS            int      `yaml:"fps" validate:"gte=1,lte=60"`
}

type Viewport struct {
	Width  int `yaml:"width" validate:"gt=0"`
	Height int `yaml:"height" validate:"gt=0"`
}

// Sign is the physical sign face. Out-of-range hardware values are accepted
// here and clamped by layout.
type Sign struct {
	FaceWidthMM     float64 `yaml:"face_width_mm"`
	FaceHeightMM    float64 `yaml:"face_height_mm"`
	HBorderMM       float64 `yaml:"h_border_mm"`
	VBorderMM       float64 `yaml:"v_border_mm"`
	HPitchMM        float64 `yaml:"h_pitch_mm"`
	VPitchMM        float64 `yaml:"v_pitch_mm"`
	WidthPix        int     `yaml:"width_pix" validate:"gte=0"`
	HeightPix       int     `yaml:"height_pix" validate:"gte=0"`
	CharWidthPix    int     `yaml:"char_width_pix" validate:"gte=0"`
	CharHeightPix   int     `yaml:"char_height_pix" validate:"gte=0"`
	ModuleWidthPix  int     `yaml:"module_width_pix" validate:"gte=0"`
	ModuleHeightPix int     `yaml:"module_height_pix" validate:"gte=0"`
}

// Timing is the page-time policy in milliseconds.
type Timing struct {
	DefaultOnMS  int `yaml:"default_on_ms" validate:"gte=0,lte=60000"`
	MinOnMS      int `yaml:"min_on_ms" validate:"gte=0,lte=60000"`
	MaxOnMS      int `yaml:"max_on_ms" validate:"gte=0,lte=60000"`
	DefaultOffMS int `yaml:"default_off_ms" validate:"gte=0,lte=60000"`
	MaxOffMS     int `yaml:"max_off_ms" validate:"gte=0,lte=60000"`
}

type Render struct {
	Background  string `yaml:"background" validate:"hexcolor"`
	Face        string `yaml:"face" validate:"hexcolor"`
	Unlit       string `yaml:"unlit" validate:"hexcolor"`
	Filter      string `yaml:"filter,omitempty" validate:"omitempty,hexcolor"`
	FilterAlpha int    `yaml:"filter_alpha" validate:"gte=0,lte=255"`
	Calibration bool   `yaml:"calibration"`
	Grid        string `yaml:"grid" validate:"hexcolor"`
}

type LED struct {
	Driver     string  `yaml:"driver" validate:"oneof=none sim spi"`
	Device     string  `yaml:"device,omitempty"`
	FreqKHz    int     `yaml:"freq_khz" validate:"gte=0"`
	Serpentine bool    `yaml:"serpentine"`
	Brightness float64 `yaml:"brightness" validate:"gte=0,lte=1"`
	WhiteCap   float64 `yaml:"white_cap" validate:"gte=0,lte=3"`
	Color      string  `yaml:"color,omitempty" validate:"omitempty,hexcolor"`
}

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	TickMS   int      `yaml:"tick_ms" validate:"gte=10,lte=1000"`
	Viewport Viewport `yaml:"viewport"`
	Sign     Sign     `yaml:"sign"`
	Timing   Timing   `yaml:"timing"`
	Render   Render   `yaml:"render"`
	LED      LED      `yaml:"led"`
}

// Default is a 3-line, 15-character full-matrix amber sign.
func Default() *Config {
	return &Config{
		Log:    Log{Level: "info", MaxSizeMB: 1, MaxBackups: 2},
		Server: Server{Addr: ":8080", FPS: 10},
		TickMS: 100,
		Viewport: Viewport{
			Width:  960,
			Height: 300,
		},
		Sign: Sign{
			FaceWidthMM:  3200,
			FaceHeightMM: 1000,
			HBorderMM:    50,
			VBorderMM:    50,
			HPitchMM:     34,
			VPitchMM:     34,
			WidthPix:     90,
			HeightPix:    27,
		},
		Timing: Timing{
			DefaultOnMS: int(pagetime.DefaultOn / time.Millisecond),
			MinOnMS:     int(pagetime.MinOn / time.Millisecond),
			MaxOnMS:     int(pagetime.MaxOn / time.Millisecond),
			MaxOffMS:    int(pagetime.MaxOff / time.Millisecond),
		},
		Render: Render{
			Background: "#808080",
			Face:       "#000000",
			Unlit:      "#282828",
			Grid:       "#00A0FF",
		},
		LED: LED{
			Driver:     "none",
			Device:     "/dev/spidev0.0",
			FreqKHz:    2500,
			Brightness: 0.5,
			WhiteCap:   1.5,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads a YAML config over the defaults and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Tick is the sequencer timer period.
func (c *Config) Tick() time.Duration { return time.Duration(c.TickMS) * time.Millisecond }

func (s Sign) Layout() layout.Sign {
	return layout.Sign{
		FaceWidthMM:     s.FaceWidthMM,
		FaceHeightMM:    s.FaceHeightMM,
		HBorderMM:       s.HBorderMM,
		VBorderMM:       s.VBorderMM,
		HPitchMM:        s.HPitchMM,
		VPitchMM:        s.VPitchMM,
		WidthPix:        s.WidthPix,
		HeightPix:       s.HeightPix,
		CharWidthPix:    s.CharWidthPix,
		CharHeightPix:   s.CharHeightPix,
		ModuleWidthPix:  s.ModuleWidthPix,
		ModuleHeightPix: s.ModuleHeightPix,
	}.Clamped()
}

// SignFrom is the inverse of Sign.Layout, used to save a sign changed at
// runtime.
func SignFrom(s layout.Sign) Sign {
	return Sign{
		FaceWidthMM:     s.FaceWidthMM,
		FaceHeightMM:    s.FaceHeightMM,
		HBorderMM:       s.HBorderMM,
		VBorderMM:       s.VBorderMM,
		HPitchMM:        s.HPitchMM,
		VPitchMM:        s.VPitchMM,
		WidthPix:        s.WidthPix,
		HeightPix:       s.HeightPix,
		CharWidthPix:    s.CharWidthPix,
		CharHeightPix:   s.CharHeightPix,
		ModuleWidthPix:  s.ModuleWidthPix,
		ModuleHeightPix: s.ModuleHeightPix,
	}
}

func (t Timing) Policy() pagetime.Policy {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return pagetime.Policy{
		DefaultOn:  ms(t.DefaultOnMS),
		MinOn:      ms(t.MinOnMS),
		MaxOn:      ms(t.MaxOnMS),
		DefaultOff: ms(t.DefaultOffMS),
		MaxOff:     ms(t.MaxOffMS),
	}.Normalize()
}

func (v Viewport) Render() render.Viewport {
	return render.Viewport{Width: v.Width, Height: v.Height}
}

// Options converts the render colors. An empty filter disables the overlay.
func (r Render) Options() (render.Options, error) {
	o := render.DefaultOptions()
	var err error
	if o.Background, err = nrgba(r.Background, 0xFF); err != nil {
		return o, err
	}
	if o.Face, err = nrgba(r.Face, 0xFF); err != nil {
		return o, err
	}
	if o.Unlit, err = nrgba(r.Unlit, 0xFF); err != nil {
		return o, err
	}
	if o.GridColor, err = nrgba(r.Grid, render.DefaultOptions().GridColor.A); err != nil {
		return o, err
	}
	if r.Filter != "" {
		if o.Filter, err = nrgba(r.Filter, uint8(r.FilterAlpha)); err != nil {
			return o, err
		}
	}
	o.Calibration = r.Calibration
	return o, nil
}

// LitColor is the color for pattern and page-file pixels with no explicit
// color.
func (l LED) LitColor() color.RGBA {
	if l.Color == "" {
		return raster.Amber
	}
	c, err := raster.ParseColor(l.Color)
	if err != nil {
		return raster.Amber
	}
	return c
}

func nrgba(s string, a uint8) (color.NRGBA, error) {
	c, err := raster.ParseColor(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}, nil
}
